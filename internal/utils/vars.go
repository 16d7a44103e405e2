package utils

import "regexp"

const DefaultBufferSize = 1024 * 1024 * 2 // 2MB buffer
const DefaultParts = 4
const DefaultOutputName = "index.html"
const HighThreadThreshold = 5 // connections above this enable socket tuning
const MaxConnections = 64
const SocketBufferSize = 1024 * 1024 // SO_RCVBUF/SO_SNDBUF in high-thread mode

var ToolVersion = "dev"
var ToolUserAgent = "paraget/" + ToolVersion

// partFileRegex matches temporary part files such as ".video.mp4.part-3"
var partFileRegex = regexp.MustCompile(`^\.(.+)\.part-(\d+)$`)
