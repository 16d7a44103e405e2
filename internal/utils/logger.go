package utils

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// InitLogger sends console-formatted logs to w. Colors are dropped when w is
// a file that is not a terminal.
func InitLogger(w io.Writer, debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime}
	if f, ok := w.(*os.File); ok {
		console.NoColor = !term.IsTerminal(int(f.Fd()))
	}
	log.Logger = zerolog.New(console).With().Timestamp().Logger()
}

func GetLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
