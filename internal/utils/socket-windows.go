//go:build windows

package utils

import (
	"errors"
	"syscall"
)

func setSocketOptions(fd uintptr) error {
	return errors.Join(
		syscall.SetsockoptInt(syscall.Handle(fd), syscall.SOL_SOCKET, syscall.SO_RCVBUF, SocketBufferSize),
		syscall.SetsockoptInt(syscall.Handle(fd), syscall.SOL_SOCKET, syscall.SO_SNDBUF, SocketBufferSize),
	)
}
