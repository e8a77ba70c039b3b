// File: transport/ws/sockopt_linux.go
//go:build linux
// +build linux

//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// TCP socket tuning applied before connect.

package ws

import (
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// socketControl bounds how long unacknowledged data may stay in flight
// before the kernel drops the connection, and disables Nagle.
func socketControl(userTimeout time.Duration) func(network, address string, c syscall.RawConn) error {
	ms := int(userTimeout / time.Millisecond)
	return func(network, address string, c syscall.RawConn) error {
		var serr error
		err := c.Control(func(fd uintptr) {
			serr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_USER_TIMEOUT, ms)
			if serr == nil {
				serr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
			}
		})
		if err != nil {
			return err
		}
		return serr
	}
}
