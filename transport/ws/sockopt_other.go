// File: transport/ws/sockopt_other.go
//go:build !linux
// +build !linux

//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package ws

import (
	"syscall"
	"time"
)

// socketControl is a no-op where TCP_USER_TIMEOUT is unavailable.
func socketControl(time.Duration) func(network, address string, c syscall.RawConn) error {
	return nil
}
