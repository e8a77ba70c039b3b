// File: cmd/uaprobe/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// uaprobe drives the asynchronous service layer against a WebSocket
// endpoint: one-shot reads and periodic watches with metrics export.

package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.WithError(err).Error("uaprobe failed")
		os.Exit(1)
	}
}
