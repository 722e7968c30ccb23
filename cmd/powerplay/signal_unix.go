//go:build !windows

package main

import (
	"os"
	"syscall"
)

// shutdownSignals stop long-running commands.
// On Unix systems, this includes both SIGINT and SIGTERM.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
