//go:build windows

package daemon

import (
	"fmt"
	"os"
	"syscall"
)

// processAlive reports whether pid exists. FindProcess opens a handle on
// Windows, so it fails for dead processes.
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = proc.Release()
	return true
}

// signalPID delivers sig. Only a kill is reliably supported on Windows.
func signalPID(pid int, sig syscall.Signal) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find process %d: %w", pid, err)
	}
	if sig == syscall.SIGKILL || sig == syscall.SIGTERM {
		return proc.Kill()
	}
	return proc.Signal(sig)
}
