//go:build !windows

package daemon

import "syscall"

// processAlive checks pid with signal 0.
func processAlive(pid int) bool {
	return syscall.Kill(pid, 0) == nil
}

func signalPID(pid int, sig syscall.Signal) error {
	return syscall.Kill(pid, sig)
}
