//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// KillProcessGroup kills a process and all its children by sending SIGKILL
// to the process group (negative PID).
func KillProcessGroup(pid int) {
	// Best-effort: the converter may already have exited.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}

// setProcessGroup starts the command in its own process group so a timeout
// also takes down grandchildren (pandoc filters, interpreter wrappers).
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
