package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/revu/internal/daemon"
)

const stopTimeout = 10 * time.Second

var upStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Run 'revu up' in the background",
	RunE: func(cmd *cobra.Command, args []string) error {
		return upStartRun()
	},
}

var upStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background 'revu up' process",
	RunE: func(cmd *cobra.Command, args []string) error {
		return upStopRun()
	},
}

var upStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the background 'revu up' process is running",
	RunE: func(cmd *cobra.Command, args []string) error {
		return upStatusRun()
	},
}

func init() {
	upCmd.AddCommand(upStartCmd)
	upCmd.AddCommand(upStopCmd)
	upCmd.AddCommand(upStatusCmd)
}

// pidFile returns the PID file tracking the background process.
func pidFile() *daemon.PIDFile {
	dir, err := configDirFunc()
	if err != nil {
		dir = os.TempDir()
	}
	return daemon.NewPIDFile(filepath.Join(dir, "revu-up.pid"))
}

// upLogPath returns where the background process writes its output.
func upLogPath() string {
	dir, err := configDirFunc()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "revu-up.log")
}

func upStartRun() error {
	pf := pidFile()
	if pid, running := pf.IsRunning(); running {
		return fmt.Errorf("revu up is already running (pid %d)", pid)
	}
	pf.ClearStale()

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}

	args := []string{"up"}
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		args = append(args, "--config", cfgFile)
	}
	if verbose {
		args = append(args, "--verbose")
	}

	if dryRun {
		ui.DryRunMsg("Would start %s %v (log: %s)", exe, args, upLogPath())
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(pf.Path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	logFile, err := os.OpenFile(upLogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	child := exec.Command(exe, args...)
	child.Stdout = logFile
	child.Stderr = logFile
	setDaemonAttrs(child)

	if err := child.Start(); err != nil {
		return fmt.Errorf("start background process: %w", err)
	}
	if err := pf.WritePID(child.Process.Pid); err != nil {
		_ = child.Process.Kill()
		return fmt.Errorf("write PID file: %w", err)
	}
	_ = child.Process.Release()

	ui.Success("revu up started (pid %d)", child.Process.Pid)
	ui.Info("Logs: %s", upLogPath())
	return nil
}

func upStopRun() error {
	pf := pidFile()
	pid, running := pf.IsRunning()
	if !running {
		pf.ClearStale()
		return fmt.Errorf("revu up is not running")
	}

	if dryRun {
		ui.DryRunMsg("Would stop revu up (pid %d)", pid)
		return nil
	}

	if err := pf.Signal(sigTERM()); err != nil {
		return fmt.Errorf("signal pid %d: %w", pid, err)
	}
	if !pf.WaitStopped(stopTimeout, 100*time.Millisecond) {
		ui.Warning("pid %d did not exit within %s, killing", pid, stopTimeout)
		if err := pf.Signal(sigKILL()); err != nil {
			return fmt.Errorf("kill pid %d: %w", pid, err)
		}
	}
	_ = pf.Remove()

	ui.Success("revu up stopped (pid %d)", pid)
	return nil
}

func upStatusRun() error {
	pf := pidFile()
	if pid, running := pf.IsRunning(); running {
		ui.Success("revu up is running (pid %d)", pid)
		ui.Info("Logs: %s", upLogPath())
		return nil
	}
	if pf.ClearStale() {
		ui.VerboseLog("Removed stale PID file %s", pf.Path)
	}
	ui.Info("revu up is not running")
	return nil
}
