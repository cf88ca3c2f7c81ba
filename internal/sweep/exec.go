package sweep

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Invoker runs one miner invocation and reports its exit code. The sweep
// runner only talks to miners through this interface, so tests substitute
// scripted outcomes without spawning processes.
type Invoker interface {
	// Invoke executes path with args, streaming combined stdout and stderr
	// into the log file at logPath. It returns the process exit code.
	// A non-nil error means the process did not run to completion at all
	// (spawn failure or context kill), not that it exited non-zero.
	Invoke(ctx context.Context, path string, args []string, logPath string) (int, error)
}

// ChildInvoker runs miners as real child processes bound to the context:
// when the context expires or is cancelled the child is killed.
type ChildInvoker struct{}

// Invoke implements Invoker with exec.CommandContext.
func (ChildInvoker) Invoke(ctx context.Context, path string, args []string, logPath string) (int, error) {
	logFile, err := os.Create(logPath)
	if err != nil {
		return -1, fmt.Errorf("creating run log %s: %w", logPath, err)
	}
	defer logFile.Close()

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	err = cmd.Run()
	if err == nil {
		return 0, nil
	}

	// A context kill surfaces as an ExitError too (killed by signal);
	// the caller tells the cases apart through ctx.Err().
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}

	return -1, err
}
