package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// runCommand executes one tool invocation and returns its captured stdout,
// stderr, and exit code. Both pipes are drained concurrently with the child's
// execution so output larger than the pipe buffer cannot deadlock cmd.Wait.
//
// The child is deliberately not tied to ctx: cancellation is a process-group
// kill from main, with no graceful drain of in-flight subprocesses.
func runCommand(_ context.Context, dir, tool string, args []string) (stdout, stderr []byte, exitCode int, err error) {
	cmd := exec.Command(tool, args...)
	cmd.Dir = dir

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, 0, fmt.Errorf("create stdout pipe: %w", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, nil, 0, fmt.Errorf("create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, nil, 0, fmt.Errorf("start %s: %w", tool, err)
	}

	var wg sync.WaitGroup
	var stdoutBuf, stderrBuf bytes.Buffer

	wg.Add(2)
	go func() {
		defer wg.Done()
		io.Copy(&stdoutBuf, stdoutPipe)
	}()
	go func() {
		defer wg.Done()
		io.Copy(&stderrBuf, stderrPipe)
	}()

	// Pipes must be fully drained before cmd.Wait closes them.
	wg.Wait()
	waitErr := cmd.Wait()

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			// Diagnostic findings, not a dispatcher failure.
			return stdoutBuf.Bytes(), stderrBuf.Bytes(), exitErr.ExitCode(), nil
		}
		return stdoutBuf.Bytes(), stderrBuf.Bytes(), 0, fmt.Errorf("wait for %s: %w", tool, waitErr)
	}

	return stdoutBuf.Bytes(), stderrBuf.Bytes(), 0, nil
}
