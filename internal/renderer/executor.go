// Package renderer executes external manim-slides commands for a deck.
package renderer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/creack/pty"
)

// ErrEmptyCommand indicates an empty command string was passed.
var ErrEmptyCommand = errors.New("command is required")

// Executor runs renderer commands. Command strings are split on
// whitespace to build the argv, so arguments must not contain spaces;
// in particular slide paths with spaces in them are not supported.
type Executor interface {
	// Exec runs a command and returns its stdout and stderr output.
	Exec(ctx context.Context, cmd string) (stdout, stderr []byte, err error)

	// ExecInteractive runs a command attached to a pty, streaming stdin to
	// the process and its output to the terminal. Used for `present` and
	// other commands that expect a terminal.
	ExecInteractive(ctx context.Context, cmd string, stdin io.Reader) error
}

// LocalExecutor runs commands on the local machine.
type LocalExecutor struct {
	// Dir is the working directory for commands; commands run against a
	// deck use its root so relative slide paths resolve.
	Dir string

	// Env overrides the process environment when non-nil.
	Env []string
}

// NewLocalExecutor creates an executor rooted at the given directory.
func NewLocalExecutor(dir string) *LocalExecutor {
	return &LocalExecutor{Dir: dir}
}

func (e *LocalExecutor) build(ctx context.Context, cmd string) (*exec.Cmd, error) {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return nil, ErrEmptyCommand
	}

	command := exec.CommandContext(ctx, fields[0], fields[1:]...)
	command.Dir = e.Dir
	if e.Env != nil {
		command.Env = e.Env
	}
	return command, nil
}

// Exec implements Executor.
func (e *LocalExecutor) Exec(ctx context.Context, cmd string) ([]byte, []byte, error) {
	command, err := e.build(ctx, cmd)
	if err != nil {
		return nil, nil, err
	}

	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return stdout.Bytes(), stderr.Bytes(), fmt.Errorf("run %q: %w", cmd, err)
	}
	return stdout.Bytes(), stderr.Bytes(), nil
}

// ExecInteractive implements Executor. The child runs on a pty so
// terminal-dependent tools behave as if run by hand.
func (e *LocalExecutor) ExecInteractive(ctx context.Context, cmd string, stdin io.Reader) error {
	command, err := e.build(ctx, cmd)
	if err != nil {
		return err
	}

	ptmx, err := pty.Start(command)
	if err != nil {
		return fmt.Errorf("start %q: %w", cmd, err)
	}
	defer ptmx.Close()

	if stdin == nil {
		stdin = os.Stdin
	}
	go func() {
		_, _ = io.Copy(ptmx, stdin)
	}()
	// pty read returns EIO once the child exits; output until then goes
	// straight to the terminal.
	_, _ = io.Copy(os.Stdout, ptmx)

	if err := command.Wait(); err != nil {
		return fmt.Errorf("run %q: %w", cmd, err)
	}
	return nil
}
