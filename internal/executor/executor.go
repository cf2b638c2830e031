// Package executor defines the control plane's view of a remote node
// (spec §4.4 "C1 Remote Executor"): run a command, upload a file's
// content, and wait for SSH to come up. internal/executor/ssh provides
// the concrete implementation; internal/execfake provides a recording
// fake for tests.
package executor

import (
	"context"
	"time"
)

// Result is the outcome of a single remote command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Executor runs commands and transfers file content against one host.
// Implementations must be safe to reuse across many calls to the same
// host and safe for concurrent use from multiple goroutines:
// health.RunCommands issues up to 7 calls to one instance at once.
type Executor interface {
	// Exec runs cmd on host via a fresh session and returns its output.
	// A non-zero exit code is reported via Result.ExitCode, not err;
	// err is reserved for transport failures.
	Exec(ctx context.Context, host, cmd string) (Result, error)

	// UploadContent writes content to remotePath on host, creating
	// parent directories as needed, with the given POSIX file mode.
	UploadContent(ctx context.Context, host, remotePath string, content []byte, mode uint32) error

	// WaitForReady blocks until host accepts an SSH connection and
	// authenticates, or timeout elapses.
	WaitForReady(ctx context.Context, host string, timeout time.Duration) error
}
