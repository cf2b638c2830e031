// Package execfake is an in-memory internal/executor.Executor for
// tests. It records every call so idempotence tests can assert a
// second, already-converged run issues no further writes.
package execfake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cuemby/dynia/internal/executor"
)

// Call is one recorded invocation against a host.
type Call struct {
	Method     string
	Host       string
	Cmd        string
	RemotePath string
	Content    []byte
}

// Executor is a scripted, recording fake. Files uploaded via
// UploadContent are retained so Exec handlers can be written to
// inspect rendered artifact content directly in tests.
type Executor struct {
	mu sync.Mutex

	Calls []Call
	Files map[string][]byte // keyed by "host:remotePath"

	// ExecHandler, if set, is consulted for every Exec call and lets
	// tests script command output/exit codes.
	ExecHandler func(host, cmd string) (executor.Result, error)
}

func New() *Executor {
	return &Executor{Files: map[string][]byte{}}
}

func (e *Executor) Exec(ctx context.Context, host, cmd string) (executor.Result, error) {
	e.mu.Lock()
	e.Calls = append(e.Calls, Call{Method: "Exec", Host: host, Cmd: cmd})
	handler := e.ExecHandler
	e.mu.Unlock()

	if handler != nil {
		return handler(host, cmd)
	}
	return executor.Result{}, nil
}

func (e *Executor) UploadContent(ctx context.Context, host, remotePath string, content []byte, mode uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Calls = append(e.Calls, Call{Method: "UploadContent", Host: host, RemotePath: remotePath, Content: content})
	e.Files[fmt.Sprintf("%s:%s", host, remotePath)] = content
	return nil
}

func (e *Executor) WaitForReady(ctx context.Context, host string, timeout time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Calls = append(e.Calls, Call{Method: "WaitForReady", Host: host})
	return nil
}

// FileContent returns what was last uploaded at remotePath on host.
func (e *Executor) FileContent(host, remotePath string) ([]byte, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	content, ok := e.Files[fmt.Sprintf("%s:%s", host, remotePath)]
	return content, ok
}

// CountMethod returns how many times method was called, for
// idempotence assertions ("second prepare uploads nothing new").
func (e *Executor) CountMethod(method string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, c := range e.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}
