// Package ssh implements internal/executor.Executor over
// golang.org/x/crypto/ssh, the same library the teacher repo uses to
// generate host keypairs (cmd/util/sshkeys.go). Connections are
// dialed fresh per call and closed immediately after: nodes are few
// and operations are infrequent enough that connection pooling would
// add state for no measurable benefit.
package ssh

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/cuemby/dynia/internal/dynerr"
	"github.com/cuemby/dynia/internal/executor"
)

// Executor dials an SSH host as a fixed user, authenticating with a
// single private key.
type Executor struct {
	user       string
	signer     ssh.Signer
	port       int
	dialTimeout time.Duration
}

// New builds an Executor that authenticates with the given PEM-encoded
// private key.
func New(user string, privateKeyPEM []byte, port int) (*Executor, error) {
	signer, err := ssh.ParsePrivateKey(privateKeyPEM)
	if err != nil {
		return nil, &dynerr.ValidationError{Field: "privateKey", Message: err.Error()}
	}
	if port == 0 {
		port = 22
	}
	return &Executor{user: user, signer: signer, port: port, dialTimeout: 10 * time.Second}, nil
}

func (e *Executor) dial(ctx context.Context, host string) (*ssh.Client, error) {
	config := &ssh.ClientConfig{
		User:            e.user,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(e.signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), // nodes are freshly provisioned and have no known host key yet
		Timeout:         e.dialTimeout,
	}
	addr := fmt.Sprintf("%s:%d", host, e.port)

	dialer := net.Dialer{Timeout: e.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &dynerr.TransportError{Host: host, Message: err.Error(), Cause: err}
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		return nil, &dynerr.TransportError{Host: host, Message: err.Error(), Cause: err}
	}
	return ssh.NewClient(sshConn, chans, reqs), nil
}

func (e *Executor) Exec(ctx context.Context, host, cmd string) (executor.Result, error) {
	client, err := e.dial(ctx, host)
	if err != nil {
		return executor.Result{}, err
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return executor.Result{}, &dynerr.TransportError{Host: host, Message: err.Error(), Cause: err}
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan error, 1)
	go func() { done <- session.Run(cmd) }()

	select {
	case <-ctx.Done():
		session.Signal(ssh.SIGKILL)
		return executor.Result{}, ctx.Err()
	case err := <-done:
		result := executor.Result{Stdout: stdout.String(), Stderr: stderr.String()}
		if err == nil {
			return result, nil
		}
		if exitErr, ok := err.(*ssh.ExitError); ok {
			result.ExitCode = exitErr.ExitStatus()
			return result, nil
		}
		return result, &dynerr.TransportError{Host: host, Message: err.Error(), Cause: err}
	}
}

// UploadContent streams content over the SSH session's stdin to a
// shell snippet that recreates the parent directory, writes the file,
// and applies mode — there is no SFTP subsystem dependency in the
// stack, so this rides the same session-exec path as Exec.
func (e *Executor) UploadContent(ctx context.Context, host, remotePath string, content []byte, mode uint32) error {
	client, err := e.dial(ctx, host)
	if err != nil {
		return err
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return &dynerr.TransportError{Host: host, Message: err.Error(), Cause: err}
	}
	defer session.Close()

	stdin, err := session.StdinPipe()
	if err != nil {
		return &dynerr.TransportError{Host: host, Message: err.Error(), Cause: err}
	}

	cmd := fmt.Sprintf("mkdir -p \"$(dirname %q)\" && cat > %q && chmod %o %q", remotePath, remotePath, mode, remotePath)

	var stderr bytes.Buffer
	session.Stderr = &stderr

	if err := session.Start(cmd); err != nil {
		return &dynerr.TransportError{Host: host, Message: err.Error(), Cause: err}
	}

	if _, err := stdin.Write(content); err != nil {
		return &dynerr.TransportError{Host: host, Message: err.Error(), Cause: err}
	}
	if err := stdin.Close(); err != nil {
		return &dynerr.TransportError{Host: host, Message: err.Error(), Cause: err}
	}

	if err := session.Wait(); err != nil {
		return &dynerr.ConvergenceError{Artifact: remotePath, Message: err.Error(), Stderr: stderr.String()}
	}
	return nil
}

// WaitForReady polls the SSH port until a connection and handshake
// succeed, in the same spirit as the teacher's embedded-VM
// waitForReady loop over a fixed-interval poll.
func (e *Executor) WaitForReady(ctx context.Context, host string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		client, err := e.dial(ctx, host)
		if err == nil {
			client.Close()
			return nil
		}

		select {
		case <-ctx.Done():
			return &dynerr.TransportError{Host: host, Message: "timed out waiting for SSH readiness", Cause: ctx.Err()}
		case <-ticker.C:
		}
	}
}
