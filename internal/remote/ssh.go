// Package remote provides the network capabilities probes use: running a
// command over SSH and fetching an HTTP endpoint.
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"
)

// DefaultConnectTimeout bounds the TCP dial and SSH handshake.
const DefaultConnectTimeout = 10 * time.Second

// Endpoint identifies an SSH server and the login to use.
type Endpoint struct {
	Host string
	Port int
	User string
}

// Address returns host:port.
func (e Endpoint) Address() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// SSHRunner runs a single command on a remote host.
type SSHRunner interface {
	// Run opens a session on ep, runs command and returns its stdout.
	Run(ctx context.Context, ep Endpoint, command string) (string, error)
}

// KeyError reports a private key that cannot be read or parsed.
type KeyError struct {
	Path string
	Err  error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("private key %s: %v", e.Path, e.Err)
}

func (e *KeyError) Unwrap() error { return e.Err }

// CommandError reports a remote command that exited non-zero.
type CommandError struct {
	Command string
	Status  int
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("remote command %q exited %d: %s", e.Command, e.Status, e.Stderr)
	}
	return fmt.Sprintf("remote command %q exited %d", e.Command, e.Status)
}

func (e *CommandError) Unwrap() error { return e.Err }

// SSHClient authenticates with a private key file. Host keys are not verified,
// and every Run opens its own connection.
type SSHClient struct {
	KeyPath        string
	ConnectTimeout time.Duration
}

var _ SSHRunner = (*SSHClient)(nil)

// NewSSHClient creates a client for the given private key.
func NewSSHClient(keyPath string) *SSHClient {
	return &SSHClient{KeyPath: keyPath, ConnectTimeout: DefaultConnectTimeout}
}

func (c *SSHClient) signer() (ssh.Signer, error) {
	pem, err := os.ReadFile(c.KeyPath)
	if err != nil {
		return nil, &KeyError{Path: c.KeyPath, Err: err}
	}
	signer, err := ssh.ParsePrivateKey(pem)
	if err != nil {
		return nil, &KeyError{Path: c.KeyPath, Err: err}
	}
	return signer, nil
}

// Run implements SSHRunner. The connection is closed as soon as ctx is done.
func (c *SSHClient) Run(ctx context.Context, ep Endpoint, command string) (string, error) {
	signer, err := c.signer()
	if err != nil {
		return "", err
	}

	connectTimeout := c.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}

	addr := ep.Address()
	dialer := net.Dialer{Timeout: connectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", fmt.Errorf("connecting to %s: %w", addr, err)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	cfg := &ssh.ClientConfig{
		User:            ep.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // nodes are provisioned ad hoc
		Timeout:         connectTimeout,
	}
	_ = conn.SetDeadline(time.Now().Add(connectTimeout))
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		_ = conn.Close()
		return "", fmt.Errorf("ssh handshake with %s: %w", addr, ctxErr(ctx, err))
	}
	_ = conn.SetDeadline(time.Time{})

	client := ssh.NewClient(sshConn, chans, reqs)
	defer client.Close() //nolint:errcheck

	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("opening session on %s: %w", addr, ctxErr(ctx, err))
	}
	defer session.Close() //nolint:errcheck

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	if err := session.Run(command); err != nil {
		if ctx.Err() != nil {
			return stdout.String(), fmt.Errorf("running %q on %s: %w", command, addr, ctx.Err())
		}
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			return stdout.String(), &CommandError{
				Command: command,
				Status:  exitErr.ExitStatus(),
				Stderr:  string(bytes.TrimSpace(stderr.Bytes())),
				Err:     err,
			}
		}
		return stdout.String(), fmt.Errorf("running %q on %s: %w", command, addr, err)
	}
	return stdout.String(), nil
}

// ctxErr prefers the context's error when the context ended the operation.
func ctxErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
