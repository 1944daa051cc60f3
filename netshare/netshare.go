// Package netshare manages credential-protected network share connections
// for processes that read or write UNC paths.
package netshare

import (
	"context"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/cartops/proctools/errors"
	"github.com/cartops/proctools/logger"
)

// alreadyDisconnectedExitCode is what the share tool returns when asked to
// delete a connection that does not exist.
const alreadyDisconnectedExitCode = 2

// Connection is a connect/disconnect handle for one UNC share. The zero
// value is not usable; construct with NewConnection.
type Connection struct {
	path     string
	username string
	password string

	runCommand func(ctx context.Context, name string, args ...string) error
}

// NewConnection prepares a share connection. Username and password may be
// empty when the ambient session credential suffices.
func NewConnection(uncPath, username, password string) *Connection {
	return &Connection{
		// Trailing separators are not accepted by the share tool.
		path:     strings.TrimRight(uncPath, `\/`),
		username: username,
		password: password,
		runCommand: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
	}
}

// Path returns the share path.
func (c *Connection) Path() string { return c.path }

// String returns the share path. The credential never renders.
func (c *Connection) String() string { return c.path }

// Connect establishes the share connection.
func (c *Connection) Connect(ctx context.Context) error {
	args := []string{"use", c.path}
	if c.password != "" {
		args = append(args, c.password)
	}
	if c.username != "" {
		args = append(args, "/user:"+c.username)
	}
	if err := c.runCommand(ctx, "net", args...); err != nil {
		return errors.Wrapf(err, "connect share %q", c.path)
	}
	logger.Logger.Debugw("Connected network share", "path", c.path)
	return nil
}

// Disconnect drops the share connection. Disconnecting a share that is not
// connected is not an error.
func (c *Connection) Disconnect(ctx context.Context) error {
	err := c.runCommand(ctx, "net", "use", c.path, "/delete", "/yes")
	if err != nil {
		var exitErr interface{ ExitCode() int }
		if errors.As(err, &exitErr) && exitErr.ExitCode() == alreadyDisconnectedExitCode {
			logger.Logger.Debugw("Network share already disconnected", "path", c.path)
			return nil
		}
		return errors.Wrapf(err, "disconnect share %q", c.path)
	}
	logger.Logger.Debugw("Disconnected network share", "path", c.path)
	return nil
}

// WithConnection connects the share, runs fn, and disconnects afterward even
// when fn fails.
func (c *Connection) WithConnection(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := c.Connect(ctx); err != nil {
		return err
	}
	fnErr := fn(ctx)
	if err := c.Disconnect(ctx); err != nil {
		if fnErr != nil {
			return fnErr
		}
		return err
	}
	return fnErr
}

// CommandLine renders the connect invocation for diagnostics, credential
// redacted.
func (c *Connection) CommandLine() string {
	args := []string{"net", "use", c.path}
	if c.password != "" {
		args = append(args, "****")
	}
	if c.username != "" {
		args = append(args, "/user:"+c.username)
	}
	return shellquote.Join(args...)
}
