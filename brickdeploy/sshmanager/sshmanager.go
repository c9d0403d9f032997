// Package sshmanager opens password-authenticated SSH sessions to the brick.
//
// A Session is scoped to one action: connect once, run commands or one
// upload sequence, then Close. Commands block until the remote process exits;
// there is no timeout beyond the dial timeout and no cancellation.
package sshmanager

import (
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/steelcutops/brickdeploy/logger"
)

// Dialer establishes the underlying SSH client connection.
type Dialer interface {
	Dial(network, addr string, config *ssh.ClientConfig) (*ssh.Client, error)
}

type RealDialer struct{}

func (RealDialer) Dial(network, addr string, config *ssh.ClientConfig) (*ssh.Client, error) {
	return ssh.Dial(network, addr, config)
}

// Connection holds the parameters of a single connection attempt.
type Connection struct {
	Host     string
	Port     int
	User     string
	Password string
	Timeout  time.Duration
}

func (c Connection) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ConnectionError reports a failure to reach or authenticate with the brick.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Factory creates sessions. It keeps no connection state, so one instance
// can serve the whole process.
type Factory struct {
	Dialer Dialer
	Logger logger.Logger
}

var (
	shared     *Factory
	sharedOnce sync.Once
)

// Shared returns the process-wide factory, creating it on first use.
func Shared() *Factory {
	sharedOnce.Do(func() {
		shared = NewFactory(RealDialer{}, logger.New())
	})
	return shared
}

func NewFactory(dialer Dialer, log logger.Logger) *Factory {
	return &Factory{Dialer: dialer, Logger: log}
}

// ClientConfig builds the client configuration for conn. Host keys are not
// verified.
func (f *Factory) ClientConfig(conn Connection) *ssh.ClientConfig {
	password := conn.Password
	return &ssh.ClientConfig{
		User: conn.User,
		Auth: []ssh.AuthMethod{
			ssh.Password(password),
			ssh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = password
				}
				return answers, nil
			}),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         conn.Timeout,
	}
}

// Connect opens an authenticated session. The caller owns the session and
// must Close it.
func (f *Factory) Connect(conn Connection) (*Session, error) {
	addr := conn.Addr()
	f.Logger.Debug("Connecting", "addr", addr, "user", conn.User, "timeout", conn.Timeout)

	client, err := f.Dialer.Dial("tcp", addr, f.ClientConfig(conn))
	if err != nil {
		return nil, &ConnectionError{Addr: addr, Err: err}
	}
	return newSession(client, conn.Password, f.Logger.With("addr", addr)), nil
}

// WithSession connects, hands the session to fn and closes it on every exit
// path. Release failures are logged, not returned.
func (f *Factory) WithSession(conn Connection, fn func(*Session) error) error {
	sess, err := f.Connect(conn)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			f.Logger.Debug("Failed to release session", "error", cerr)
		}
	}()
	return fn(sess)
}
