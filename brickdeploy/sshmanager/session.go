package sshmanager

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/steelcutops/brickdeploy/brickdeploy/commandmanager"
	"github.com/steelcutops/brickdeploy/logger"
)

// Session owns one SSH connection and at most one SFTP sub-channel.
type Session struct {
	// Stdin is forwarded to remote commands while they run. It is read by
	// one pump for the lifetime of the session, so set it before the first
	// Run.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	client   *ssh.Client
	sftp     *sftp.Client
	password string
	logger   logger.Logger
	stdin    *stdinPump
}

func newSession(client *ssh.Client, password string, log logger.Logger) *Session {
	return &Session{
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		client:   client,
		password: password,
		logger:   log,
	}
}

// Run executes command on its own exec channel and blocks until it exits.
// A non-zero exit status is returned as *commandmanager.ExitError.
func (s *Session) Run(command string) error {
	if s.client == nil {
		return errors.New("session is closed")
	}
	redacted := commandmanager.Redact(command, s.password)

	channel, err := s.client.NewSession()
	if err != nil {
		return fmt.Errorf("failed to open exec channel: %w", err)
	}
	defer channel.Close()

	channel.Stdout = s.Stdout
	channel.Stderr = s.Stderr

	stop := make(chan struct{})
	var forwarded sync.WaitGroup
	if s.Stdin != nil {
		w, err := channel.StdinPipe()
		if err != nil {
			return fmt.Errorf("failed to attach stdin: %w", err)
		}
		if s.stdin == nil {
			s.stdin = newStdinPump(s.Stdin)
		}
		forwarded.Add(1)
		go func() {
			defer forwarded.Done()
			s.stdin.attach(w, stop)
		}()
	}

	s.logger.Debug("Executing remote command", "command", redacted)
	err = channel.Run(command)
	close(stop)
	forwarded.Wait()

	var exitErr *ssh.ExitError
	var missingErr *ssh.ExitMissingError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &exitErr):
		return &commandmanager.ExitError{Command: redacted, ExitCode: exitErr.ExitStatus()}
	case errors.As(err, &missingErr):
		return &commandmanager.ExitError{Command: redacted, ExitCode: -1}
	default:
		return fmt.Errorf("remote command %q: %w", redacted, err)
	}
}

// OpenSFTP starts the file-transfer sub-channel. Calling it twice is a no-op.
func (s *Session) OpenSFTP() error {
	if s.client == nil {
		return errors.New("session is closed")
	}
	if s.sftp != nil {
		return nil
	}
	client, err := sftp.NewClient(s.client)
	if err != nil {
		return fmt.Errorf("failed to create SFTP client: %w", err)
	}
	s.sftp = client
	return nil
}

// SFTP returns the sub-channel opened by OpenSFTP, or nil.
func (s *Session) SFTP() *sftp.Client {
	return s.sftp
}

// Close releases the SFTP sub-channel and the connection. It is safe to call
// more than once.
func (s *Session) Close() error {
	var result *multierror.Error
	if s.stdin != nil {
		s.stdin.close()
		s.stdin = nil
	}
	if s.sftp != nil {
		if err := s.sftp.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close sftp: %w", err))
		}
		s.sftp = nil
	}
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close connection: %w", err))
		}
		s.client = nil
	}
	return result.ErrorOrNil()
}
