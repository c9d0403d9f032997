package commandmanager

import (
	"fmt"
	"strings"
	"time"
)

// Producer yields a remote command line. Producers are evaluated when the
// command is about to run, not when it is registered.
type Producer func() string

// Static returns a Producer for a fixed command line.
func Static(command string) Producer {
	return func() string {
		return command
	}
}

// SudoCommand pipes password into "sudo -S" running command.
func SudoCommand(password, command string) string {
	return "echo \"" + password + "\" | sudo -S " + command
}

// Sudo wraps p so that its command runs with privilege escalation. The
// password is looked up at evaluation time.
func Sudo(password func() string, p Producer) Producer {
	return func() string {
		return SudoCommand(password(), p())
	}
}

// Redact removes every occurrence of secret from command.
func Redact(command, secret string) string {
	if secret == "" {
		return command
	}
	return strings.ReplaceAll(command, secret, "")
}

// Notice is the line announced before a command runs. The secret is
// stripped so the shape of the command stays visible without it.
func Notice(command, secret string) string {
	return fmt.Sprintf("Running \"%s\"", Redact(command, secret))
}

// CommandResult encapsulates the results from a command execution.
type CommandResult struct {
	Command   string
	ExitCode  int
	Duration  time.Duration
	Timestamp time.Time
}

// ExitError reports a remote command that finished with a non-zero status.
// Command never contains the password.
type ExitError struct {
	Command  string
	ExitCode int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("remote command returned failure: %d", e.ExitCode)
}
