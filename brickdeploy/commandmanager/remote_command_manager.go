package commandmanager

import (
	"errors"
	"time"

	"github.com/steelcutops/brickdeploy/logger"
)

// Executor runs one command line to completion on the remote side.
type Executor interface {
	Run(command string) error
}

type RemoteCommandManager struct {
	Logger logger.Logger
	// Secret returns the value stripped from notices and results.
	Secret func() string
}

func (m *RemoteCommandManager) secret() string {
	if m.Secret == nil {
		return ""
	}
	return m.Secret()
}

// Run announces and executes a single command.
func (m *RemoteCommandManager) Run(e Executor, command string) (CommandResult, error) {
	secret := m.secret()
	result := CommandResult{
		Command:   Redact(command, secret),
		Timestamp: time.Now(),
	}

	m.Logger.Info(Notice(command, secret))
	err := e.Run(command)
	result.Duration = time.Since(result.Timestamp)

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode
	}
	if err != nil {
		m.Logger.Debug("Remote command failed", "command", result.Command, "exitCode", result.ExitCode, "error", err)
		return result, err
	}

	m.Logger.Debug("Remote command finished", "command", result.Command, "duration", result.Duration)
	return result, nil
}

// RunAll evaluates and runs producers in order on one executor. The first
// failure stops the sequence.
func (m *RemoteCommandManager) RunAll(e Executor, producers []Producer) ([]CommandResult, error) {
	results := make([]CommandResult, 0, len(producers))
	for _, p := range producers {
		result, err := m.Run(e, p())
		results = append(results, result)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
