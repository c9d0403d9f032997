// Package buildmanager runs the local build steps that produce the program
// jar before a deployment.
package buildmanager

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/steelcutops/brickdeploy/brickdeploy/commandmanager"
	"github.com/steelcutops/brickdeploy/brickdeploy/config"
	"github.com/steelcutops/brickdeploy/logger"
)

// Builder is the host build tool.
type Builder interface {
	Clean(ctx context.Context) error
	Package(ctx context.Context) error
}

// ShellBuilder runs the configured build commands with sh in the project
// directory. An empty command is skipped.
type ShellBuilder struct {
	Config *config.Config
	Logger logger.Logger
	Stdout io.Writer
	Stderr io.Writer
}

func NewShellBuilder(cfg *config.Config, log logger.Logger) *ShellBuilder {
	return &ShellBuilder{Config: cfg, Logger: log, Stdout: os.Stdout, Stderr: os.Stderr}
}

func (b *ShellBuilder) Clean(ctx context.Context) error {
	_, err := b.run(ctx, b.Config.Build.CleanCommand)
	return err
}

// Package builds a slim or fat jar depending on the packaging mode.
func (b *ShellBuilder) Package(ctx context.Context) error {
	command := b.Config.Build.SlimCommand
	if !b.Config.Java.IsSlim() {
		command = b.Config.Build.FatCommand
	}
	_, err := b.run(ctx, command)
	return err
}

func (b *ShellBuilder) run(ctx context.Context, command string) (commandmanager.CommandResult, error) {
	if command == "" {
		return commandmanager.CommandResult{}, nil
	}

	start := time.Now()
	b.Logger.Info("Building", "command", command, "dir", b.Config.Project.Dir)

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = b.Config.Project.Dir
	cmd.Stdout = b.Stdout
	cmd.Stderr = b.Stderr
	err := cmd.Run()

	result := commandmanager.CommandResult{
		Command:   command,
		ExitCode:  exitCode(err),
		Duration:  time.Since(start),
		Timestamp: start,
	}
	b.Logger.Debug("Build step finished", "command", command, "exit_code", result.ExitCode, "duration", result.Duration)

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return result, &commandmanager.ExitError{Command: command, ExitCode: result.ExitCode}
	}
	return result, err
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 0
}
