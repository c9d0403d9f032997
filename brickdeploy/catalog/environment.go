package catalog

import (
	"io"

	"github.com/steelcutops/brickdeploy/brickdeploy/buildmanager"
	"github.com/steelcutops/brickdeploy/brickdeploy/commandmanager"
	"github.com/steelcutops/brickdeploy/brickdeploy/config"
	"github.com/steelcutops/brickdeploy/brickdeploy/installmanager"
	"github.com/steelcutops/brickdeploy/brickdeploy/pathmanager"
	"github.com/steelcutops/brickdeploy/brickdeploy/sshmanager"
	"github.com/steelcutops/brickdeploy/logger"
)

// Environment is what actions run against. Config is read whenever an
// action executes, so it may be filled in after the catalog is built.
type Environment struct {
	Config    *config.Config
	Paths     *pathmanager.PathManager
	Installer *installmanager.InstallManager
	Sessions  *sshmanager.Factory
	Builder   buildmanager.Builder
	Logger    logger.Logger

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewEnvironment wires the path deriver and installer to cfg.
func NewEnvironment(cfg *config.Config, sessions *sshmanager.Factory, builder buildmanager.Builder, log logger.Logger) *Environment {
	return &Environment{
		Config:    cfg,
		Paths:     pathmanager.New(cfg),
		Installer: installmanager.New(cfg),
		Sessions:  sessions,
		Builder:   builder,
		Logger:    log,
	}
}

// Password returns the current login and sudo password.
func (e *Environment) Password() string {
	return e.Config.Brick.Password
}

func (e *Environment) Connection() sshmanager.Connection {
	b := e.Config.Brick
	return sshmanager.Connection{
		Host:     b.Host,
		Port:     b.Port,
		User:     b.User,
		Password: b.Password,
		Timeout:  b.Timeout,
	}
}

// WithSession runs fn on a fresh session wired to the environment's stdio.
func (e *Environment) WithSession(fn func(*sshmanager.Session) error) error {
	return e.Sessions.WithSession(e.Connection(), func(s *sshmanager.Session) error {
		if e.Stdin != nil {
			s.Stdin = e.Stdin
		}
		if e.Stdout != nil {
			s.Stdout = e.Stdout
		}
		if e.Stderr != nil {
			s.Stderr = e.Stderr
		}
		return fn(s)
	})
}

// RunCommands evaluates and runs producers in order over one session.
func (e *Environment) RunCommands(producers []commandmanager.Producer) error {
	cm := &commandmanager.RemoteCommandManager{Logger: e.Logger, Secret: e.Password}
	return e.WithSession(func(s *sshmanager.Session) error {
		_, err := cm.RunAll(s, producers)
		return err
	})
}

func (e *Environment) sudo(p commandmanager.Producer) commandmanager.Producer {
	return commandmanager.Sudo(e.Password, p)
}
