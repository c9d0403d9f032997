// Package catalog defines the actions brickdeploy exposes and runs them in
// dependency order.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/steelcutops/brickdeploy/brickdeploy/commandmanager"
	"github.com/steelcutops/brickdeploy/brickdeploy/filemanager"
	"github.com/steelcutops/brickdeploy/brickdeploy/hostmanager"
	"github.com/steelcutops/brickdeploy/brickdeploy/installmanager"
	"github.com/steelcutops/brickdeploy/brickdeploy/servicemanager"
	"github.com/steelcutops/brickdeploy/brickdeploy/sshmanager"
)

const (
	InstallerGroup  = "ELJ-Installer"
	SystemGroup     = "ELJ-System"
	DeploymentGroup = "ELJ-Deployment"
	BuildGroup      = "Build"
)

var errNoBuilder = errors.New("no build tool configured")

// New builds the full action catalog for env.
func New(env *Environment) (*Registry, error) {
	var actions []*Action
	actions = append(actions, installerActions(env)...)
	actions = append(actions, systemActions(env)...)
	actions = append(actions, deploymentActions(env)...)
	actions = append(actions, buildActions()...)

	r, err := NewRegistry(actions...)
	if err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func command(group, name, description string, producers ...commandmanager.Producer) *Action {
	return &Action{Name: name, Group: group, Description: description, Commands: producers}
}

func installerActions(env *Environment) []*Action {
	inst := env.Installer
	sub := func(s installmanager.SubCommand) commandmanager.Producer {
		return func() string { return inst.Command(s) }
	}
	fetch := func(i int) commandmanager.Producer {
		return func() string { return inst.FetchCommands()[i] }
	}

	return []*Action{
		command(InstallerGroup, "getInstaller", "Download component installer on the brick.",
			fetch(0), fetch(1), fetch(2)),
		command(InstallerGroup, "updateAPT", "Update APT repositories.",
			env.sudo(sub(installmanager.Update))),
		command(InstallerGroup, "helpInstall", "Print the installer help.",
			sub(installmanager.Help)),
		command(InstallerGroup, "installJava", "Install Java on the brick.",
			env.sudo(sub(installmanager.Java))),
		command(InstallerGroup, "installOpenCV", "Install OpenCV libraries on the brick.",
			env.sudo(sub(installmanager.OpenCV))),
		command(InstallerGroup, "installRXTX", "Install RXTX library on the brick.",
			env.sudo(sub(installmanager.RXTX))),
		command(InstallerGroup, "installJavaLibraries", "Install Java libraries on the brick.",
			env.sudo(sub(installmanager.JavaLibs))),
		command(InstallerGroup, "javaVersion", "Print Java version which is present on the brick.",
			commandmanager.Static(hostmanager.JavaVersion)),
	}
}

func systemActions(env *Environment) []*Action {
	var actions []*Action
	for _, svc := range servicemanager.DefaultServices {
		for _, verb := range servicemanager.Verbs {
			actions = append(actions, command(SystemGroup,
				servicemanager.ActionName(verb, svc),
				servicemanager.Description(verb, svc),
				env.sudo(commandmanager.Static(servicemanager.Command(verb, svc)))))
		}
	}
	return append(actions,
		command(SystemGroup, "getDebianDistro", "Get the /etc/os-release file from the brick.",
			commandmanager.Static(hostmanager.OSRelease)),
		command(SystemGroup, "free", "Print free memory summary.",
			commandmanager.Static(hostmanager.FreeMemory)),
		command(SystemGroup, "ps", "Print list of running processes.",
			commandmanager.Static(hostmanager.Processes)),
		command(SystemGroup, "shutdown", "Shutdown the brick.",
			env.sudo(commandmanager.Static(hostmanager.Shutdown))),
		command(SystemGroup, "ev3devInfo", "Get output of ev3dev-sysinfo -m.",
			commandmanager.Static(hostmanager.SystemInfo)),
	)
}

func deploymentActions(env *Environment) []*Action {
	p := env.Paths
	return []*Action{
		command(DeploymentGroup, "testConnection", "Test connection to the brick.",
			commandmanager.Static(hostmanager.ListHome)),
		command(DeploymentGroup, "pkillJava", "Kill running Java instances.",
			commandmanager.Static(hostmanager.KillJava)),
		command(DeploymentGroup, "undeploy", "Remove previously uploaded JAR.",
			func() string {
				return hostmanager.RemoveFiles(p.RemoteProgramPath(), p.RemoteWrapperPath(), p.RemoteSplashPath())
			}),
		{
			Name:        "templateWrapper",
			Group:       DeploymentGroup,
			Description: "Generate shell script wrapper for the program.",
			Do:          templateWrapper,
		},
		{
			Name:        "deploy",
			Group:       DeploymentGroup,
			Description: "Deploy a new build of the program to the brick.",
			Do:          deploy,
			DependsOn:   []string{"clean", "templateWrapper", "package"},
		},
		command(DeploymentGroup, "run", "Run the program that is currently loaded on the brick.",
			func() string { return p.JavaCommand(false) }),
		{
			Name:        "deployRun",
			Group:       DeploymentGroup,
			Description: "Deploy a new build of the program to the brick and then run it.",
			DependsOn:   []string{"deploy", "run"},
		},
	}
}

func buildActions() []*Action {
	return []*Action{
		{
			Name:        "clean",
			Group:       BuildGroup,
			Description: "Delete the local build directory.",
			Do: func(ctx context.Context, env *Environment) error {
				if env.Builder == nil {
					return errNoBuilder
				}
				return env.Builder.Clean(ctx)
			},
		},
		{
			Name:        "package",
			Group:       BuildGroup,
			Description: "Build the program jar.",
			Do: func(ctx context.Context, env *Environment) error {
				if env.Builder == nil {
					return errNoBuilder
				}
				return env.Builder.Package(ctx)
			},
		},
	}
}

func templateWrapper(_ context.Context, env *Environment) error {
	path, err := env.Paths.WriteWrapper()
	if err != nil {
		return err
	}
	env.Logger.Info("Generated launcher", "path", path)
	return nil
}

func deploy(_ context.Context, env *Environment) error {
	p := env.Paths
	artifacts := []filemanager.Artifact{
		{Local: p.LocalProgramPath(), Remote: p.RemoteProgramPath(), Mode: 0644},
		{Local: p.LocalSplashPath(), Remote: p.RemoteSplashPath(), Mode: 0644},
		{Local: p.LocalWrapperPath(), Remote: p.RemoteWrapperPath(), Mode: 0755},
	}

	err := env.WithSession(func(s *sshmanager.Session) error {
		if err := s.OpenSFTP(); err != nil {
			return err
		}
		fm := filemanager.NewSFTPFileManager(filemanager.FromSFTP(s.SFTP()), env.Logger)
		return filemanager.Deploy(fm, p.RemoteDirectories(), artifacts)
	})
	if err != nil {
		return fmt.Errorf("program upload failed: %w", err)
	}
	return nil
}
