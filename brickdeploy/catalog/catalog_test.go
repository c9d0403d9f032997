package catalog

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steelcutops/brickdeploy/brickdeploy/commandmanager"
	"github.com/steelcutops/brickdeploy/brickdeploy/config"
	"github.com/steelcutops/brickdeploy/brickdeploy/sshmanager"
	"github.com/steelcutops/brickdeploy/internal/sshtest"
	"github.com/steelcutops/brickdeploy/logger"
)

type fakeBuilder struct {
	env   *Environment
	calls []string
}

func (b *fakeBuilder) Clean(context.Context) error {
	b.calls = append(b.calls, "clean")
	return os.RemoveAll(filepath.Join(b.env.Config.Project.Dir, "build"))
}

func (b *fakeBuilder) Package(context.Context) error {
	b.calls = append(b.calls, "package")
	jar := b.env.Paths.LocalProgramPath()
	if err := os.MkdirAll(filepath.Dir(jar), 0755); err != nil {
		return err
	}
	return os.WriteFile(jar, []byte("jar"), 0644)
}

type fixture struct {
	srv     *sshtest.Server
	env     *Environment
	builder *fakeBuilder
	runner  *Runner
	log     *bytes.Buffer
	remote  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv, err := sshtest.Start("robot", "maker")
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	srv.SetHandler(func(string, io.Reader, io.Writer, io.Writer) int { return 0 })

	remote := t.TempDir()
	project := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(project, "gradle"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(project, "gradle", "splash.txt"), []byte("splash"), 0644))

	cfg := config.Default()
	cfg.Apply(
		config.WithHost(srv.Host),
		config.WithPort(srv.Port),
		config.WithUser("robot"),
		config.WithPassword("maker"),
		config.WithTimeout(5*time.Second),
	)
	cfg.Project.Name = "demo"
	cfg.Project.Version = "1.0"
	cfg.Project.Dir = project
	cfg.Java.MainClass = "com.example.Main"
	cfg.Paths.WrapperDir = filepath.Join(remote, "home")
	cfg.Paths.ProgramDir = filepath.Join(remote, "programs")
	cfg.Paths.SplashDir = filepath.Join(remote, "splashes")

	var buf bytes.Buffer
	log := logger.FromLogrus(logger.Configure(logger.Options{Output: &buf}))
	builder := &fakeBuilder{}
	env := NewEnvironment(cfg, sshmanager.NewFactory(sshmanager.RealDialer{}, log), builder, log)
	env.Stdout = io.Discard
	env.Stderr = io.Discard
	builder.env = env

	registry, err := New(env)
	require.NoError(t, err)

	return &fixture{srv: srv, env: env, builder: builder, runner: NewRunner(registry, env), log: &buf, remote: remote}
}

func TestCatalogGroups(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, []string{InstallerGroup, SystemGroup, DeploymentGroup, BuildGroup}, f.runner.Registry.Groups())

	for _, name := range []string{
		"getInstaller", "updateAPT", "helpInstall", "installJava", "installOpenCV", "installRXTX",
		"installJavaLibraries", "javaVersion", "stopBluetooth", "restartBluetooth", "stopNtp",
		"restartNtp", "stopNmbd", "restartNmbd", "stopBrickman", "restartBrickman", "getDebianDistro",
		"free", "ps", "shutdown", "ev3devInfo", "testConnection", "pkillJava", "undeploy",
		"templateWrapper", "deploy", "run", "deployRun", "clean", "package",
	} {
		_, ok := f.runner.Registry.Get(name)
		assert.True(t, ok, name)
	}

	undeploy, _ := f.runner.Registry.Get("undeploy")
	assert.Equal(t, "Remove previously uploaded JAR.", undeploy.Description)

	a, _ := f.runner.Registry.Get("restartBrickman")
	assert.Equal(t, "Restart the brickman service.", a.Description)
	assert.Equal(t, SystemGroup, a.Group)
}

func TestStopNtpRunsSudoCommand(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.runner.Run(context.Background(), "stopNtp"))

	assert.Equal(t, []string{`echo "maker" | sudo -S systemctl stop ntp`}, f.srv.Commands())
	assert.Contains(t, f.log.String(), `Running \"echo \"\" | sudo -S systemctl stop ntp\"`)
	assert.NotContains(t, f.log.String(), "maker")
}

func TestProducersAreEvaluatedAtRunTime(t *testing.T) {
	f := newFixture(t)
	f.env.Config.Brick.Password = "changed"

	err := f.runner.Run(context.Background(), "restartNtp")

	var connErr *sshmanager.ConnectionError
	require.ErrorAs(t, err, &connErr)

	f.env.Config.Brick.Password = "maker"
	f.env.Config.Project.Version = "2.0"
	require.NoError(t, f.runner.Run(context.Background(), "undeploy"))
	assert.Contains(t, f.srv.Commands()[0], "demo-2.0.jar")
}

func TestGetInstallerRunsInOrder(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.runner.Run(context.Background(), "getInstaller"))

	cmds := f.srv.Commands()
	require.Len(t, cmds, 3)
	assert.Equal(t, "mkdir -p /home/robot/java", cmds[0])
	assert.True(t, strings.HasPrefix(cmds[1], `/bin/sh -c "if grep -i jessie /etc/os-release`))
	assert.Equal(t, "chmod +x /home/robot/java/installer.sh", cmds[2])
}

func TestFailingCommandStopsAction(t *testing.T) {
	f := newFixture(t)
	f.srv.SetHandler(func(cmd string, _ io.Reader, _, _ io.Writer) int {
		if strings.Contains(cmd, "wget") {
			return 8
		}
		return 0
	})

	err := f.runner.Run(context.Background(), "getInstaller")

	var actionErr *ActionError
	require.ErrorAs(t, err, &actionErr)
	assert.Equal(t, "getInstaller", actionErr.Action)
	var exitErr *commandmanager.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 8, exitErr.ExitCode)
	assert.Len(t, f.srv.Commands(), 2)
}

func TestDeployUploadsArtifacts(t *testing.T) {
	f := newFixture(t)
	p := f.env.Paths
	for _, dir := range p.RemoteDirectories() {
		require.NoError(t, os.MkdirAll(dir, 0755))
	}

	require.NoError(t, f.runner.Run(context.Background(), "deploy"))

	assert.Equal(t, []string{"clean", "package"}, f.builder.calls)

	jar, err := os.ReadFile(p.RemoteProgramPath())
	require.NoError(t, err)
	assert.Equal(t, "jar", string(jar))

	splash, err := os.ReadFile(p.RemoteSplashPath())
	require.NoError(t, err)
	assert.Equal(t, "splash", string(splash))

	wrapper, err := os.ReadFile(p.RemoteWrapperPath())
	require.NoError(t, err)
	assert.Equal(t, p.WrapperScript(), string(wrapper))

	info, err := os.Stat(p.RemoteWrapperPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
	info, err = os.Stat(p.RemoteProgramPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestDeployAbortsWhenUploadFails(t *testing.T) {
	f := newFixture(t)
	f.env.Config.Paths.ProgramDir = filepath.Join(f.remote, "missing", "programs")

	err := f.runner.Run(context.Background(), "deploy")

	var actionErr *ActionError
	require.ErrorAs(t, err, &actionErr)
	assert.Equal(t, "deploy", actionErr.Action)
	assert.Contains(t, err.Error(), "program upload failed")

	_, statErr := os.Stat(f.env.Paths.RemoteSplashPath())
	assert.True(t, os.IsNotExist(statErr), "later uploads must not run")
}

func TestDeployRunOrder(t *testing.T) {
	f := newFixture(t)

	plan, err := f.runner.Registry.Plan("deployRun")
	require.NoError(t, err)
	var names []string
	for _, a := range plan {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"clean", "templateWrapper", "package", "deploy", "run", "deployRun"}, names)

	require.NoError(t, f.runner.Run(context.Background(), "deployRun"))
	assert.Equal(t, []string{f.env.Paths.JavaCommand(false)}, f.srv.Commands())
}

func TestPackageWithoutBuilder(t *testing.T) {
	f := newFixture(t)
	f.env.Builder = nil

	err := f.runner.Run(context.Background(), "package")
	assert.ErrorIs(t, err, errNoBuilder)
}
