package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/steelcutops/brickdeploy/internal/sshtest"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "brickdeploy.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root, err := newRootCmd(newApp())
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	err = root.Execute()
	return stdout.String(), stderr.String(), err
}

const demoConfig = `[brick]
host = 10.0.1.1
user = robot
password = maker

[project]
name = demo
version = 1.0

[java]
main_class = com.example.Main
`

func TestPaths(t *testing.T) {
	out, _, err := execute(t, "--config", writeConfig(t, demoConfig), "paths")
	require.NoError(t, err)

	assert.Contains(t, out, "robot@10.0.1.1:22")
	assert.Contains(t, out, "/home/robot/java/programs/demo-1.0.jar")
	assert.Contains(t, out, "/home/robot/demo-1.0.sh")
	assert.Contains(t, out, `java -cp "/home/robot/java/programs/demo-1.0.jar" com.example.Main`)
}

func TestPathsHidesSudoPassword(t *testing.T) {
	out, _, err := execute(t, "--config", writeConfig(t, demoConfig+"use_sudo = true\n"), "paths")
	require.NoError(t, err)

	assert.Contains(t, out, "sudo -S java")
	assert.NotContains(t, out, "maker")
}

func TestFlagsOverrideConfig(t *testing.T) {
	out, _, err := execute(t, "--config", writeConfig(t, demoConfig),
		"--host", "10.0.0.9", "--port", "2200", "--user", "pi", "paths")
	require.NoError(t, err)

	assert.Contains(t, out, "pi@10.0.0.9:2200")
}

func TestMissingConfigFile(t *testing.T) {
	_, _, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.ini"), "paths")
	assert.ErrorContains(t, err, "failed to load config")
}

func TestActionsYAML(t *testing.T) {
	out, _, err := execute(t, "actions", "--format", "yaml")
	require.NoError(t, err)

	var views []actionView
	require.NoError(t, yaml.Unmarshal([]byte(out), &views))

	byName := map[string]actionView{}
	for _, v := range views {
		byName[v.Name] = v
	}
	assert.Equal(t, "ELJ-System", byName["stopNtp"].Group)
	assert.Equal(t, "Stop the ntp service.", byName["stopNtp"].Description)
	assert.Equal(t, []string{"deploy", "run"}, byName["deployRun"].DependsOn)
}

func TestActionsText(t *testing.T) {
	out, _, err := execute(t, "actions")
	require.NoError(t, err)

	assert.Contains(t, out, "ELJ-Installer\n")
	assert.Contains(t, out, "getInstaller")
	assert.Contains(t, out, "Download component installer on the brick.")
}

func TestActionsUnknownFormat(t *testing.T) {
	_, _, err := execute(t, "actions", "--format", "json")
	assert.EqualError(t, err, `unknown format "json"`)
}

func TestRunActionOnBrick(t *testing.T) {
	srv, err := sshtest.Start("robot", "maker")
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	srv.SetHandler(func(cmd string, _ io.Reader, stdout, stderr io.Writer) int {
		io.WriteString(stdout, "java\n")
		return 0
	})

	out, logs, err := execute(t, "--config", writeConfig(t, demoConfig),
		"--host", srv.Host, "--port", strconv.Itoa(srv.Port), "testConnection")
	require.NoError(t, err)

	assert.Equal(t, []string{"ls"}, srv.Commands())
	assert.Equal(t, "java\n", out)
	assert.Contains(t, logs, `Running \"ls\"`)
}

func TestRunActionReportsFailure(t *testing.T) {
	srv, err := sshtest.Start("robot", "maker")
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	srv.SetHandler(func(string, io.Reader, io.Writer, io.Writer) int { return 1 })

	_, logs, err := execute(t, "--config", writeConfig(t, demoConfig),
		"--host", srv.Host, "--port", strconv.Itoa(srv.Port), "shutdown")

	assert.EqualError(t, err, `action "shutdown" failed: remote command returned failure: 1`)
	assert.NotContains(t, logs, "maker")
}
