package installmanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steelcutops/brickdeploy/brickdeploy/config"
)

func TestScriptPath(t *testing.T) {
	cfg := config.Default()
	m := New(cfg)
	assert.Equal(t, "/home/robot/java/installer.sh", m.ScriptPath())

	cfg.Paths.InstallerDir = "/opt/elj/"
	assert.Equal(t, "/opt/elj/installer.sh", m.ScriptPath())
}

func TestFetchCommands(t *testing.T) {
	cmds := New(config.Default()).FetchCommands()

	require.Len(t, cmds, 3)
	assert.Equal(t, "mkdir -p /home/robot/java", cmds[0])
	assert.Equal(t,
		`/bin/sh -c "if grep -i jessie /etc/os-release; then `+
			`wget https://raw.githubusercontent.com/ev3dev-lang-java/installer/master/installer-jessie.sh -O /home/robot/java/installer.sh; `+
			`else wget https://raw.githubusercontent.com/ev3dev-lang-java/installer/master/installer.sh -O /home/robot/java/installer.sh; fi"`,
		cmds[1])
	assert.Equal(t, "chmod +x /home/robot/java/installer.sh", cmds[2])
}

func TestCommand(t *testing.T) {
	m := New(config.Default())
	assert.Equal(t, "/home/robot/java/installer.sh update", m.Command(Update))
	assert.Equal(t, "/home/robot/java/installer.sh javaLibs", m.Command(JavaLibs))
}
