// Package installmanager drives the ev3dev-lang-java installer script on the
// brick.
package installmanager

import (
	"fmt"
	"strings"

	"github.com/steelcutops/brickdeploy/brickdeploy/config"
)

const (
	scriptURL       = "https://raw.githubusercontent.com/ev3dev-lang-java/installer/master/installer.sh"
	jessieScriptURL = "https://raw.githubusercontent.com/ev3dev-lang-java/installer/master/installer-jessie.sh"
)

// SubCommand is an argument understood by installer.sh.
type SubCommand string

const (
	Update   SubCommand = "update"
	Help     SubCommand = "help"
	Java     SubCommand = "java"
	OpenCV   SubCommand = "opencv"
	RXTX     SubCommand = "rxtx"
	JavaLibs SubCommand = "javaLibs"
)

type InstallManager struct {
	cfg *config.Config
}

func New(cfg *config.Config) *InstallManager {
	return &InstallManager{cfg: cfg}
}

// ScriptPath is where the installer is stored on the brick.
func (m *InstallManager) ScriptPath() string {
	return strings.TrimRight(m.cfg.Paths.InstallerDir, "/") + "/installer.sh"
}

// FetchCommands downloads the installer. Debian jessie images need their
// own variant of the script, so the release is checked on the brick.
func (m *InstallManager) FetchCommands() []string {
	script := m.ScriptPath()
	return []string{
		"mkdir -p " + m.cfg.Paths.InstallerDir,
		fmt.Sprintf(`/bin/sh -c "if grep -i jessie /etc/os-release; then wget %s -O %s; else wget %s -O %s; fi"`,
			jessieScriptURL, script, scriptURL, script),
		"chmod +x " + script,
	}
}

// Command runs the installer with sub.
func (m *InstallManager) Command(sub SubCommand) string {
	return m.ScriptPath() + " " + string(sub)
}
