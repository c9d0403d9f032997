// Package pathmanager derives remote and local artifact paths, classpaths
// and the launch command from a configuration.
//
// Every method reads the configuration when it is called, so changes made
// after construction are honored. No method has side effects except
// WriteWrapper.
package pathmanager

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/steelcutops/brickdeploy/brickdeploy/config"
)

const fileScheme = "file://"

type PathManager struct {
	cfg *config.Config
}

func New(cfg *config.Config) *PathManager {
	return &PathManager{cfg: cfg}
}

// BaseName is "<project>-<version>", with an "-all" suffix for fat jars.
func (p *PathManager) BaseName() string {
	suffix := ""
	if !p.cfg.Java.IsSlim() {
		suffix = "-all"
	}
	return p.cfg.ProjectName() + "-" + p.cfg.Project.Version + suffix
}

func (p *PathManager) RemoteProgramPath() string {
	return remoteJoin(p.cfg.Paths.ProgramDir, p.BaseName()+".jar")
}

func (p *PathManager) RemoteWrapperPath() string {
	return remoteJoin(p.cfg.Paths.WrapperDir, p.BaseName()+".sh")
}

func (p *PathManager) RemoteSplashPath() string {
	return remoteJoin(p.cfg.Paths.SplashDir, p.BaseName()+".txt")
}

// RemoteDirectories lists the directories a deployment writes into, in the
// order they are created.
func (p *PathManager) RemoteDirectories() []string {
	return []string{p.cfg.Paths.WrapperDir, p.cfg.Paths.ProgramDir, p.cfg.Paths.SplashDir}
}

func (p *PathManager) buildDir() string {
	if filepath.IsAbs(p.cfg.Project.BuildDir) {
		return p.cfg.Project.BuildDir
	}
	return filepath.Join(p.cfg.Project.Dir, p.cfg.Project.BuildDir)
}

func (p *PathManager) LocalProgramPath() string {
	return filepath.Join(p.buildDir(), "libs", p.BaseName()+".jar")
}

func (p *PathManager) LocalWrapperPath() string {
	return filepath.Join(p.buildDir(), "launcher.sh")
}

func (p *PathManager) LocalSplashPath() string {
	if p.cfg.Project.SplashFile != "" {
		return p.cfg.Project.SplashFile
	}
	return filepath.Join(p.cfg.Project.Dir, "gradle", "splash.txt")
}

// ClassPath assembles the runtime classpath. The manifest form keeps the
// file:// prefixes and separates entries with spaces; the execution form
// appends the program jar, strips the prefixes and joins with ':'.
// Custom libraries are taken verbatim in both forms.
func (p *PathManager) ClassPath(manifest bool) string {
	var entries []string

	if p.cfg.Java.IsSlim() {
		for _, lib := range p.cfg.Java.RuntimeLibs {
			entries = append(entries, fileScheme+remoteJoin(p.cfg.Paths.LibraryDir, path.Base(filepath.ToSlash(lib))))
		}
	}
	if p.cfg.Java.LibOpenCV {
		entries = append(entries, fileScheme+p.cfg.Paths.OpenCVJar)
	}
	if p.cfg.Java.LibRXTX {
		entries = append(entries, fileScheme+p.cfg.Paths.RXTXJar)
	}
	entries = append(entries, p.cfg.Java.LibCustom...)

	if manifest {
		return strings.Join(entries, " ")
	}

	entries = append(entries, p.RemoteProgramPath())
	for i, e := range entries {
		entries[i] = strings.TrimPrefix(e, fileScheme)
	}
	return strings.Join(entries, ":")
}

// JavaCommand builds the command line that starts the program on the brick.
// The time and brickrun prefixes are left out of the wrapper script.
func (p *PathManager) JavaCommand(wrapper bool) string {
	java := []string{"java"}
	java = append(java, p.cfg.Java.JVMFlags...)

	if p.cfg.Java.UseEmbeddedPaths {
		java = append(java, "-jar", p.RemoteProgramPath())
	} else {
		java = append(java, "-cp \""+p.ClassPath(false)+"\"", p.cfg.Java.MainClass)
	}

	var prefix []string
	if !wrapper {
		if p.cfg.Java.UseTime {
			prefix = append(prefix, "time")
		}
		if p.cfg.Java.UseBrickrun {
			prefix = append(prefix, "brickrun --")
		}
	}

	if p.cfg.Java.UseSudo {
		line := "echo \"" + p.cfg.Brick.Password + "\" | sudo -S " + strings.Join(java, " ")
		line = strings.ReplaceAll(line, "\"", "\\\"")
		prefix = append(prefix, "/bin/sh -c \""+line+"\"")
	} else {
		prefix = append(prefix, java...)
	}

	return strings.Join(prefix, " ")
}

// WrapperScript renders the launcher: print the splash, then exec the program.
func (p *PathManager) WrapperScript() string {
	return fmt.Sprintf("#!/bin/sh\ncat %s\nexec %s", p.RemoteSplashPath(), p.JavaCommand(true))
}

// WriteWrapper renders the launcher into the local build directory and
// returns its path.
func (p *PathManager) WriteWrapper() (string, error) {
	target := p.LocalWrapperPath()
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", fmt.Errorf("error writing file: %w", err)
	}
	if err := os.WriteFile(target, []byte(p.WrapperScript()), 0644); err != nil {
		return "", fmt.Errorf("error writing file: %w", err)
	}
	return target, nil
}

func remoteJoin(dir, name string) string {
	return strings.TrimRight(dir, "/") + "/" + name
}
