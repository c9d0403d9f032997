// Package config holds the connection parameters, remote path layout and
// launch options of a brick deployment.
//
// Values are accepted as given: an empty host or a negative timeout is only
// noticed when a connection attempt fails.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

type PackagingMode string

const (
	// Slim jars expect their dependencies in the remote library directory.
	Slim PackagingMode = "slim"
	// Fat jars bundle every dependency.
	Fat PackagingMode = "fat"
)

type Config struct {
	Brick   Brick   `ini:"brick" yaml:"brick"`
	Paths   Paths   `ini:"paths" yaml:"paths"`
	Project Project `ini:"project" yaml:"project"`
	Java    Java    `ini:"java" yaml:"java"`
	Build   Build   `ini:"build" yaml:"build"`
}

// Brick describes how to reach the device.
type Brick struct {
	Host     string        `ini:"host" yaml:"host"`
	Port     int           `ini:"port" yaml:"port"`
	User     string        `ini:"user" yaml:"user"`
	Password string        `ini:"password" yaml:"password"`
	Timeout  time.Duration `ini:"timeout" yaml:"timeout"`
}

// Paths is the remote filesystem layout.
type Paths struct {
	WrapperDir   string `ini:"wrapper_dir" yaml:"wrapper_dir"`
	LibraryDir   string `ini:"library_dir" yaml:"library_dir"`
	ProgramDir   string `ini:"program_dir" yaml:"program_dir"`
	SplashDir    string `ini:"splash_dir" yaml:"splash_dir"`
	OpenCVJar    string `ini:"opencv_jar" yaml:"opencv_jar"`
	RXTXJar      string `ini:"rxtx_jar" yaml:"rxtx_jar"`
	InstallerDir string `ini:"installer_dir" yaml:"installer_dir"`
}

type Project struct {
	Name       string `ini:"name" yaml:"name"`
	Version    string `ini:"version" yaml:"version"`
	Dir        string `ini:"dir" yaml:"dir"`
	BuildDir   string `ini:"build_dir" yaml:"build_dir"`
	SplashFile string `ini:"splash_file" yaml:"splash_file"`
}

type Java struct {
	MainClass        string        `ini:"main_class" yaml:"main_class"`
	LibOpenCV        bool          `ini:"lib_opencv" yaml:"lib_opencv"`
	LibRXTX          bool          `ini:"lib_rxtx" yaml:"lib_rxtx"`
	LibCustom        []string      `ini:"lib_custom" yaml:"lib_custom" delim:","`
	RuntimeLibs      []string      `ini:"runtime_libs" yaml:"runtime_libs" delim:","`
	JVMFlags         []string      `ini:"jvm_flags" yaml:"jvm_flags" delim:","`
	UseSudo          bool          `ini:"use_sudo" yaml:"use_sudo"`
	UseTime          bool          `ini:"use_time" yaml:"use_time"`
	UseBrickrun      bool          `ini:"use_brickrun" yaml:"use_brickrun"`
	Packaging        PackagingMode `ini:"packaging" yaml:"packaging"`
	UseEmbeddedPaths bool          `ini:"use_embedded_paths" yaml:"use_embedded_paths"`
}

// Build holds the local commands standing in for the host build tool.
type Build struct {
	CleanCommand string `ini:"clean_command" yaml:"clean_command"`
	SlimCommand  string `ini:"slim_command" yaml:"slim_command"`
	FatCommand   string `ini:"fat_command" yaml:"fat_command"`
}

// Default returns a configuration populated with the stock ev3dev layout.
func Default() *Config {
	return &Config{
		Brick: Brick{
			Host:     "0.0.0.0",
			Port:     22,
			User:     "robot",
			Password: "maker",
			Timeout:  5000 * time.Millisecond,
		},
		Paths: Paths{
			WrapperDir:   "/home/robot",
			LibraryDir:   "/home/robot/java/libraries",
			ProgramDir:   "/home/robot/java/programs",
			SplashDir:    "/home/robot/java/splashes",
			OpenCVJar:    "/usr/share/java/opencv.jar",
			RXTXJar:      "/usr/share/java/RXTXcomm.jar",
			InstallerDir: "/home/robot/java",
		},
		Project: Project{
			Version:  "unspecified",
			Dir:      ".",
			BuildDir: "build",
		},
		Java: Java{
			MainClass: "please.specify.main.class",
			Packaging: Slim,
		},
		Build: Build{
			CleanCommand: "./gradlew clean",
			SlimCommand:  "./gradlew jar",
			FatCommand:   "./gradlew shadowJar",
		},
	}
}

// IsSlim reports whether dependencies are staged separately on the brick.
// Anything other than "fat" counts as slim.
func (j Java) IsSlim() bool {
	return !strings.EqualFold(string(j.Packaging), string(Fat))
}

// ProjectName returns the configured name or, when empty, the base name of
// the project directory.
func (c *Config) ProjectName() string {
	if c.Project.Name != "" {
		return c.Project.Name
	}
	dir, err := filepath.Abs(c.Project.Dir)
	if err != nil {
		return filepath.Base(c.Project.Dir)
	}
	return filepath.Base(dir)
}

// Load reads a configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := LoadInto(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto overlays the file at path onto cfg. The format is picked from the
// extension: .yaml and .yml are YAML, everything else is INI.
func LoadInto(cfg *Config, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		file, err := ini.Load(path)
		if err != nil {
			return err
		}
		if err := file.MapTo(cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	return nil
}
