package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/steelcutops/brickdeploy/brickdeploy/buildmanager"
	"github.com/steelcutops/brickdeploy/brickdeploy/catalog"
	"github.com/steelcutops/brickdeploy/brickdeploy/commandmanager"
	"github.com/steelcutops/brickdeploy/brickdeploy/config"
	"github.com/steelcutops/brickdeploy/brickdeploy/sshmanager"
	"github.com/steelcutops/brickdeploy/logger"
)

const defaultConfigFile = "brickdeploy.ini"

type flags struct {
	ConfigPath     string
	Host           string
	Port           int
	User           string
	Password       string
	PasswordPrompt bool
	Debug          bool
	LogFileName    string
}

type app struct {
	flags   flags
	cfg     *config.Config
	env     *catalog.Environment
	logFile *os.File
}

// actionView is the listing form of a catalog action.
type actionView struct {
	Name        string   `yaml:"name"`
	Group       string   `yaml:"group"`
	Description string   `yaml:"description"`
	DependsOn   []string `yaml:"depends_on,omitempty"`
}

func newApp() *app {
	cfg := config.Default()
	return &app{
		cfg: cfg,
		env: catalog.NewEnvironment(cfg, sshmanager.Shared(), nil, logger.New()),
	}
}

func newRootCmd(a *app) (*cobra.Command, error) {
	registry, err := catalog.New(a.env)
	if err != nil {
		return nil, err
	}
	runner := catalog.NewRunner(registry, a.env)

	root := &cobra.Command{
		Use:           "brickdeploy",
		Short:         "Deploy and run Java programs on an ev3dev brick",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.ConfigPath, "config", "", "Path to INI or YAML configuration (default ./"+defaultConfigFile+" when present)")
	pf.StringVar(&a.flags.Host, "host", "", "Brick hostname or address")
	pf.IntVar(&a.flags.Port, "port", 22, "SSH port")
	pf.StringVar(&a.flags.User, "user", "", "Login user")
	pf.StringVar(&a.flags.Password, "password", "", "Login and sudo password")
	pf.BoolVar(&a.flags.PasswordPrompt, "ask-password", false, "Prompt for the password")
	pf.BoolVar(&a.flags.Debug, "debug", false, "Enable debug log level")
	pf.StringVar(&a.flags.LogFileName, "log", "", "Write logs to this file instead of stderr")

	for _, group := range registry.Groups() {
		root.AddGroup(&cobra.Group{ID: group, Title: group + ":"})
	}
	for _, action := range registry.Actions() {
		name := action.Name
		root.AddCommand(&cobra.Command{
			Use:     name,
			Short:   action.Description,
			GroupID: action.Group,
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runner.Run(cmd.Context(), name)
			},
		})
	}

	root.AddCommand(newPathsCmd(a), newActionsCmd(registry))
	return root, nil
}

func (a *app) setup(cmd *cobra.Command) error {
	path := a.flags.ConfigPath
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	if path != "" {
		if err := config.LoadInto(a.cfg, path); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	var options []config.Option
	f := cmd.Flags()
	if f.Changed("host") {
		options = append(options, config.WithHost(a.flags.Host))
	}
	if f.Changed("port") {
		options = append(options, config.WithPort(a.flags.Port))
	}
	if f.Changed("user") {
		options = append(options, config.WithUser(a.flags.User))
	}
	if f.Changed("password") {
		options = append(options, config.WithPassword(a.flags.Password))
	}
	if a.flags.PasswordPrompt {
		fmt.Fprint(cmd.ErrOrStderr(), "Enter the password: ")
		passwordBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr())
		options = append(options, config.WithPassword(string(passwordBytes)))
	}
	a.cfg.Apply(options...)

	opts := logger.Options{
		Output:  cmd.ErrOrStderr(),
		Debug:   a.flags.Debug,
		Secrets: []func() string{a.env.Password},
	}
	if a.flags.LogFileName != "" {
		file, err := os.OpenFile(a.flags.LogFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		a.logFile = file
		opts.Output = file
	}
	log := logger.FromLogrus(logger.Configure(opts))

	a.env.Logger = log
	a.env.Sessions.Logger = log
	a.env.Builder = buildmanager.NewShellBuilder(a.cfg, log)
	a.env.Stdin = cmd.InOrStdin()
	a.env.Stdout = cmd.OutOrStdout()
	a.env.Stderr = cmd.ErrOrStderr()
	return nil
}

func (a *app) close() {
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
}

func newPathsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print the derived paths and launch command",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a.env.Paths
			b := a.cfg.Brick
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			rows := [][2]string{
				{"brick", fmt.Sprintf("%s@%s:%d", b.User, b.Host, b.Port)},
				{"program", p.RemoteProgramPath()},
				{"wrapper", p.RemoteWrapperPath()},
				{"splash", p.RemoteSplashPath()},
				{"local program", p.LocalProgramPath()},
				{"local wrapper", p.LocalWrapperPath()},
				{"local splash", p.LocalSplashPath()},
				{"classpath", p.ClassPath(false)},
				{"manifest classpath", p.ClassPath(true)},
				{"launch", commandmanager.Redact(p.JavaCommand(false), b.Password)},
			}
			for _, row := range rows {
				fmt.Fprintf(w, "%s:\t%s\n", row[0], row[1])
			}
			return w.Flush()
		},
	}
}

func newActionsCmd(registry *catalog.Registry) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "actions",
		Short: "List the available actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var views []actionView
			for _, a := range registry.Actions() {
				views = append(views, actionView{Name: a.Name, Group: a.Group, Description: a.Description, DependsOn: a.DependsOn})
			}
			return writeActions(cmd.OutOrStdout(), format, views)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or yaml")
	return cmd
}

func writeActions(out io.Writer, format string, views []actionView) error {
	switch strings.ToLower(format) {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(views); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		group := ""
		for _, v := range views {
			if v.Group != group {
				group = v.Group
				fmt.Fprintf(w, "%s\n", group)
			}
			fmt.Fprintf(w, "  %s\t%s\n", v.Name, v.Description)
		}
		return w.Flush()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func main() {
	a := newApp()
	root, err := newRootCmd(a)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	err = root.ExecuteContext(context.Background())
	a.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
