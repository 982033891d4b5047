package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/userkv"
	"github.com/aretw0/userkv/pkg/core"
)

// app carries the global flags and the connected service across commands.
// Flag defaults are taken from the current field values, so a shell line
// inherits the settings the shell was started with.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configFile string
	envFile    string
	adapter    string
	host       string
	port       int
	db         int
	username   string
	password   string
	format     string
	output     string
	verbose    bool

	// dir and lookupEnv override where configuration is read from.
	dir       string
	lookupEnv func(string) (string, bool)

	logger  *slog.Logger
	svc     *core.Service
	inShell bool
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		format: formatText,
		logger: slog.New(slog.DiscardHandler),
	}
}

// clone copies the flag values and shares the service.
func (a *app) clone() *app {
	c := *a
	return &c
}

// commandError names what the command was doing when it failed.
type commandError struct {
	action string
	err    error
}

func (e *commandError) Error() string {
	return fmt.Sprintf("%s: %v", e.action, e.err)
}

func (e *commandError) Unwrap() error { return e.err }

func fail(action string, err error) error {
	return &commandError{action: action, err: err}
}

// printError reports err the way the process exit path does.
func (a *app) printError(err error) {
	var ce *commandError
	if errors.As(err, &ce) {
		fmt.Fprintf(a.stderr, "Error %s: %v\n", ce.action, ce.err)
		return
	}
	fmt.Fprintf(a.stderr, "Error: %v\n", err)
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "userkv",
		Short: "Load user records into Redis and query them",
		Long: `userkv loads whitespace-separated user records into a Redis server as
hashes and answers a fixed set of queries: a user's attributes, a user's
coordinates, users with even ids, an indexed search and a leaderboard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if a.verbose {
				level = slog.LevelDebug
			}

			opts := &slog.HandlerOptions{
				Level: level,
			}
			logger := slog.New(slog.NewTextHandler(a.stderr, opts))
			slog.SetDefault(logger)
			a.logger = logger
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.inShell || a.svc == nil {
				return nil
			}
			err := a.svc.Close()
			a.svc = nil
			return err
		},
	}

	rootCmd.SetIn(a.stdin)
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.configFile, "config", a.configFile, "Config file (default: userkv.yaml|yml|json found upwards)")
	pf.StringVar(&a.envFile, "env-file", a.envFile, "Dotenv file (default: .env if present)")
	pf.StringVar(&a.adapter, "adapter", a.adapter, "Store adapter: redis or memory")
	pf.StringVar(&a.host, "host", a.host, "Server host")
	pf.IntVar(&a.port, "port", a.port, "Server port")
	pf.IntVar(&a.db, "db", a.db, "Database index")
	pf.StringVar(&a.username, "username", a.username, "ACL username")
	pf.StringVar(&a.password, "password", a.password, "ACL password")
	pf.StringVar(&a.format, "format", a.format, "Output format: text, json or yaml")
	pf.StringVarP(&a.output, "output", "o", a.output, "Write the result to this file instead of stdout")
	pf.BoolVarP(&a.verbose, "verbose", "v", a.verbose, "Enable verbose logging")

	rootCmd.AddCommand(
		newLoadCmd(a),
		newScoresCmd(a),
		newUserCmd(a),
		newCoordsCmd(a),
		newEvenCmd(a),
		newSearchCmd(a),
		newTopCmd(a),
		newStatusCmd(a),
		newShellCmd(a),
		newVersionCmd(a),
	)
	return rootCmd
}

// service connects on first use. Flags given on the command line override
// the config file and the environment.
func (a *app) service(cmd *cobra.Command) (*core.Service, error) {
	if a.svc != nil {
		return a.svc, nil
	}

	cfg, err := userkv.LoadConfig(userkv.LoadOptions{
		ConfigFile: a.configFile,
		EnvFile:    a.envFile,
		Dir:        a.dir,
		LookupEnv:  a.lookupEnv,
	})
	if err != nil {
		return nil, fail("loading config", err)
	}

	flags := cmd.Flags()
	if flags.Changed("adapter") {
		cfg.Adapter = a.adapter
	}
	if flags.Changed("host") {
		cfg.Connection.Host = a.host
	}
	if flags.Changed("port") {
		cfg.Connection.Port = a.port
	}
	if flags.Changed("db") {
		cfg.Connection.DB = a.db
	}
	if flags.Changed("username") {
		cfg.Connection.Username = a.username
	}
	if flags.Changed("password") {
		cfg.Connection.Password = a.password
	}
	if err := cfg.Validate(); err != nil {
		return nil, fail("loading config", err)
	}

	svc, err := userkv.New(cmd.Context(), userkv.WithConfig(cfg), userkv.WithLogger(a.logger))
	if err != nil {
		return nil, fail("connecting", err)
	}
	a.svc = svc
	return svc, nil
}

// Execute builds the command tree and runs it until completion or an
// interrupt. This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		stop()
		var ce *commandError
		if errors.As(err, &ce) {
			fatal("Error "+ce.action, ce.err)
		}
		fatal("Error", err)
	}
}
