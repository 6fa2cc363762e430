// Package cli provides the command-line interface for cqlrs.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/FlorianElke/cqlrs/internal/cli/config"
	"github.com/FlorianElke/cqlrs/internal/cluster"
	"github.com/FlorianElke/cqlrs/internal/render"
	"github.com/FlorianElke/cqlrs/internal/repl"
	"github.com/FlorianElke/cqlrs/internal/session"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

const connectTimeout = 10 * time.Second

var cfgFile string

// NewRootCmd creates and returns the root command. Invoked without a
// subcommand it opens the interactive shell, or runs -e / -f input when
// given.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cqlrs",
		Short: "cqlrs - interactive CQL shell for Cassandra and ScyllaDB",
		Long: `cqlrs is an interactive shell and batch runner for CQL clusters.

It connects to one or more contact points with failover, accumulates
multi-line statements, and renders results as a table, JSON, or CSV.`,
		Example: `  # Interactive shell against a local node
  cqlrs

  # Two contact points, JSON output
  cqlrs -H cass1,cass2 -o json

  # One statement and exit
  cqlrs -e "SELECT * FROM system.local"

  # Run a statement file
  cqlrs -f schema.cql --continue-on-error`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd)
		},
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./cqlrs.yaml)")
	flags.StringP("hosts", "H", config.DefaultHosts, "Comma-separated contact points (host or host:port)")
	flags.IntP("port", "p", config.DefaultPort, "Native protocol port")
	flags.StringP("username", "u", "", "Username for authentication")
	flags.String("password", "", "Password for authentication")
	flags.BoolP("password-prompt", "P", false, "Prompt for the password without echo")
	flags.StringP("keyspace", "k", "", "Keyspace to use on connect")
	flags.StringP("output", "o", config.DefaultOutput, "Output format (table|json|csv)")
	flags.BoolP("verbose", "v", false, "Verbose (debug) logging")
	flags.Bool("ssl", false, "Enable TLS")
	flags.String("ssl-ca-cert", "", "Path to the CA certificate")
	flags.Bool("ssl-verify", false, "Verify the server certificate")

	local := rootCmd.Flags()
	local.StringP("execute", "e", "", "Execute one statement and exit")
	local.StringP("file", "f", "", "Execute statements from a file and exit")
	local.Bool("continue-on-error", false, "Keep running a statement file after a failure")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json", "csv"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newReplCommand())
	rootCmd.AddCommand(newDescribeCommand())

	return rootCmd
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// connect loads configuration, resolves credentials, and establishes the
// cluster session shared by every execution mode.
func connect(cmd *cobra.Command) (*config.Config, *session.State, *cluster.Session, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, nil, nil, err
	}
	logger := newLogger(cfg.Verbose)

	password := cfg.Password
	if cfg.PasswordPrompt {
		if cfg.Username == "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "Warning: password prompt specified but no username provided")
		} else {
			fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
			raw, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(cmd.ErrOrStderr())
			if err != nil {
				return nil, nil, nil, nil, fmt.Errorf("read password: %w", err)
			}
			password = string(raw)
		}
	}

	format, err := render.ParseFormat(cfg.Output)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	hosts, err := cfg.HostList()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	st := &session.State{
		Keyspace: cfg.Keyspace,
		Format:   format,
		Hosts:    hosts,
		Username: cfg.Username,
		Password: password,
		TLS:      cfg.TLSSettings(),
	}

	logger.Debug("connecting", "hosts", cfg.Hosts, "port", cfg.Port, "ssl", cfg.SSL)
	sess, err := cluster.Connect(cmd.Context(), cluster.Config{
		Hosts:    hosts,
		Keyspace: cfg.Keyspace,
		Username: cfg.Username,
		Password: password,
		TLS:      cfg.TLSSettings(),
		Timeout:  connectTimeout,
	}, cluster.GocqlDriver{}, logger)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	return cfg, st, sess, logger, nil
}

func runShell(cmd *cobra.Command) error {
	cfg, st, sess, logger, err := connect(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	switch {
	case cfg.Execute != "":
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return repl.RunText(ctx, cfg.Execute, st, sess, out, errOut, logger)
	case cfg.File != "":
		f, err := os.Open(cfg.File)
		if err != nil {
			return fmt.Errorf("open statement file: %w", err)
		}
		defer func() { _ = f.Close() }()
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return repl.RunBatch(ctx, f, st, sess, out, errOut,
			repl.BatchOptions{ContinueOnError: cfg.ContinueOnError}, logger)
	default:
		// The interactive loop installs its own per-statement interrupt
		// handler, so the parent context stays uncancelled.
		return repl.New(st, sess, out, errOut, logger).Run(cmd.Context())
	}
}

// newReplCommand opens the interactive shell explicitly, mirroring the bare
// invocation.
func newReplCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Open the interactive shell",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, st, sess, logger, err := connect(cmd)
			if err != nil {
				return err
			}
			defer sess.Close()
			return repl.New(st, sess, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger).Run(cmd.Context())
		},
	}
}
