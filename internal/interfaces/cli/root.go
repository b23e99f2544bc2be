package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/ExoMetrics/internal/config"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/database/postgres"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ExoMetrics/pkg/client"
	"github.com/turtacn/ExoMetrics/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

const (
	OutputText  = "text"
	OutputJSON  = "json"
	OutputTable = "table"
)

type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Verbose      bool
	NoColor      bool
	Timeout      time.Duration
	ServerAddr   string
	APIPrefix    string
}

// Migrator is the schema migration surface used by the migrate command.
type Migrator interface {
	Up() error
	Down(steps int) error
	Force(version int) error
	Status(ctx context.Context) (postgres.MigrationStatus, error)
}

// Dependencies are the constructors the command tree resolves lazily, so
// commands that need no database never open one.
type Dependencies struct {
	// OpenLocal connects to the configured stores for commands run
	// without --server. The returned func releases them.
	OpenLocal    func(ctx context.Context, cfg *config.Config, logger logging.Logger) (Backend, func(), error)
	OpenMigrator func(cfg config.DatabaseConfig, logger logging.Logger) (Migrator, error)
	// NewLogger defaults to a console logger on stderr.
	NewLogger func(level string) (logging.Logger, error)
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	OutputFormat string
	ServerAddr   string
	APIPrefix    string
	Timeout      time.Duration

	deps    Dependencies
	backend Backend
	closers []func()
}

// NewRootCommand creates the exoctl command tree.
func NewRootCommand(deps Dependencies) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "exoctl",
		Short: "ExoMetrics CLI: compare exoplanets with Earth",
		Long: "exoctl derives Earth-relative metrics and habitability scores for exoplanets.\n" +
			"Commands talk to an ExoMetrics API server when --server is set and to the\n" +
			"configured database otherwise. Ad-hoc comparisons run fully offline.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts, deps)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./exometrics.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", logging.LevelWarn, "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", OutputText, "output format (text, json, table)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	pf.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "global operation timeout")
	pf.StringVar(&opts.ServerAddr, "server", "", "API server address, e.g. http://localhost:8080")
	pf.StringVar(&opts.APIPrefix, "api-prefix", client.DefaultAPIPrefix, "path the server's REST API is mounted under")

	cmd.AddCommand(
		NewCompareCmd(),
		NewPlanetsCmd(),
		NewCatalogCmd(),
		NewMigrateCmd(),
		newVersionCmd(),
	)
	return cmd
}

func persistentPreRun(cmd *cobra.Command, opts *RootOptions, deps Dependencies) error {
	format := strings.ToLower(opts.OutputFormat)
	switch format {
	case OutputText, OutputJSON, OutputTable:
	default:
		return errors.InvalidParam(fmt.Sprintf("unsupported output format %q", opts.OutputFormat))
	}
	if opts.NoColor {
		color.NoColor = true
	}

	cfg, err := initConfig(opts)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	level := strings.ToLower(opts.LogLevel)
	if opts.Verbose {
		level = logging.LevelDebug
	}
	if !logging.ValidLevel(level) {
		return errors.InvalidParam(fmt.Sprintf("unsupported log level %q", opts.LogLevel))
	}
	newLogger := deps.NewLogger
	if newLogger == nil {
		newLogger = stderrLogger
	}
	logger, err := newLogger(level)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		OutputFormat: format,
		ServerAddr:   strings.TrimSpace(opts.ServerAddr),
		APIPrefix:    opts.APIPrefix,
		Timeout:      opts.Timeout,
		deps:         deps,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	return nil
}

// initConfig loads --config, else the first default path that exists, else
// defaults with EXOMETRICS_* overrides.
func initConfig(opts *RootOptions) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.Load(opts.ConfigPath)
	}

	searchPaths := []string{"./exometrics.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".exometrics", "config.yaml"))
	}
	searchPaths = append(searchPaths, "/etc/exometrics/config.yaml")

	for _, p := range searchPaths {
		if _, statErr := os.Stat(p); statErr == nil {
			return config.Load(p)
		}
	}
	return config.LoadFromEnv()
}

func stderrLogger(level string) (logging.Logger, error) {
	return logging.NewLogger(logging.LogConfig{
		Level:            level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.Internal("command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.Internal("CLIContext not found in command context")
	}
	return cliCtx, nil
}

// run adapts a command body: it resolves the CLIContext, applies the global
// timeout and releases whatever the body opened.
func run(fn func(ctx context.Context, cmd *cobra.Command, cc *CLIContext, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cc, err := GetCLIContext(cmd)
		if err != nil {
			return err
		}
		defer cc.Close()

		ctx := cmd.Context()
		if cc.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cc.Timeout)
			defer cancel()
		}
		return fn(ctx, cmd, cc, args)
	}
}

// Backend returns the remote backend when --server is set and opens the
// local one otherwise. The result is memoized.
func (c *CLIContext) Backend(ctx context.Context) (Backend, error) {
	if c.backend != nil {
		return c.backend, nil
	}
	if c.ServerAddr != "" {
		cl, err := client.NewClient(c.ServerAddr,
			client.WithTimeout(c.Timeout),
			client.WithAPIPrefix(c.APIPrefix),
			client.WithLogger(sdkLogger{c.Logger}),
			client.WithUserAgent("exoctl/"+Version),
		)
		if err != nil {
			return nil, err
		}
		c.backend = NewRemoteBackend(cl)
		return c.backend, nil
	}
	if c.deps.OpenLocal == nil {
		return nil, errors.Unavailable("no local catalog configured; pass --server")
	}
	b, closeFn, err := c.deps.OpenLocal(ctx, c.Config, c.Logger)
	if err != nil {
		return nil, err
	}
	if closeFn != nil {
		c.closers = append(c.closers, closeFn)
	}
	c.backend = b
	return b, nil
}

// Close releases everything opened through the context.
func (c *CLIContext) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
	c.backend = nil
}

type sdkLogger struct{ l logging.Logger }

func (s sdkLogger) Debugf(format string, args ...interface{}) {
	s.l.Debug(fmt.Sprintf(format, args...))
}

func (s sdkLogger) Infof(format string, args ...interface{}) {
	s.l.Info(fmt.Sprintf(format, args...))
}

func (s sdkLogger) Errorf(format string, args ...interface{}) {
	s.l.Error(fmt.Sprintf(format, args...))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "exoctl %s\ncommit: %s\nbuilt: %s\n", Version, GitCommit, BuildDate)
			return nil
		},
	}
}

// Execute is the main entry point for the CLI application.
func Execute() error {
	rootCmd := NewRootCommand(DefaultDependencies())
	if err := rootCmd.Execute(); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

//Personal.AI order the ending
