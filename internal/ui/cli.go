package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/slotify/internal/activity"
	"github.com/javiermolinar/slotify/internal/config"
	"github.com/javiermolinar/slotify/internal/db"
	"github.com/javiermolinar/slotify/internal/identity"
	"github.com/javiermolinar/slotify/internal/logging"
	"github.com/javiermolinar/slotify/internal/metrics"
	"github.com/javiermolinar/slotify/internal/schedule"
	"github.com/javiermolinar/slotify/internal/tui"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	repo       activity.Repository
	ownsRepo   bool // repo was opened by the app and is closed with it
	store      *schedule.Store
	config     *config.Config
	configPath string
	logger     *slog.Logger
	closeLog   func() error
	root       *cobra.Command
	debug      bool // Enable debug logging
	noColor    bool
}

// NewApp creates a new CLI application with the given repository and config.
// A nil repository is opened lazily from the configured database path.
func NewApp(repo activity.Repository, cfg *config.Config) *App {
	a := &App{repo: repo, config: cfg, configPath: config.Path(), logger: logging.Discard()}

	a.root = &cobra.Command{
		Use:   "slotify",
		Short: "A day and week planner for the terminal",
		Long: `Slotify keeps a backlog of activities and lets you place them on a
day or week time grid.

Run without arguments to open the planner, or use the subcommands to
manage activities from scripts.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if a.noColor {
				DisableColor()
			}
			// The planner owns the terminal and sets up its own file logger.
			if cmd == a.root {
				return nil
			}
			level := a.config.Log.Level
			if a.debug {
				level = "debug"
			}
			a.logger = logging.Setup(level, cmd.ErrOrStderr())
			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.runPlanner()
		},
	}

	// Add global flags
	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging (the planner logs to a temp file)")
	a.root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable color output")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.addCmd())
	a.root.AddCommand(a.listCmd())
	a.root.AddCommand(a.scheduleCmd())
	a.root.AddCommand(a.unscheduleCmd())
	a.root.AddCommand(a.moveCmd())
	a.root.AddCommand(a.resizeCmd())
	a.root.AddCommand(a.editCmd())
	a.root.AddCommand(a.outcomeCmd(activity.StatusDone))
	a.root.AddCommand(a.outcomeCmd(activity.StatusSkipped))
	a.root.AddCommand(a.deleteCmd())
	a.root.AddCommand(a.exportCmd())
	a.root.AddCommand(a.tokenCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "slotify %s (commit: %s)\n", Version, Commit)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// SetConfigPath sets the file the config subcommands read and write.
func (a *App) SetConfigPath(path string) {
	a.configPath = path
}

// Root returns the root command, mainly for tests that drive the CLI.
func (a *App) Root() *cobra.Command {
	return a.root
}

// ensureStore opens the database and builds the schedule store on first use.
func (a *App) ensureStore() error {
	if a.store != nil {
		return nil
	}
	if a.repo == nil {
		repo, err := openRepo(a.config.Storage.DBPath)
		if err != nil {
			return err
		}
		a.repo = repo
		a.ownsRepo = true
	}

	owners, err := Owners(a.config.Identity)
	if err != nil {
		return err
	}
	a.store = schedule.New(a.repo, owners,
		schedule.WithLogger(a.logger),
		schedule.WithMinDuration(a.config.MinSnap()),
	)
	return nil
}

// runPlanner starts the terminal UI. A database that fails to open is reported inside the
// planner instead of aborting, so navigation keeps working.
func (a *App) runPlanner() error {
	level := a.config.Log.Level
	path := a.config.Log.File
	if a.debug {
		level = "debug"
		path = filepath.Join(os.TempDir(), "slotify-debug.log")
	}
	if path != "" {
		logger, closeLog, err := logging.SetupFile(level, path)
		if err != nil {
			return err
		}
		a.logger = logger
		a.closeLog = closeLog
	}

	storeErr := a.ensureStore()
	if storeErr != nil {
		if errors.Is(storeErr, identity.ErrInvalidToken) || errors.Is(storeErr, identity.ErrMissingSecret) {
			return storeErr
		}
		a.logger.Error("opening planner storage failed", "error", storeErr)
	}

	return tui.Run(a.store, a.config, tui.Options{
		Logger:  a.logger,
		InitErr: storeErr,
	})
}

// Close releases the store and the database and flushes metrics.
func (a *App) Close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.ownsRepo && a.repo != nil {
		errs = append(errs, a.repo.Close())
	}
	if err := metrics.WriteTextfile(a.config.Metrics.Textfile); err != nil {
		errs = append(errs, err)
	}
	if a.closeLog != nil {
		errs = append(errs, a.closeLog())
	}
	return errors.Join(errs...)
}

func openRepo(dbPath string) (*db.SQLite, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	repo, err := db.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: initializing database: %w", schedule.ErrPersistence, err)
	}
	return repo, nil
}

// Owners returns the identity provider described by cfg. A token wins over a plain owner id;
// an owner carried by the request context wins over both.
func Owners(cfg config.IdentityConfig) (identity.Provider, error) {
	var fallback identity.Provider = identity.Static(cfg.Owner)
	if cfg.Token != "" {
		owner, err := identity.FromToken(cfg.Token, identity.TokenConfig{Secret: cfg.Secret, Issuer: cfg.Issuer})
		if err != nil {
			return nil, err
		}
		fallback = owner
	}
	return identity.Context{Fallback: fallback}, nil
}
