package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/slotify/internal/config"
)

func (a *App) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Show the configuration in effect, or change it.

The config file is $SLOTIFY_CONFIG, or ~/.config/slotify/config.toml.
Environment variables (SLOTIFY_DB_PATH, SLOTIFY_OWNER, SLOTIFY_THEME, ...)
override the file.`,
		Example: `  slotify config
  slotify config set day.hour_height 72
  slotify config set tui.theme paper-dark`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printConfig(cmd.OutOrStdout(), a.configPath, a.config)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the configuration in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printConfig(cmd.OutOrStdout(), a.configPath, a.config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), a.configPath)
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(a.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", a.configPath)
			}
			if err := config.Default().SaveTo(a.configPath); err != nil {
				return fmt.Errorf("saving config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", a.configPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	cmd.AddCommand(initCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "set [key] [value]",
		Short: "Change one setting, e.g. day.snap_minutes 30",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Edit the file contents, not the env-overridden view of them.
			cfg, err := loadFileOnly(a.configPath)
			if err != nil {
				return err
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := cfg.SaveTo(a.configPath); err != nil {
				return fmt.Errorf("saving config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", args[0], args[1])
			return nil
		},
	})

	return cmd
}

// loadFileOnly reads path over the defaults without applying environment overrides.
func loadFileOnly(path string) (*config.Config, error) {
	cfg := config.Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := config.Decode(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func printConfig(w io.Writer, path string, cfg *config.Config) {
	p := func(format string, args ...any) { _, _ = fmt.Fprintf(w, format, args...) }

	p("Config file: %s\n\n", path)
	p("[storage]\n")
	p("  db_path        = %s\n", cfg.Storage.DBPath)
	p("\n[identity]\n")
	p("  owner          = %s\n", cfg.Identity.Owner)
	p("  token          = %s\n", mask(cfg.Identity.Token))
	p("  secret         = %s\n", mask(cfg.Identity.Secret))
	p("  issuer         = %s\n", cfg.Identity.Issuer)
	for _, s := range []struct {
		name string
		cfg  config.SurfaceConfig
	}{{"day", cfg.Day}, {"week", cfg.Week}} {
		p("\n[%s]\n", s.name)
		p("  hour_height    = %g\n", s.cfg.HourHeight)
		p("  snap_minutes   = %d\n", s.cfg.SnapMinutes)
		p("  dead_zone      = %g\n", s.cfg.DeadZone)
		p("  hold_ms        = %d\n", s.cfg.HoldMS)
	}
	p("\n[tui]\n")
	p("  theme          = %s\n", cfg.TUI.Theme)
	p("  rows_per_hour  = %d\n", cfg.TUI.RowsPerHour)
	p("\n[log]\n")
	p("  level          = %s\n", cfg.Log.Level)
	p("  file           = %s\n", cfg.Log.File)
	p("\n[metrics]\n")
	p("  textfile       = %s\n", cfg.Metrics.Textfile)
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}
