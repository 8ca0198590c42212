package cli

import (
	"bufio"
	"fmt"
	"strings"

	"scrape-dash-go/pkg/cli/logger"
	"scrape-dash-go/pkg/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. SCRAPE_DASH_API_BASE_URL.
const EnvPrefix = "SCRAPE_DASH"

// NewRootCommand builds the command tree. The config file is loaded before
// any command runs; env variables override it and flags override both.
func NewRootCommand() *cobra.Command {
	return newRootCommand(NewApp(nil))
}

func newRootCommand(a *App) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "scrape-dash",
		Short: "Terminal dashboard for the business-data scrape backend",
		Long: `Start scraping jobs, follow their progress and manage the CSV files they produce.

Without a subcommand the interactive dashboard is opened.

Examples:
  scrape-dash                                 # open the dashboard
  scrape-dash start "coffee shops" "gyms"     # start a job with two queries
  scrape-dash watch                           # follow the active job
  scrape-dash files list                      # list generated CSV files`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, v)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Run(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.String("base-url", "", "Scrape backend base URL (default from config)")
	flags.Duration("timeout", 0, "Per-request HTTP timeout, e.g. 10s")
	flags.String("location", "", "Location sent with new jobs")
	flags.String("log-file", "", "Write logs to this file instead of tmp/cli-<timestamp>.log")
	flags.Bool("debug", false, "Enable debug logging")

	_ = v.BindPFlag("api.base_url", flags.Lookup("base-url"))
	_ = v.BindPFlag("api.request_timeout", flags.Lookup("timeout"))
	_ = v.BindPFlag("dashboard.location", flags.Lookup("location"))
	_ = v.BindPFlag("log.file", flags.Lookup("log-file"))
	_ = v.BindPFlag("log.debug", flags.Lookup("debug"))

	root.AddCommand(
		newDashboardCmd(a),
		newStartCmd(a),
		newStatusCmd(a),
		newWatchCmd(a),
		newTerminateCmd(a),
		newClearCmd(a),
		newFilesCmd(a),
		newHealthCmd(a),
		newConfigCmd(a),
	)
	return root
}

// setup loads configuration, applies overrides and opens the log file.
func (a *App) setup(cmd *cobra.Command, v *viper.Viper) error {
	if a.cfg == nil {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		a.cfg = cfg
	}
	applyOverrides(a.cfg, v)

	level := a.cfg.Log.Level
	if v.GetBool("log.debug") {
		level = "debug"
	}
	l, err := logger.Init(a.cfg.Log.File, level)
	if err != nil {
		return err
	}
	a.log = l
	a.client = nil

	a.in = cmd.InOrStdin()
	a.out = cmd.OutOrStdout()
	a.errOut = cmd.ErrOrStderr()
	return nil
}

// applyOverrides copies env and flag values that were explicitly set.
func applyOverrides(cfg *config.Config, v *viper.Viper) {
	if v.IsSet("api.base_url") {
		if s := v.GetString("api.base_url"); s != "" {
			cfg.API.BaseURL = s
		}
	}
	if v.IsSet("api.request_timeout") {
		if d := v.GetDuration("api.request_timeout"); d > 0 {
			cfg.API.RequestTimeout = config.Duration(d)
		}
	}
	if v.IsSet("dashboard.location") {
		cfg.Dashboard.Location = v.GetString("dashboard.location")
	}
	if v.IsSet("log.level") {
		if s := v.GetString("log.level"); s != "" {
			cfg.Log.Level = s
		}
	}
	if v.IsSet("log.file") {
		if s := v.GetString("log.file"); s != "" {
			cfg.Log.File = s
		}
	}
}

func newDashboardCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Run(cmd.Context())
		},
	}
}

func newConfigCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the configuration file",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.ShowConfig()
			},
		},
		&cobra.Command{
			Use:   "set section.key=value",
			Short: "Set a configuration value",
			Example: `  scrape-dash config set api.base_url=http://localhost:8000
  scrape-dash config set dashboard.poll_interval=1s`,
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.SetConfig(args[0]); err != nil {
					return err
				}
				fmt.Fprintln(a.out, "Configuration updated successfully")
				return nil
			},
		},
	)
	return cmd
}

// confirm asks a y/N question on stdin unless assumeYes is set.
func (a *App) confirm(prompt string, assumeYes bool) (bool, error) {
	if assumeYes {
		return true, nil
	}
	fmt.Fprintf(a.out, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
