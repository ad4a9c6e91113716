package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/penwyp/go-offset-monitor/internal/config"
	"github.com/penwyp/go-offset-monitor/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// options holds the flags shared by every command
type options struct {
	cfgFile string
	debug   bool
	sources []string

	v   *viper.Viper
	cfg *config.Config
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	opts := &options{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "go-offset-monitor [flags]",
		Short: "Live replication offset dashboard",
		Long: `go-offset-monitor polls a fleet of Postgres sources for the offset each one
has reached towards every target, and shows the result as a grid that is
repainted every interval. Cells are colored by how recently their value changed.

Examples:
  go-offset-monitor                                  # Watch the default snode/anode fleet
  go-offset-monitor --interval 5s                    # Poll every 5 seconds
  go-offset-monitor --sources snode1,snode2 --port 5432
  go-offset-monitor snapshot --output json           # Fetch once and print
  go-offset-monitor sources                          # Show resolved connection targets`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = util.CloseLogger()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd, opts)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.cfgFile, "config", "",
		"Config file (default: ./.offset-monitor.yaml or ~/.config/offset-monitor/.offset-monitor.yaml)")
	pf.BoolVar(&opts.debug, "debug", false,
		"Enable debug logging, also mirrored to stderr")
	pf.StringSliceVar(&opts.sources, "sources", nil,
		"Comma separated source ids to poll (default: snode1..snode8, anode1..anode5)")

	pf.Duration("interval", 0, "Time between poll cycles (default 10s)")
	pf.Duration("query-timeout", 0, "Per-source connect and query timeout (default 5s)")
	pf.Int("concurrency", 0, "Maximum sources fetched at once (default 8)")
	pf.String("host", "", "Default database host (default localhost)")
	pf.Int("port", 0, "Default database port (default 10432)")
	pf.String("user", "", "Default database user (default postgres)")
	pf.String("password", "", "Default database password")
	pf.String("colors", "", "Color output: auto, always, never (default auto)")

	bindFlags(opts.v, rootCmd)

	rootCmd.AddCommand(newSnapshotCmd(opts))
	rootCmd.AddCommand(newSourcesCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// bindFlags maps command-line flags onto configuration keys
func bindFlags(v *viper.Viper, cmd *cobra.Command) {
	bindings := map[string]string{
		"interval":          "interval",
		"query_timeout":     "query-timeout",
		"concurrency":       "concurrency",
		"defaults.host":     "host",
		"defaults.port":     "port",
		"defaults.user":     "user",
		"defaults.password": "password",
		"output.colors":     "colors",
	}
	for key, flag := range bindings {
		_ = v.BindPFlag(key, cmd.PersistentFlags().Lookup(flag))
	}
}

func (o *options) setup(cmd *cobra.Command) error {
	if len(o.sources) > 0 {
		o.v.Set("sources", config.SourcesFromIDs(o.sources))
	}
	if o.debug {
		o.v.Set("logging.level", "debug")
	}

	cfg, err := config.Load(o.v, o.cfgFile)
	if err != nil {
		return err
	}
	o.cfg = cfg

	logFile := ""
	if cfg.Logging.File != "" {
		logFile = expandPath(cfg.Logging.File)
		if err := ensureDir(filepath.Dir(logFile)); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	if err := util.InitLogger(util.LoggerOptions{
		Level:          cfg.Logging.Level,
		File:           logFile,
		Format:         util.LogFormat(cfg.Logging.Format),
		DebugToConsole: o.debug,
	}); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	util.LogDebug("Configuration loaded",
		util.F("command", cmd.Name()),
		util.F("sources", len(cfg.Sources)),
		util.F("interval", cfg.Interval),
		util.F("config_file", o.v.ConfigFileUsed()))
	return nil
}

func Execute() error {
	return NewRootCmd().Execute()
}

// Helper functions

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
