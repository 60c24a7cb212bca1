package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/penwyp/rewindcat/config"
	"github.com/penwyp/rewindcat/internal"
	"github.com/penwyp/rewindcat/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	logLevel string
	logFile  string
	timezone string

	dataPaths    []string
	remotes      []string
	remoteOnly   bool
	mergeSources string
	noCache      bool

	jsonOutput bool
	htmlOutput bool
	outputPath string
	openReport bool
	watchMode  bool
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "rewindcat",
	Short: "AI coding-agent usage year in review",
	Long: `rewindcat reads the local usage logs of AI coding assistants
(Claude Code, Codex, Gemini CLI, OpenCode), optionally merges in data
fetched from remote machines, and produces aggregated usage statistics:
token totals, activity streaks, weekly and yearly views, per-tool and
per-source breakdowns.

Output is a styled terminal summary by default, an HTML year-in-review
report with --html, or the raw statistics model as JSON with --json.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}

		logging.InitLogger(cfg.App.LogLevel, cfg.App.LogFile)

		app, err := internal.NewApplication(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return app.Run(ctx)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.rewindcat.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file (default stderr)")
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "local", "reference timezone for calendar bucketing")

	rootCmd.Flags().StringSliceVarP(&dataPaths, "data-path", "p", nil, "pre-fetched data root, path or path:name (repeatable)")
	rootCmd.Flags().StringSliceVarP(&remotes, "remote", "r", nil, "remote host to fetch data from via rsync (repeatable)")
	rootCmd.Flags().BoolVar(&remoteOnly, "remote-only", false, "skip the local machine as a source")
	rootCmd.Flags().StringVarP(&mergeSources, "merge-sources", "m", "", "merge sources before reporting: a=b,c=d")
	rootCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the parsed-file cache")

	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "write the statistics model as JSON to stdout")
	rootCmd.Flags().BoolVar(&htmlOutput, "html", false, "write the HTML year-in-review report")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "HTML report path (default $HOME/rewindcat-review.html)")
	rootCmd.Flags().BoolVar(&openReport, "open", false, "open the HTML report in the browser")
	rootCmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "watch source roots and regenerate on change")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")

	bindFlag("app.log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	bindFlag("app.log_file", rootCmd.PersistentFlags().Lookup("log-file"))
	bindFlag("app.timezone", rootCmd.PersistentFlags().Lookup("timezone"))
	bindFlag("data.paths", rootCmd.Flags().Lookup("data-path"))
	bindFlag("data.remotes", rootCmd.Flags().Lookup("remote"))
	bindFlag("data.remote_only", rootCmd.Flags().Lookup("remote-only"))
	bindFlag("data.merge_sources", rootCmd.Flags().Lookup("merge-sources"))
	bindFlag("report.json", rootCmd.Flags().Lookup("json"))
	bindFlag("report.html", rootCmd.Flags().Lookup("html"))
	bindFlag("report.output", rootCmd.Flags().Lookup("output"))
	bindFlag("report.open", rootCmd.Flags().Lookup("open"))
	bindFlag("report.watch", rootCmd.Flags().Lookup("watch"))
	bindFlag("report.no_color", rootCmd.Flags().Lookup("no-color"))
}

func bindFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind %s flag: %v\n", key, err)
	}
}

// initConfig reads in the config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".rewindcat")
	}

	viper.SetEnvPrefix("REWINDCAT")
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		logging.LogDebugf("using config file: %s", viper.ConfigFileUsed())
	}

	// --no-cache inverts into the config key.
	if noCache {
		viper.Set("data.cache_enabled", false)
	}
}
