package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/vgmatch/internal/model"
)

// Version is the vgmatch release
const Version = "v0.3.0"

var (
	cfgFile   string
	verbose   bool
	logFormat string
	logger    = slog.New(slog.NewTextHandler(os.Stderr, nil))
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "vgmatch",
	Short: "vgmatch - compare diploid variant representations by haplotype",
	Long: `vgmatch decides whether two representations of the same diploid calls
describe the same genotype.

Each representation is expanded into a variant graph over a shared reference
region. The haplotypes spelled by the two graphs are intersected and the
admissible genotypes of each side are compared:

  =  the representations admit a common genotype
  H  no haplotype sequence is shared
  Z  haplotypes are shared but zygosity disagrees`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "vgmatch %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.vgmatch/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output and debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.vgmatch")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// VGMATCH_* overrides nested keys, e.g. VGMATCH_CACHE_DIR
	model.BindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig decodes the merged configuration and installs the logger it asks for
func loadConfig() (*model.Config, error) {
	cfg, err := model.LoadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	l, err := newLogger(cfg.Log, cfg.Output.Verbose)
	if err != nil {
		return nil, err
	}
	logger = l
	slog.SetDefault(l)
	return cfg, nil
}

func newLogger(cfg model.LogConfig, verbose bool) (*slog.Logger, error) {
	var level slog.Level
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
		}
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
}
