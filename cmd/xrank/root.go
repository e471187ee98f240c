package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/benz9527/xrank/lib/infra"
)

const envPrefix = "XRANK"

type config struct {
	LogLevel   string
	LogEncoder string
	Metrics    bool
	Root       string
	Workers    int
	MinLen     int
	Format     string
	Verify     bool
	Timeout    time.Duration
}

func loadConfig(v *viper.Viper) *config {
	return &config{
		LogLevel:   v.GetString("log-level"),
		LogEncoder: v.GetString("log-encoder"),
		Metrics:    v.GetBool("metrics"),
		Root:       v.GetString("root"),
		Workers:    v.GetInt("workers"),
		MinLen:     v.GetInt("min-len"),
		Format:     v.GetString("format"),
		Verify:     v.GetBool("verify"),
		Timeout:    v.GetDuration("timeout"),
	}
}

// newRootCmd builds a fresh command tree with its own viper instance.
func newRootCmd() *cobra.Command {
	v := viper.New()
	rootCmd := &cobra.Command{
		Use:   "xrank",
		Short: "word frequency ranks on an order statistics tree",

		// SilenceUsage is an option to silence usage when an error occurs.
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return bindConfig(v, cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (yaml)")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")
	flags.String("log-encoder", "text", "log encoder: json, text")
	flags.Bool("metrics", false, "print the otel metrics to stderr on exit")
	flags.String("root", ".", "the directory the input files must stay beneath")
	flags.Int("workers", 0, "concurrent file readers, 0 is GOMAXPROCS")
	flags.Int("min-len", 1, "skip the words shorter than min-len runes")
	flags.String("format", "table", "output format: table, csv, markdown")
	flags.Bool("verify", false, "validate the red-black tree properties of the result")
	flags.Duration("timeout", 10*time.Minute, "counting timeout")

	rootCmd.AddCommand(
		newCountCmd(v),
		newRankCmd(v),
		newSelectCmd(v),
		newDumpCmd(v),
	)
	return rootCmd
}

func bindConfig(v *viper.Viper, cmd *cobra.Command) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// Enable environment variable binding, the env vars are not overloaded yet.
	v.AutomaticEnv()

	// Once the flags are defined, we can bind config keys with flags.
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return infra.WrapErrorStackWithMessage(err, "failed to bind flags")
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return infra.WrapErrorStackWithMessage(err, "failed to load config file "+file)
		}
	}
	return nil
}
