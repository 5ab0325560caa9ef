// Package cmd implements the gridsync command tree.
package cmd

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pitwall/gridsync/pkg/logging"
)

var rootCmd = &cobra.Command{
	Use:   "gridsync",
	Short: "Reconcile racing records from multiple sources into one canonical dataset",
	Long: `gridsync merges driver, constructor, race, and result records contributed
by several data providers into unified entities, resolving field-level
conflicts by source authority.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initConfig(cmd)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: .gridsync.yaml in home or cwd)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error)")
}

// initConfig loads configuration in order of precedence: flags, environment
// variables, .env files, then a config file.
func initConfig(cmd *cobra.Command) error {
	// .env files load before viper's env binding so their values are visible.
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetEnvPrefix("GRIDSYNC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".gridsync")
	}

	// Missing config files are fine; only report malformed ones.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && configFile != "" {
			return err
		}
	}

	if level := viper.GetString("log-level"); level != "" {
		parsed, err := zerolog.ParseLevel(level)
		if err == nil {
			zerolog.SetGlobalLevel(parsed)
		}
	}
	logging.SetDefault(logging.NewConsole())

	return nil
}
