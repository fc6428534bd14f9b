package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/denysvitali/share-viewer/pkg/config"
	"github.com/denysvitali/share-viewer/pkg/theme"
)

var (
	cfgFile string
	logger  = logrus.New()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "share-viewer",
	Short: "Browse the contents of cloud-drive share links",
	Long: `share-viewer resolves a cloud-drive share link through a lookup service
and presents the shared files as a collapsible tree, either in a web widget,
in the terminal, or as plain text, JSON or YAML.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.share-viewer.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().String("lookup-endpoint", "", "Lookup service endpoint")
	rootCmd.PersistentFlags().String("data-dir", "", "Directory holding the theme preference database")

	// Bind flags to viper
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.json", rootCmd.PersistentFlags().Lookup("log-json"))
	_ = viper.BindPFlag("lookup.endpoint", rootCmd.PersistentFlags().Lookup("lookup-endpoint"))
	_ = viper.BindPFlag("theme.data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".share-viewer" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".share-viewer")
	}

	// server.port becomes SHARE_VIEWER_SERVER_PORT
	viper.SetEnvPrefix("share_viewer")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// Configure logging
	setupLogging()
}

func setupLogging() {
	// Set log level
	level, err := logrus.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", viper.GetString("log.level"))
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Set log format
	if viper.GetBool("log.json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
}

func GetLogger() *logrus.Logger {
	return logger
}

// openThemes opens the persisted theme preference, installs the process-wide
// controller and applies the initial theme. The returned func closes the store.
func openThemes(cfg *config.Config, system theme.SystemPreference) (*theme.Controller, func(), error) {
	store, err := theme.OpenBoltStore(cfg.ThemeStorePath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open theme store: %w", err)
	}

	themes := theme.NewController(store, system, logger)
	theme.SetDefault(themes)
	applied := themes.Initialize()
	logger.WithFields(logrus.Fields{
		"theme":     applied,
		"persisted": themes.Persisted(),
		"store":     cfg.ThemeStorePath(),
	}).Debug("Theme initialized")

	return themes, func() {
		if err := store.Close(); err != nil {
			logger.Warnf("Failed to close theme store: %v", err)
		}
	}, nil
}
