package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/denysvitali/share-viewer/pkg/config"
	"github.com/denysvitali/share-viewer/pkg/form"
	"github.com/denysvitali/share-viewer/pkg/lookup"
	"github.com/denysvitali/share-viewer/pkg/theme"
	"github.com/denysvitali/share-viewer/pkg/tui"
)

// browseCmd represents the browse command
var browseCmd = &cobra.Command{
	Use:   "browse [share-link]",
	Short: "Browse a share link in the terminal",
	Long: `Open an interactive terminal browser with a link form and a collapsible
folder tree. A link given as argument is looked up immediately.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)

	browseCmd.Flags().StringP("password", "P", "", "Share password")
	browseCmd.Flags().String("log-file", "", "Write logs to this file while the browser runs")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	logger := GetLogger()

	// Logs on the terminal would corrupt the screen.
	logFile, _ := cmd.Flags().GetString("log-file")
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logger.SetOutput(f)
	} else {
		logger.SetOutput(io.Discard)
	}
	defer logger.SetOutput(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// The terminal background stands in for the system preference.
	themes, closeThemes, err := openThemes(cfg, theme.SystemPreferenceFunc(func() bool {
		return cfg.Theme.SystemDark || lipgloss.HasDarkBackground()
	}))
	if err != nil {
		return err
	}
	defer closeThemes()

	client := lookup.New(lookup.Config{
		Endpoint:  cfg.Lookup.Endpoint,
		Timeout:   cfg.Lookup.Timeout,
		UserAgent: cfg.Lookup.UserAgent,
	}, logger)

	password, _ := cmd.Flags().GetString("password")
	opts := tui.Options{
		Form:     form.NewController(client, logger),
		Themes:   themes,
		Logger:   logger,
		Password: password,
	}
	if len(args) == 1 {
		opts.ShareURL = args[0]
	}

	return tui.Run(opts)
}
