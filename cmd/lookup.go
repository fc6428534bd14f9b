package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/denysvitali/share-viewer/internal/models"
	"github.com/denysvitali/share-viewer/pkg/config"
	"github.com/denysvitali/share-viewer/pkg/form"
	"github.com/denysvitali/share-viewer/pkg/lookup"
	"github.com/denysvitali/share-viewer/pkg/tree"
)

// lookupCmd represents the lookup command
var lookupCmd = &cobra.Command{
	Use:   "lookup <share-link>",
	Short: "Print the contents of a share link",
	Long: `Resolve a share link, or a bare share key, through the lookup service and
print the listing as an indented tree, JSON or YAML.`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func init() {
	rootCmd.AddCommand(lookupCmd)

	lookupCmd.Flags().StringP("password", "P", "", "Share password")
	lookupCmd.Flags().StringP("output", "o", outputText, "Output format (text, json, yaml)")
	lookupCmd.Flags().Duration("timeout", 0, "Lookup timeout (0 uses the configured value)")

	_ = viper.BindPFlag("lookup.timeout", lookupCmd.Flags().Lookup("timeout"))
}

// listingView records the outcome of one submission for printing.
type listingView struct {
	*form.PanelView
	entries []models.ListingEntry
}

func (v *listingView) ShowResult(entries []models.ListingEntry) {
	v.entries = entries
	v.PanelView.ShowResult(entries)
}

func runLookup(cmd *cobra.Command, args []string) error {
	logger := GetLogger()

	password, _ := cmd.Flags().GetString("password")
	output, _ := cmd.Flags().GetString("output")
	output = strings.ToLower(output)
	switch output {
	case outputText, outputJSON, outputYAML:
	default:
		return fmt.Errorf("unsupported output format %q", output)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	client := lookup.New(lookup.Config{
		Endpoint:  cfg.Lookup.Endpoint,
		Timeout:   cfg.Lookup.Timeout,
		UserAgent: cfg.Lookup.UserAgent,
	}, logger)
	controller := form.NewController(client, logger)

	view := &listingView{PanelView: form.NewPanelView(nil)}
	if err := controller.Submit(context.Background(), view, args[0], password); err != nil {
		return err
	}

	return writeListing(cmd.OutOrStdout(), output, view.entries, view.Display().Tree())
}

func writeListing(w io.Writer, output string, entries []models.ListingEntry, t *tree.Tree) error {
	if entries == nil {
		entries = []models.ListingEntry{}
	}

	switch output {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	default:
		return writeText(w, t)
	}
}

var (
	folderStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0066cc"))
	sizeStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	placeholderStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#666666"))
)

// writeText prints every node, expanded or not, indented by depth.
func writeText(w io.Writer, t *tree.Tree) error {
	if t.Empty() {
		_, err := fmt.Fprintln(w, placeholderStyle.Render(tree.EmptyListingText))
		return err
	}

	var b strings.Builder
	t.Walk(func(n *tree.Node) bool {
		indent := strings.Repeat("  ", n.Depth)
		if n.Folder {
			b.WriteString(indent + folderStyle.Render("📁 "+n.Name+"/") + "\n")
			if n.IsEmptyFolder() {
				b.WriteString(indent + "  " + placeholderStyle.Render(tree.EmptyFolderText) + "\n")
			}
			return true
		}

		b.WriteString(indent + n.Category.Glyph() + " " + n.Name)
		if n.Size != "" {
			b.WriteString("  " + sizeStyle.Render(n.Size))
		}
		if n.DownloadURL != "" {
			b.WriteString("  " + n.DownloadURL)
		}
		b.WriteString("\n")
		return true
	})

	folders, files := t.Stats()
	fmt.Fprintf(&b, "\n%d folders, %d files\n", folders, files)

	_, err := io.WriteString(w, b.String())
	return err
}
