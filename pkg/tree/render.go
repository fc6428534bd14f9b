package tree

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"sync"

	"github.com/denysvitali/share-viewer/internal/models"
)

const (
	// EmptyListingText is shown instead of a tree when the listing has no entries.
	EmptyListingText = "No files found"
	// EmptyFolderText is shown inside a folder without children.
	EmptyFolderText = "Empty folder"
)

//go:embed templates/tree.html
var templateFS embed.FS

// html/template escapes every name and size in context, so &, <, >, " and '
// can never reach the page as markup.
var treeTemplate = template.Must(template.New("tree.html").Funcs(template.FuncMap{
	"emptyListing": func() string { return EmptyListingText },
	"emptyFolder":  func() string { return EmptyFolderText },
}).ParseFS(templateFS, "templates/tree.html"))

// WriteHTML renders the tree as nested markup, or the empty-listing placeholder.
func WriteHTML(w io.Writer, t *Tree) error {
	var roots []*Node
	if t != nil {
		roots = t.Roots
	}
	return treeTemplate.ExecuteTemplate(w, "tree", roots)
}

// HTML renders the tree into a fragment that can be embedded in a page template.
func HTML(t *Tree) (template.HTML, error) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, t); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// Response converts the tree into its JSON form.
func Response(t *Tree) []models.TreeNodeResponse {
	if t == nil {
		return []models.TreeNodeResponse{}
	}
	return toResponse(t.Roots)
}

func toResponse(nodes []*Node) []models.TreeNodeResponse {
	out := make([]models.TreeNodeResponse, 0, len(nodes))
	for _, n := range nodes {
		r := models.TreeNodeResponse{
			ID:       n.ID,
			Name:     n.Name,
			Folder:   n.Folder,
			Expanded: n.Expanded,
			Icon:     n.IconClass(),
		}
		if n.Folder {
			r.Children = toResponse(n.Children)
		} else {
			r.Category = n.Category.String()
			r.Size = n.Size
			r.DownloadURL = n.DownloadURL
		}
		out = append(out, r)
	}
	return out
}

// Display owns the currently rendered tree. Every Render discards the previous
// tree; there is no incremental update.
type Display struct {
	mu   sync.Mutex
	tree *Tree
}

// NewDisplay creates an empty display.
func NewDisplay() *Display {
	return &Display{}
}

// Render replaces the displayed tree with one built from entries.
func (d *Display) Render(entries []models.ListingEntry) *Tree {
	t := Build(entries)
	d.mu.Lock()
	d.tree = t
	d.mu.Unlock()
	return t
}

// Clear removes the displayed tree.
func (d *Display) Clear() {
	d.mu.Lock()
	d.tree = nil
	d.mu.Unlock()
}

// Tree returns the displayed tree, nil before the first Render.
func (d *Display) Tree() *Tree {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tree
}

// Empty reports whether the display shows the empty-listing placeholder.
func (d *Display) Empty() bool {
	return d.Tree().Empty()
}

// Toggle flips a folder of the displayed tree.
func (d *Display) Toggle(id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tree.Toggle(id)
}

// CollapseAll collapses every folder of the displayed tree.
func (d *Display) CollapseAll() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tree == nil {
		return 0
	}
	return d.tree.CollapseAll()
}

// WriteHTML renders the displayed tree.
func (d *Display) WriteHTML(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return WriteHTML(w, d.tree)
}
