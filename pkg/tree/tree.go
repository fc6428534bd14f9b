// Package tree builds the collapsible folder tree shown for a share listing
// and tracks the expand/collapse state of every folder.
package tree

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/denysvitali/share-viewer/internal/models"
	"github.com/denysvitali/share-viewer/pkg/icon"
)

var (
	// ErrNodeNotFound is returned when an id does not address a node of the tree.
	ErrNodeNotFound = errors.New("node not found")
	// ErrNotFolder is returned when a toggle targets a file.
	ErrNotFolder = errors.New("node is not a folder")
)

// Node is one rendered entry. Folder nodes carry their own display state.
type Node struct {
	ID          string
	Name        string
	Folder      bool
	Size        string
	DownloadURL string
	Category    icon.Category
	Depth       int
	Children    []*Node

	// Expanded is the folder's display state; always false for files.
	Expanded bool
}

// FolderIcon returns the closed or open folder icon class matching the state.
func (n *Node) FolderIcon() string {
	if n.Expanded {
		return "fas fa-folder-open"
	}
	return "fas fa-folder"
}

// Chevron returns the direction indicator class matching the state.
func (n *Node) Chevron() string {
	if n.Expanded {
		return "fas fa-chevron-down"
	}
	return "fas fa-chevron-right"
}

// IconClass returns the category icon class of a file node.
func (n *Node) IconClass() string {
	if n.Folder {
		return n.FolderIcon()
	}
	return n.Category.IconClass()
}

// IsEmptyFolder reports whether the node is a folder without children.
func (n *Node) IsEmptyFolder() bool {
	return n.Folder && len(n.Children) == 0
}

// Tree is a built listing. It is rebuilt from scratch for every lookup.
type Tree struct {
	Roots []*Node
	index map[string]*Node
}

// Build converts a listing into a tree with every folder collapsed.
// Entry order is preserved.
func Build(entries []models.ListingEntry) *Tree {
	t := &Tree{index: make(map[string]*Node)}
	t.Roots = t.build(entries, "", 0)
	return t
}

func (t *Tree) build(entries []models.ListingEntry, parentID string, depth int) []*Node {
	nodes := make([]*Node, 0, len(entries))
	for i, entry := range entries {
		id := strconv.Itoa(i)
		if parentID != "" {
			id = parentID + "/" + id
		}

		node := &Node{
			ID:     id,
			Name:   entry.Name,
			Folder: entry.IsFolder(),
			Depth:  depth,
		}
		if node.Folder {
			node.Children = t.build(entry.Items, id, depth+1)
		} else {
			node.Size = entry.Size
			node.DownloadURL = entry.DownloadURL
			node.Category = icon.ForName(entry.Name)
		}

		t.index[id] = node
		nodes = append(nodes, node)
	}
	return nodes
}

// Empty reports whether the listing had no entries.
func (t *Tree) Empty() bool {
	return t == nil || len(t.Roots) == 0
}

// Node looks up a node by id.
func (t *Tree) Node(id string) (*Node, bool) {
	if t == nil {
		return nil, false
	}
	n, ok := t.index[id]
	return n, ok
}

// Toggle flips the expanded state of one folder and returns the new state.
// Siblings and ancestors are left untouched.
func (t *Tree) Toggle(id string) (bool, error) {
	n, ok := t.Node(id)
	if !ok {
		return false, fmt.Errorf("toggle %q: %w", id, ErrNodeNotFound)
	}
	if !n.Folder {
		return false, fmt.Errorf("toggle %q: %w", id, ErrNotFolder)
	}
	n.Expanded = !n.Expanded
	return n.Expanded, nil
}

// CollapseAll collapses every folder regardless of its current state and
// returns how many folders changed.
func (t *Tree) CollapseAll() int {
	changed := 0
	for _, n := range t.Folders() {
		if n.Expanded {
			n.Expanded = false
			changed++
		}
	}
	return changed
}

// Walk visits every node in pre-order. Returning false from fn skips the node's children.
func (t *Tree) Walk(fn func(*Node) bool) {
	if t == nil {
		return
	}
	walk(t.Roots, fn)
}

func walk(nodes []*Node, fn func(*Node) bool) {
	for _, n := range nodes {
		if fn(n) {
			walk(n.Children, fn)
		}
	}
}

// Folders returns every folder node in pre-order.
func (t *Tree) Folders() []*Node {
	var folders []*Node
	t.Walk(func(n *Node) bool {
		if n.Folder {
			folders = append(folders, n)
		}
		return true
	})
	return folders
}

// Visible returns the rows currently shown: roots, plus the children of expanded folders.
func (t *Tree) Visible() []*Node {
	var rows []*Node
	t.Walk(func(n *Node) bool {
		rows = append(rows, n)
		return n.Folder && n.Expanded
	})
	return rows
}

// Stats counts folders and files in the whole tree.
func (t *Tree) Stats() (folders, files int) {
	t.Walk(func(n *Node) bool {
		if n.Folder {
			folders++
		} else {
			files++
		}
		return true
	})
	return folders, files
}
