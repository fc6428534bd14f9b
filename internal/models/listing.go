package models

// EntryTypeFolder is the discriminator value the lookup service uses for folders.
// Any other value is treated as a file.
const EntryTypeFolder = "folder"

// ListingEntry is a node of a share listing: either a folder or a file.
type ListingEntry struct {
	Type        string         `json:"type" yaml:"type"`
	Name        string         `json:"name" yaml:"name"`
	Size        string         `json:"size,omitempty" yaml:"size,omitempty"`
	DownloadURL string         `json:"DownloadURL,omitempty" yaml:"download_url,omitempty"`
	Items       []ListingEntry `json:"items,omitempty" yaml:"items,omitempty"`
}

// IsFolder reports whether the entry is a folder.
func (e ListingEntry) IsFolder() bool {
	return e.Type == EntryTypeFolder
}

// NewFolder creates a folder entry with the given children.
func NewFolder(name string, children ...ListingEntry) ListingEntry {
	if children == nil {
		children = []ListingEntry{}
	}
	return ListingEntry{Type: EntryTypeFolder, Name: name, Items: children}
}

// NewFile creates a file entry.
func NewFile(name, size, downloadURL string) ListingEntry {
	return ListingEntry{Type: "file", Name: name, Size: size, DownloadURL: downloadURL}
}
