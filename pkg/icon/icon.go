// Package icon classifies file names into display categories.
package icon

import "strings"

// Category is the display category of a file
type Category int

const (
	Generic Category = iota
	Image
	Video
	Audio
	Document
	Archive
	Code
	Spreadsheet
	Presentation
)

var categoryNames = map[Category]string{
	Generic:      "generic",
	Image:        "image",
	Video:        "video",
	Audio:        "audio",
	Document:     "document",
	Archive:      "archive",
	Code:         "code",
	Spreadsheet:  "spreadsheet",
	Presentation: "presentation",
}

var iconClasses = map[Category]string{
	Generic:      "fas fa-file",
	Image:        "fas fa-file-image",
	Video:        "fas fa-file-video",
	Audio:        "fas fa-file-audio",
	Document:     "fas fa-file-alt",
	Archive:      "fas fa-file-archive",
	Code:         "fas fa-file-code",
	Spreadsheet:  "fas fa-file-excel",
	Presentation: "fas fa-file-powerpoint",
}

var glyphs = map[Category]string{
	Generic:      "📄",
	Image:        "🖼",
	Video:        "🎞",
	Audio:        "🎵",
	Document:     "📝",
	Archive:      "📦",
	Code:         "📜",
	Spreadsheet:  "📊",
	Presentation: "📽",
}

// extensions maps lower-case extensions to their category.
var extensions = map[string]Category{}

func init() {
	table := map[Category][]string{
		Image:        {"jpg", "jpeg", "png", "gif", "bmp", "svg", "webp"},
		Video:        {"mp4", "avi", "mov", "wmv", "flv", "mkv", "webm"},
		Audio:        {"mp3", "wav", "ogg", "flac", "aac", "m4a"},
		Document:     {"doc", "docx", "pdf", "txt", "rtf", "odt"},
		Archive:      {"zip", "rar", "7z", "tar", "gz"},
		Code:         {"html", "css", "js", "php", "py", "java", "c", "cpp", "h"},
		Spreadsheet:  {"xls", "xlsx", "csv"},
		Presentation: {"ppt", "pptx"},
	}
	for category, exts := range table {
		for _, ext := range exts {
			extensions[ext] = category
		}
	}
}

// Classify returns the category for a file extension (without the leading dot).
// Matching is case-insensitive; unknown and empty extensions are Generic.
func Classify(extension string) Category {
	if category, ok := extensions[strings.ToLower(extension)]; ok {
		return category
	}
	return Generic
}

// Extension returns the substring after the last "." in name, or "" if there is none.
func Extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return name[i+1:]
}

// ForName classifies a file by the extension of its name.
func ForName(name string) Category {
	return Classify(Extension(name))
}

// Categories returns every category in declaration order.
func Categories() []Category {
	return []Category{Generic, Image, Video, Audio, Document, Archive, Code, Spreadsheet, Presentation}
}

// Extensions returns the extensions that map to c. Generic has none.
func (c Category) Extensions() []string {
	var out []string
	for ext, category := range extensions {
		if category == c {
			out = append(out, ext)
		}
	}
	return out
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return categoryNames[Generic]
}

// IconClass returns the icon font class used by the web view.
func (c Category) IconClass() string {
	if class, ok := iconClasses[c]; ok {
		return class
	}
	return iconClasses[Generic]
}

// Glyph returns the symbol used by the terminal view.
func (c Category) Glyph() string {
	if g, ok := glyphs[c]; ok {
		return g
	}
	return glyphs[Generic]
}
