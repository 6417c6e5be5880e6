package imageinfo

import (
	"path/filepath"
	"strings"
)

// NotAvailable is shown when a size cannot be determined.
const NotAvailable = "N/A"

// Entry describes one inspected image file.
type Entry struct {
	FileName  string `json:"file_name" yaml:"file_name"`
	Format    string `json:"format" yaml:"format"`
	ImageSize string `json:"image_size" yaml:"image_size"`
	FileSize  string `json:"file_size" yaml:"file_size"`
	Path      string `json:"path" yaml:"path"`
}

// FormatOf returns the lowercase extension of path without the leading dot.
func FormatOf(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Bare builds an entry without touching the filesystem. Size fields are N/A.
func Bare(path string) Entry {
	return Entry{
		FileName:  filepath.Base(path),
		Format:    FormatOf(path),
		ImageSize: NotAvailable,
		FileSize:  NotAvailable,
		Path:      path,
	}
}
