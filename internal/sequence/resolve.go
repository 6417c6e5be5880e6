package sequence

import (
	"log/slog"
	"os"
	"strings"

	"shotlist/internal/imageinfo"
	"shotlist/internal/logging"
)

// FormatSet is the whitelist of accepted image extensions.
type FormatSet map[string]struct{}

// NewFormatSet normalizes formats to lowercase extensions without dots.
func NewFormatSet(formats []string) FormatSet {
	set := make(FormatSet, len(formats))
	for _, format := range formats {
		normalized := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
		if normalized != "" {
			set[normalized] = struct{}{}
		}
	}
	return set
}

// Accepts reports whether path has a whitelisted extension.
func (s FormatSet) Accepts(path string) bool {
	_, ok := s[imageinfo.FormatOf(path)]
	return ok
}

// ResolvePaths splits paths into supported image files and directories.
// Directories are returned as given; callers list and recurse. Paths that
// cannot be stat'ed or are neither files nor directories are dropped.
func ResolvePaths(paths []string, formats FormatSet, logger *slog.Logger) (files []string, dirs []string) {
	if logger == nil {
		logger = logging.NewNop()
	}
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			logger.Debug("skipping unreadable path", logging.String(logging.FieldPath, path), logging.Error(err))
			continue
		}
		switch {
		case info.IsDir():
			dirs = append(dirs, path)
		case info.Mode().IsRegular():
			if formats.Accepts(path) {
				files = append(files, path)
			} else {
				logger.Debug("skipping unsupported file", logging.String(logging.FieldPath, path))
			}
		}
	}
	return files, dirs
}
