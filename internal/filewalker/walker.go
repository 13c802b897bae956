package filewalker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// SupportedExtensions lists content file types handled by the tool.
var SupportedExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// FileEntry represents a discovered content file ready for segmentation.
type FileEntry struct {
	Path   string
	Origin string
}

// Walker traverses directories and collects content files.
type Walker struct {
	defaultOrigin string
}

// NewWalker creates a Walker that assigns defaultOrigin to files whose
// name carries no origin descriptor of its own.
func NewWalker(defaultOrigin string) *Walker {
	return &Walker{defaultOrigin: defaultOrigin}
}

// Walk discovers all supported files under the given root directory.
func (w *Walker) Walk(root string) ([]FileEntry, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	var entries []FileEntry

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}

		if info.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !SupportedExtensions[ext] {
			return nil
		}

		entries = append(entries, FileEntry{
			Path:   path,
			Origin: w.originFor(path),
		})
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	log.Info().Int("count", len(entries)).Str("root", root).Msg("Discovered files")
	return entries, nil
}

// originFor derives the origin descriptor from a file name. A secondary
// extension before the file type names the origin, as in "story.en-vi.txt".
// Files without one fall back to the walker's default.
func (w *Walker) originFor(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if inner := filepath.Ext(base); inner != "" {
		return strings.TrimPrefix(inner, ".")
	}
	return w.defaultOrigin
}

// ReadFile loads the raw text of a discovered file.
func ReadFile(entry FileEntry) (string, error) {
	data, err := os.ReadFile(entry.Path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", entry.Path, err)
	}
	return string(data), nil
}
