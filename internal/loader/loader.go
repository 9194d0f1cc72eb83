// Package loader extracts plain text from resume files.
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-selector/internal/candidate"
	"github.com/spigell/resume-selector/internal/logger"
)

// ErrUnsupported is returned for files whose extension has no extractor.
var ErrUnsupported = errors.New("unsupported file type")

// ErrEmpty is returned when a file holds no text.
var ErrEmpty = errors.New("no text found")

type extractor func(path string) (string, error)

var extractors = map[string]extractor{
	".txt":  readText,
	".md":   readText,
	".pdf":  readPDF,
	".docx": readDOCX,
}

// IsSupported reports whether Load can read path.
func IsSupported(path string) bool {
	_, ok := extractors[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Load returns the trimmed text of the file at path.
func Load(path string) (text string, err error) {
	extract, ok := extractors[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", fmt.Errorf("%s: %w", path, ErrUnsupported)
	}

	// the PDF reader panics on some malformed documents
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("read %s: %v", path, r)
		}
	}()

	text, err = extract(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%s: %w", path, ErrEmpty)
	}
	return text, nil
}

// LoadAll loads every path in order. Files that fail to load are logged and left out.
func LoadAll(paths []string, log *zap.Logger) []candidate.ResumeItem {
	log = logger.OrNop(log)

	items := make([]candidate.ResumeItem, 0, len(paths))
	for _, path := range paths {
		text, err := Load(path)
		if err != nil {
			log.Warn("skipping resume file", zap.String(logger.FieldFilename, filepath.Base(path)), zap.Error(err))
			continue
		}

		items = append(items, candidate.ResumeItem{Filename: filepath.Base(path), Text: text})
	}

	log.Debug("resume files loaded", zap.Int("requested", len(paths)), zap.Int("loaded", len(items)))
	return items
}

// Expand replaces every directory in paths with the supported files it
// contains, sorted by name. Plain file paths are kept as given.
func Expand(paths []string) ([]string, error) {
	var result []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			result = append(result, path)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("read directory %s: %w", path, err)
		}

		var files []string
		for _, entry := range entries {
			if entry.IsDir() || !IsSupported(entry.Name()) {
				continue
			}
			files = append(files, filepath.Join(path, entry.Name()))
		}
		sort.Strings(files)
		result = append(result, files...)
	}

	return result, nil
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
