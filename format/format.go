// Package format provides the registry of vendor file format importers and
// picks the matching importer for a given source path.
//
// Importer packages register themselves on import, following the pattern of
// the standard library's image package:
//
//	import (
//		"github.com/openepr/cwepr/format"
//		_ "github.com/openepr/cwepr/format/bes3t"
//	)
//
//	d, err := format.Import("measurement")
//
// Importing format/all pulls in every importer this module ships.
package format

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/openepr/cwepr/dataset"
)

var (
	// ErrNoMatchingFormat is returned when no registered format matches
	// the files present for a source.
	ErrNoMatchingFormat = errors.New("format: no matching file pair found")

	// ErrExperimentType is returned by importers when a file clearly does
	// not contain a cw experiment.
	ErrExperimentType = errors.New("format: not a cw experiment")

	// ErrMissingPath is returned when an empty source is provided.
	ErrMissingPath = errors.New("format: no path provided")
)

// Format describes one registered vendor format.
type Format struct {
	// Name of the format, e.g. "BES3T".
	Name string

	// Extensions of the files that must all be present next to the
	// source basename for this format to match, e.g. {".DSC", ".DTA"}.
	Extensions []string

	// Dir marks formats that import a whole directory of files.
	Dir bool

	// Import reads the source (basename without extension, or directory
	// path for Dir formats) into a dataset.
	Import func(source string) (*dataset.Dataset, error)
}

var (
	formatsMu sync.RWMutex
	formats   []Format
)

// Register makes a format available to Import. It is intended to be called
// from the init function of an importer package.
func Register(f Format) {
	formatsMu.Lock()
	defer formatsMu.Unlock()

	formats = append(formats, f)
}

// Formats returns the registered formats in registration order.
func Formats() []Format {
	formatsMu.RLock()
	defer formatsMu.RUnlock()

	return append([]Format(nil), formats...)
}

// Import detects the format of source and imports it. The source may carry
// one of the known file extensions or be given as bare basename; for
// directory-based formats it is the directory path.
func Import(source string) (*dataset.Dataset, error) {
	if source == "" {
		return nil, ErrMissingPath
	}

	source = stripKnownExtension(source)

	if isDir(source) {
		for _, f := range Formats() {
			if f.Dir {
				return f.Import(source)
			}
		}

		return nil, fmt.Errorf("%w: %s", ErrNoMatchingFormat, source)
	}

	f, err := Detect(source)
	if err != nil {
		return nil, err
	}

	return f.Import(source)
}

// Detect returns the registered format whose complete file set is present
// for the given source basename.
func Detect(source string) (Format, error) {
	for _, f := range Formats() {
		if f.Dir || len(f.Extensions) == 0 {
			continue
		}

		all := true

		for _, ext := range f.Extensions {
			if !fileExists(source + ext) {
				all = false
				break
			}
		}

		if all {
			return f, nil
		}
	}

	return Format{}, fmt.Errorf("%w: %s", ErrNoMatchingFormat, source)
}

func stripKnownExtension(source string) string {
	for _, f := range Formats() {
		for _, ext := range f.Extensions {
			if strings.HasSuffix(source, ext) {
				return strings.TrimSuffix(source, ext)
			}
		}
	}

	return source
}

func fileExists(path string) bool {
	stat, err := os.Stat(path)
	return err == nil && !stat.IsDir()
}

func isDir(path string) bool {
	stat, err := os.Stat(path)
	return err == nil && stat.IsDir()
}
