// Package transfer moves exam collections in and out of files.
package transfer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrImportData is returned when an import file cannot be parsed at all.
// No record of such a file is imported.
var ErrImportData = errors.New("invalid import data")

// Format is a supported file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts a format name, case-insensitively. "yml" means YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q (want csv, json or yaml)", s)
}

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot tell the format of %s; pass --format", path)
	}
	return ParseFormat(ext)
}
