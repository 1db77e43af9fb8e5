// Package models bundles sample reaction network documents that can be
// simulated without an input file.
package models

import (
	"embed"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
)

//go:embed data/*.xml
var bundled embed.FS

const (
	LotkaVolterra = "lotka_volterra"
	Conversion    = "conversion"
	Dimerization  = "dimerization"
)

// Names lists the bundled models, sorted.
func Names() []string {
	entries, err := bundled.ReadDir("data")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".xml"))
	}
	sort.Strings(names)
	return names
}

// Source returns the document text of a bundled model.
func Source(name string) (string, error) {
	data, err := bundled.ReadFile(path.Join("data", name+".xml"))
	if err != nil {
		return "", fmt.Errorf("unknown model: %s (available: %v)", name, Names())
	}
	return string(data), nil
}

// MustSource is Source for names known at compile time.
func MustSource(name string) string {
	src, err := Source(name)
	if err != nil {
		panic(err)
	}
	return src
}

// Resolve returns the document for a bundled model name, or reads the
// argument as a file path when it names no bundled model.
func Resolve(nameOrPath string) (string, error) {
	if src, err := Source(nameOrPath); err == nil {
		return src, nil
	}
	data, err := os.ReadFile(nameOrPath)
	if err != nil {
		return "", fmt.Errorf("model %q is neither bundled nor a readable file: %w", nameOrPath, err)
	}
	return string(data), nil
}
