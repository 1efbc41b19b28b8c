// Package language maps Tesseract trained-data codes to display names and
// lists what is installed.
package language

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"screen-clipper/src/ocr"
)

//go:embed langs.yaml
var catalogYAML []byte

// Language is a trained-data code and its human-readable name.
type Language struct {
	Code string
	Name string
}

// Catalog is the set of languages the application knows how to name.
type Catalog struct {
	names map[string]string
}

// Parse reads a code: name YAML mapping.
func Parse(data []byte) (*Catalog, error) {
	names := map[string]string{}
	if err := yaml.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("failed to parse language catalog: %w", err)
	}
	for code, name := range names {
		if strings.TrimSpace(code) == "" || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("language catalog entry %q: empty code or name", code)
		}
	}
	return &Catalog{names: names}, nil
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(catalogYAML)
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns the display name for code, or the code itself when unknown.
func (c *Catalog) Name(code string) string {
	if name, ok := c.names[code]; ok {
		return name
	}
	return code
}

// Known reports whether code is in the catalog.
func (c *Catalog) Known(code string) bool {
	_, ok := c.names[code]
	return ok
}

func (c *Catalog) Len() int { return len(c.names) }

// Installed lists catalog languages whose trained data is present in
// tessdataDir, sorted case-insensitively by display name. Files for codes not
// in the catalog are ignored.
func (c *Catalog) Installed(tessdataDir string) ([]Language, error) {
	entries, err := os.ReadDir(tessdataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read tessdata directory: %w", err)
	}

	var langs []Language
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		code, ok := strings.CutSuffix(entry.Name(), ".traineddata")
		if !ok || !c.Known(code) || !ocr.HasTrainedData(tessdataDir, code) {
			continue
		}
		langs = append(langs, Language{Code: code, Name: c.names[code]})
	}

	sort.Slice(langs, func(i, j int) bool {
		a, b := strings.ToLower(langs[i].Name), strings.ToLower(langs[j].Name)
		if a != b {
			return a < b
		}
		return langs[i].Code < langs[j].Code
	})
	return langs, nil
}
