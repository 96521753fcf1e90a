// Package importer loads the static catalog extracts (course listings and
// professor rosters keyed by department label) into the record store.
package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Group is one department label of an extract with its raw entries
type Group struct {
	Label   string
	Entries []string
}

// Catalog is a {department label -> entries} extract in source key order
type Catalog struct {
	Groups []Group
	// Ignored lists labels whose value was not an array
	Ignored []string
}

// Entries returns the total number of entries across groups
func (c Catalog) Entries() int {
	n := 0
	for _, g := range c.Groups {
		n += len(g.Entries)
	}
	return n
}

// LoadCatalogFile reads an extract from disk
func LoadCatalogFile(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	catalog, err := LoadCatalog(f)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return catalog, nil
}

// LoadCatalog decodes a JSON object of string arrays, keeping the order in
// which keys appear. Keys whose value is not an array are recorded in Ignored.
func LoadCatalog(r io.Reader) (Catalog, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to read catalog: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return Catalog{}, fmt.Errorf("catalog must be a JSON object")
	}

	var catalog Catalog
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Catalog{}, fmt.Errorf("failed to read catalog key: %w", err)
		}
		label, ok := tok.(string)
		if !ok {
			return Catalog{}, fmt.Errorf("unexpected catalog key %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return Catalog{}, fmt.Errorf("failed to read entries of %q: %w", label, err)
		}
		if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
			catalog.Ignored = append(catalog.Ignored, label)
			continue
		}

		var entries []string
		if err := json.Unmarshal(raw, &entries); err != nil {
			return Catalog{}, fmt.Errorf("entries of %q must be strings: %w", label, err)
		}
		catalog.Groups = append(catalog.Groups, Group{Label: label, Entries: entries})
	}

	if _, err := dec.Token(); err != nil {
		return Catalog{}, fmt.Errorf("failed to read catalog end: %w", err)
	}
	return catalog, nil
}
