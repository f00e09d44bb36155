// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubchem

import (
	"fmt"
	"os"
	"strconv"

	"go.yaml.in/yaml/v3"
)

// InputEntry is one compound in a batch input file. Any of the fields
// can identify the compound; resolution prefers the most specific.
type InputEntry struct {
	// CID is the PubChem compound ID, when already known.
	CID int64 `yaml:"cid,omitempty"`

	// CAS is the CAS registry number (e.g. "58-08-2").
	CAS string `yaml:"cas,omitempty"`

	// Name is the compound name (e.g. "caffeine").
	Name string `yaml:"name,omitempty"`
}

// Identifier returns the identifier to resolve: CID when present, then
// CAS, then name.
func (e InputEntry) Identifier() string {
	switch {
	case e.CID != 0:
		return strconv.FormatInt(e.CID, 10)
	case e.CAS != "":
		return e.CAS
	default:
		return e.Name
	}
}

// inputFile is the on-disk shape of a batch input file.
type inputFile struct {
	Compounds []InputEntry `yaml:"compounds"`
}

// ReadInputFile loads a YAML compound list for batch fetching.
func ReadInputFile(path string) ([]InputEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading input file %s: %w", path, err)
	}
	var f inputFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing input file %s: %w", path, err)
	}
	if len(f.Compounds) == 0 {
		return nil, fmt.Errorf("input file %s lists no compounds", path)
	}
	for i, e := range f.Compounds {
		if e.Identifier() == "" {
			return nil, fmt.Errorf("input file %s: entry %d has no cid, cas, or name", path, i+1)
		}
	}
	return f.Compounds, nil
}
