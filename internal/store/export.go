// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/propharvest/pkg/types"
)

// ExportEntry holds a property record with compound identity for export.
type ExportEntry struct {
	CompoundID int64               `json:"compound_id" yaml:"compound_id"`
	Property   string              `json:"property" yaml:"property"`
	Category   string              `json:"category" yaml:"category"`
	Values     []types.ParsedValue `json:"values" yaml:"values"`
	Sources    []string            `json:"sources,omitempty" yaml:"sources,omitempty"`
	MatchCount int                 `json:"match_count" yaml:"match_count"`
	Compound   *ExportCompound     `json:"compound,omitempty" yaml:"compound,omitempty"`
}

// ExportCompound holds the compound-level fields included in each export entry.
type ExportCompound struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	CAS  string `json:"cas,omitempty" yaml:"cas,omitempty"`
}

const exportLimit = 100000

// ExportYAML writes the property index to data/index/export.yaml.
// It supports the same filters as Retrieve.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.dataDir, indexDir, "export.yaml")
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the property index to data/index/export.json.
// It supports the same filters as Retrieve.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) error {
	entries, err := s.exportEntries(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.dataDir, indexDir, "export.json")
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context, opts QueryOptions) ([]ExportEntry, error) {
	opts.MaxResults = exportLimit
	results, err := s.Retrieve(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(results))
	for i, r := range results {
		entries[i] = ExportEntry{
			CompoundID: r.CompoundID,
			Property:   r.Property,
			Category:   string(r.Category),
			Values:     r.Values,
			Sources:    r.Sources,
			MatchCount: r.MatchCount,
		}
		if r.CompoundName != "" || r.CompoundCAS != "" {
			entries[i].Compound = &ExportCompound{
				Name: r.CompoundName,
				CAS:  r.CompoundCAS,
			}
		}
	}

	return entries, nil
}
