// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders extraction results for human and machine
// consumption: fixed-width tables, JSON, and wide-format CSV.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/propharvest/internal/extract"
	"github.com/pdiddy/propharvest/pkg/types"
)

// ReportsDir is the subdirectory under the data base for report files.
const ReportsDir = "reports"

// Row is one report line: a property record joined with compound identity.
type Row struct {
	CompoundID int64    `json:"compound_id"`
	Name       string   `json:"name,omitempty"`
	CAS        string   `json:"cas,omitempty"`
	Property   string   `json:"property"`
	Category   string   `json:"category"`
	Values     []string `json:"values"`
	Sources    []string `json:"sources,omitempty"`
}

// BuildRows flattens extraction results into report rows, joining
// compound identity from the fetch summary where available. Input
// order is preserved.
func BuildRows(results []types.ExtractionResult, compounds map[int64]*types.Compound) []Row {
	var rows []Row
	for _, result := range results {
		name, cas := compoundIdentity(compounds, result.CompoundID)
		for _, rec := range result.Records {
			values := make([]string, len(rec.Values))
			for i, v := range rec.Values {
				values[i] = extract.Format(v)
			}
			rows = append(rows, Row{
				CompoundID: result.CompoundID,
				Name:       name,
				CAS:        cas,
				Property:   rec.Property,
				Category:   string(rec.Category),
				Values:     values,
				Sources:    rec.Sources,
			})
		}
	}
	return rows
}

func compoundIdentity(compounds map[int64]*types.Compound, id int64) (name, cas string) {
	c, ok := compounds[id]
	if !ok {
		return "", ""
	}
	name = c.Name
	if name == "" {
		name = c.RecordTitle
	}
	return name, c.CAS
}

// FormatTable writes rows as a human-readable table to w.
func FormatTable(rows []Row, w io.Writer) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No property records found.")
		return
	}

	fmt.Fprintf(w, "%-10s  %-24s  %-22s  %-12s  %s\n",
		"CID", "Name", "Property", "Category", "Values")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, r := range rows {
		name := r.Name
		if len(name) > 24 {
			name = name[:21] + "..."
		}
		values := strings.Join(r.Values, "; ")
		if len(values) > 40 {
			values = values[:37] + "..."
		}
		fmt.Fprintf(w, "%-10d  %-24s  %-22s  %-12s  %s\n",
			r.CompoundID, name, r.Property, r.Category, values)
	}

	fmt.Fprintf(w, "\n%d records\n", len(rows))
}

// FormatJSON writes rows as indented JSON to w.
func FormatJSON(rows []Row, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
