// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/pdiddy/propharvest/internal/extract"
	"github.com/pdiddy/propharvest/pkg/types"
)

// csvProperties defines the ordered per-property CSV output columns.
var csvProperties = []extract.Property{
	extract.MolecularWeight,
	extract.MeltingPoint,
	extract.BoilingPoint,
	extract.FlashPoint,
	extract.Density,
	extract.VaporPressure,
	extract.Solubility,
	extract.DissociationConstants,
	extract.LogP,
}

// ExportCSV writes extraction results as a wide-format CSV file: one
// row per compound, one column per property, values joined with "; ".
func ExportCSV(results []types.ExtractionResult, compounds map[int64]*types.Compound, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outputPath, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"CID", "Name", "CAS"}
	for _, prop := range csvProperties {
		header = append(header, string(prop))
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, result := range results {
		if err := w.Write(buildCSVRow(result, compounds)); err != nil {
			return fmt.Errorf("writing CSV row for compound %d: %w", result.CompoundID, err)
		}
	}

	w.Flush()
	return w.Error()
}

// buildCSVRow maps one compound's extraction result to a CSV row.
func buildCSVRow(result types.ExtractionResult, compounds map[int64]*types.Compound) []string {
	name, cas := compoundIdentity(compounds, result.CompoundID)
	row := []string{fmt.Sprintf("%d", result.CompoundID), name, cas}
	for _, prop := range csvProperties {
		row = append(row, propertyCell(result.Record(string(prop))))
	}
	return row
}

// propertyCell renders a record's values for a single CSV cell. An
// absent record is an empty cell; that is distinct from a record whose
// values are qualitative text only.
func propertyCell(rec *types.PropertyRecord) string {
	if rec == nil {
		return ""
	}
	values := make([]string, len(rec.Values))
	for i, v := range rec.Values {
		values[i] = extract.Format(v)
	}
	return strings.Join(values, "; ")
}
