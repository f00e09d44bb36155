// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/propharvest/internal/extract"
	"github.com/pdiddy/propharvest/internal/pubchem"
	"github.com/pdiddy/propharvest/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render extracted property records as a table, JSON, or CSV",
	Long: `Report reads the extraction results from data/extracted/, joins them
with compound identity from the fetch summary, and renders them. The
table and JSON formats go to stdout; CSV is written to data/reports/
as a wide file with one row per compound and one column per property.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().String("format", "table", "output format: table, json, or csv")
	reportCmd.Flags().String("output", "", "CSV output path (default data/reports/properties.csv)")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	dir := dataDir(cmd)

	results, err := extract.ReadResults(dir)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("no extraction results under %s: run extract first", dir)
	}

	compounds, err := pubchem.ReadSummary(dir)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "table", "":
		report.FormatTable(report.BuildRows(results, compounds), os.Stdout)
		return nil
	case "json":
		return report.FormatJSON(report.BuildRows(results, compounds), os.Stdout)
	case "csv":
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			reportsDir := filepath.Join(dir, report.ReportsDir)
			if err := os.MkdirAll(reportsDir, 0o755); err != nil {
				return fmt.Errorf("creating reports directory: %w", err)
			}
			output = filepath.Join(reportsDir, "properties.csv")
		}
		if err := report.ExportCSV(results, compounds, output); err != nil {
			return err
		}
		fmt.Printf("Exported %d compound(s) to %s\n", len(results), output)
		return nil
	default:
		return fmt.Errorf("unsupported format %q: use table, json, or csv", format)
	}
}
