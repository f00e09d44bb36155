// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/propharvest/internal/extract"
	"github.com/pdiddy/propharvest/internal/store"
	"github.com/pdiddy/propharvest/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the property index (ingest, query, export)",
	Long: `Store manages a local SQLite index built from extracted property
records. Use subcommands to ingest records, query them, or export.`,
}

// --- ingest subcommand ---

var storeIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest extracted property records into the index",
	Long: `Ingest reads extraction YAML files from data/extracted/, loads them
into a SQLite database with FTS5 indexing, and writes an export file.
Unchanged compounds are skipped on subsequent runs.`,
	RunE: runStoreIngest,
}

func runStoreIngest(cmd *cobra.Command, args []string) error {
	s, err := store.NewStore(storeConfig(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	summary, err := s.Ingest(context.Background(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d compound(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- query subcommand ---

var storeQueryCmd = &cobra.Command{
	Use:   "query [terms]",
	Short: "Query the property index with full-text search and filters",
	Long: `Query searches the property index using FTS5 full-text search,
structured filters (property, category, compound), or a combination of
both. Results include compound identity and value provenance.`,
	RunE: runStoreQuery,
}

func runStoreQuery(cmd *cobra.Command, args []string) error {
	s, err := store.NewStore(storeConfig(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide search terms, --property, --category, or --compound")
	}

	results, err := s.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatQueryOutput(results, jsonOutput)
}

func formatQueryOutput(results []store.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-10s  %-24s  %-22s  %-12s  %s\n",
		"CID", "Name", "Property", "Category", "Values")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for _, r := range results {
		name := r.CompoundName
		if len(name) > 24 {
			name = name[:21] + "..."
		}
		values := make([]string, len(r.Values))
		for i, v := range r.Values {
			values[i] = extract.Format(v)
		}
		joined := strings.Join(values, "; ")
		if len(joined) > 40 {
			joined = joined[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-10d  %-24s  %-22s  %-12s  %s\n",
			r.CompoundID, name, r.Property, r.Category, joined)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the property index to YAML or JSON",
	Long: `Export writes the full property index (or a filtered subset) to
data/index/export.yaml or export.json. Supports the same filter flags
as query for partial exports.`,
	RunE: runStoreExport,
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	s, err := store.NewStore(storeConfig(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	opts := queryOptsFromFlags(cmd, args)

	switch format {
	case "yaml", "":
		if err := s.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/index/export.yaml\n", dataDir(cmd))
	case "json":
		if err := s.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported to %s/index/export.json\n", dataDir(cmd))
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func storeConfig(cmd *cobra.Command) types.StoreConfig {
	maxResults, _ := cmd.Flags().GetInt("max-results")
	return types.StoreConfig{
		DataDir:    dataDir(cmd),
		MaxResults: maxResults,
	}
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) store.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	property, _ := cmd.Flags().GetString("property")
	category, _ := cmd.Flags().GetString("category")
	compoundID, _ := cmd.Flags().GetInt64("compound")
	limit, _ := cmd.Flags().GetInt("limit")

	return store.QueryOptions{
		Query:      queryText,
		Property:   property,
		Category:   types.Category(category),
		CompoundID: compoundID,
		MaxResults: limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	storeCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	// Query flags.
	storeQueryCmd.Flags().String("query", "", "full-text search query")
	storeQueryCmd.Flags().String("property", "", "filter by property tag (e.g. BoilingPoint)")
	storeQueryCmd.Flags().String("category", "", "filter by category: experimental, computed, or unspecified")
	storeQueryCmd.Flags().Int64("compound", 0, "filter by compound ID")
	storeQueryCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	storeQueryCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	storeExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	storeExportCmd.Flags().String("query", "", "full-text search filter for partial export")
	storeExportCmd.Flags().String("property", "", "filter by property tag for partial export")
	storeExportCmd.Flags().String("category", "", "filter by category for partial export")
	storeExportCmd.Flags().Int64("compound", 0, "filter by compound ID for partial export")
	storeExportCmd.Flags().Int("limit", 0, "maximum records to export (0 = all)")

	// Wire subcommands.
	storeCmd.AddCommand(storeIngestCmd)
	storeCmd.AddCommand(storeQueryCmd)
	storeCmd.AddCommand(storeExportCmd)

	rootCmd.AddCommand(storeCmd)
}
