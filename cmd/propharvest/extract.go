// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/propharvest/internal/extract"
	"github.com/pdiddy/propharvest/internal/pubchem"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract property values from fetched compound records",
	Long: `Extract walks the section hierarchy of each fetched record, locates
headings for the target properties, parses the raw value strings into
typed values, and writes one YAML file per compound plus a batch report.
Experimental values take precedence over computed ones.

A record that cannot be processed is reported in the failure manifest;
it never aborts the batch.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringSlice("property", nil, "property to extract (repeatable; default all known)")
	extractCmd.Flags().String("aliases", "", "YAML file overriding the built-in heading alias tables")
	extractCmd.Flags().Int("max-depth", 0, "section tree depth bound (0 = default)")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	dir := dataDir(cmd)

	var overrides map[string][]string
	if aliasFile, _ := cmd.Flags().GetString("aliases"); aliasFile != "" {
		loaded, err := extract.LoadAliasFile(aliasFile)
		if err != nil {
			return err
		}
		overrides = loaded
	}
	matcher := extract.NewMatcher(overrides)

	names, _ := cmd.Flags().GetStringSlice("property")
	props := extract.ParseProperties(names, matcher, os.Stderr)

	maxDepth, _ := cmd.Flags().GetInt("max-depth")
	searcher := extract.NewSearcher(matcher, maxDepth)

	docs, loadFailures, err := pubchem.LoadRecords(dir)
	if err != nil {
		return err
	}
	if len(docs) == 0 && len(loadFailures) == 0 {
		return fmt.Errorf("no fetched records under %s: run fetch first", dir)
	}

	report, summary := extract.Run(docs, props, searcher, os.Stdout)

	// Records that failed to load never reached the engine; fold them
	// into the same failure manifest.
	for id, reason := range loadFailures {
		fmt.Fprintf(os.Stdout, "failed  %d: %s\n", id, reason)
		report.Failures[id] = reason
		summary.Failed++
	}

	if err := extract.WriteResults(dir, report); err != nil {
		return err
	}

	if summary.HasFailures() {
		return fmt.Errorf("%d record(s) failed extraction", summary.Failed)
	}
	return nil
}
