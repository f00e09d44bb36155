// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/propharvest/internal/pubchem"
	"github.com/pdiddy/propharvest/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultDelay     = 1 * time.Second
	defaultUserAgent = "propharvest/0.1"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [identifiers...]",
	Short: "Download full compound records from PubChem",
	Long: `Fetch resolves compound identifiers (CIDs, CAS registry numbers, or
names) against PubChem, downloads each compound's full PUG View record,
and writes metadata alongside it. Existing records are skipped.

Identifiers come from the command line or from a YAML input file with a
compounds list (--input).`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	fetchCmd.Flags().Duration("delay", 0, "delay between consecutive PubChem requests (default 1s)")
	fetchCmd.Flags().String("input", "", "YAML file listing compounds to fetch")
	fetchCmd.Flags().String("contact", "", "contact address appended to the User-Agent header")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")

	var entries []pubchem.InputEntry
	if input != "" {
		fileEntries, err := pubchem.ReadInputFile(input)
		if err != nil {
			return err
		}
		entries = fileEntries
	}
	for _, arg := range args {
		entries = append(entries, entryFromArg(arg))
	}
	if len(entries) == 0 {
		return fmt.Errorf("provide compound identifiers (CIDs, CAS numbers, or names) or --input")
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = defaultDelay
	}

	userAgent := defaultUserAgent
	contact, _ := cmd.Flags().GetString("contact")
	if c := secretDefault("pubchem-contact-email", contact); c != "" {
		userAgent = fmt.Sprintf("%s (%s)", defaultUserAgent, c)
	}

	cfg := types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: userAgent,
		},
		RequestDelay: delay,
		DataDir:      dataDir(cmd),
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	result := pubchem.FetchBatch(context.Background(), client, entries, cfg, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d compound(s) failed to fetch", result.Failed)
	}
	return nil
}

// entryFromArg builds an input entry from one command-line identifier.
func entryFromArg(arg string) pubchem.InputEntry {
	kind, normalized := pubchem.Classify(arg)
	switch kind {
	case pubchem.TypeCID:
		cid, _ := strconv.ParseInt(normalized, 10, 64)
		return pubchem.InputEntry{CID: cid}
	case pubchem.TypeCAS:
		return pubchem.InputEntry{CAS: normalized}
	default:
		return pubchem.InputEntry{Name: normalized}
	}
}
