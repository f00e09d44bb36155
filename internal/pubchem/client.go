// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubchem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/propharvest/internal/httputil"
	"github.com/pdiddy/propharvest/pkg/types"
)

const (
	// RecordsDir is the subdirectory under the data base for full
	// record JSON files.
	RecordsDir = "records"
	// MetadataDir is the subdirectory for per-compound metadata.
	MetadataDir = "metadata"
	// summaryFile lists all compounds from the last fetch run.
	summaryFile = "compounds.yaml"
)

// BatchResult holds the outcome of a batch fetch run.
type BatchResult struct {
	Fetched   int
	Skipped   int
	NotFound  int
	Failed    int
	Compounds []*types.Compound
}

// Total returns the total number of identifiers processed.
func (r BatchResult) Total() int {
	return r.Fetched + r.Skipped + r.NotFound + r.Failed
}

// HasFailures reports whether any compounds failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// FetchCompound resolves a single identifier, downloads the full PUG
// View record, and writes metadata. If the record already exists on
// disk the download is skipped.
func FetchCompound(ctx context.Context, client *http.Client, entry InputEntry, cfg types.FetchConfig, w io.Writer) (compound *types.Compound, skipped bool, err error) {
	identifier := entry.Identifier()
	res, err := Resolve(ctx, client, identifier, cfg)
	if err != nil {
		return nil, false, err
	}

	c := &types.Compound{
		CID:        res.CID,
		SID:        res.SID,
		Identifier: identifier,
		Name:       entry.Name,
		CAS:        entry.CAS,
	}

	recordID := c.RecordID()
	recordPath := filepath.Join(cfg.DataDir, RecordsDir, fmt.Sprintf("%d.json", recordID))
	metaPath := filepath.Join(cfg.DataDir, MetadataDir, fmt.Sprintf("%d.yaml", recordID))

	if _, err := os.Stat(recordPath); err == nil {
		fmt.Fprintf(w, "skipped: %d (already exists)\n", recordID)
		if prev, readErr := readMetadata(metaPath); readErr == nil {
			return prev, true, nil
		}
		c.RecordPath = recordPath
		c.Status = types.FetchSkipped
		return c, true, nil
	}

	for _, dir := range []string{
		filepath.Join(cfg.DataDir, RecordsDir),
		filepath.Join(cfg.DataDir, MetadataDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, false, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	domain := "compound"
	if c.CID == 0 {
		domain = "substance"
	}
	recordURL := fmt.Sprintf("%s/%s/%d/JSON", pugViewBase, domain, recordID)

	fmt.Fprintf(w, "fetching: %d (%s %q)\n", recordID, domain, identifier)

	data, err := downloadRecord(ctx, client, recordURL, cfg)
	if err != nil {
		return nil, false, fmt.Errorf("fetching record %d: %w", recordID, err)
	}

	// Validate the payload carries a Record before keeping it, and pick
	// up the declared title while at it.
	tree, title, err := DecodeRecord(data)
	if err != nil {
		return nil, false, fmt.Errorf("record %d: %w", recordID, err)
	}
	if tree.RecordID != recordID {
		fmt.Fprintf(w, "  warning: record %d declares ID %d\n", recordID, tree.RecordID)
	}

	if err := writeFileAtomic(recordPath, data); err != nil {
		return nil, false, fmt.Errorf("writing record %d: %w", recordID, err)
	}

	c.RecordTitle = title
	c.RecordPath = recordPath
	c.Status = types.FetchDone

	if err := writeMetadata(c, metaPath); err != nil {
		return nil, false, fmt.Errorf("writing metadata for %d: %w", recordID, err)
	}

	return c, false, nil
}

// FetchBatch processes multiple input entries, printing per-item status
// and returning a summary. It continues after individual failures and
// applies a delay between consecutive requests. On completion it writes
// a summary file listing all compounds, for downstream stages.
func FetchBatch(ctx context.Context, client *http.Client, entries []InputEntry, cfg types.FetchConfig, w io.Writer) BatchResult {
	var result BatchResult
	for i, entry := range entries {
		if i > 0 && cfg.RequestDelay > 0 {
			select {
			case <-ctx.Done():
				return result
			case <-time.After(cfg.RequestDelay):
			}
		}

		compound, wasSkipped, err := FetchCompound(ctx, client, entry, cfg, w)
		if err != nil {
			c := &types.Compound{
				Identifier: entry.Identifier(),
				Name:       entry.Name,
				CAS:        entry.CAS,
			}
			if isNotFound(err) {
				fmt.Fprintf(w, "not found: %s\n", c.Identifier)
				c.Status = types.FetchNotFound
				result.NotFound++
			} else {
				fmt.Fprintf(w, "failed:  %s (%v)\n", c.Identifier, err)
				c.Status = types.FetchFailed
				result.Failed++
			}
			result.Compounds = append(result.Compounds, c)
			continue
		}
		if wasSkipped {
			result.Skipped++
		} else {
			result.Fetched++
		}
		result.Compounds = append(result.Compounds, compound)
	}

	fmt.Fprintf(w, "\nBatch summary: %d fetched, %d skipped, %d not found, %d failed (total: %d)\n",
		result.Fetched, result.Skipped, result.NotFound, result.Failed, result.Total())

	if err := writeSummary(result.Compounds, filepath.Join(cfg.DataDir, summaryFile)); err != nil {
		fmt.Fprintf(w, "warning: summary write failed: %v\n", err)
	}

	return result
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// downloadRecord fetches the full record JSON. PubChem throttling (429
// and 503) is handled by the retry helper.
func downloadRecord(ctx context.Context, client *http.Client, reqURL string, cfg types.FetchConfig) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, reqURL)
	}

	return io.ReadAll(resp.Body)
}

// writeFileAtomic writes data to a temp file in the destination
// directory and renames it into place so partial downloads never appear
// as complete records.
func writeFileAtomic(destPath string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// writeMetadata writes a Compound record to a YAML file.
func writeMetadata(c *types.Compound, path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// readMetadata reads a Compound record from a YAML file.
func readMetadata(path string) (*types.Compound, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c types.Compound
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// summary is the on-disk shape of the batch summary file.
type summary struct {
	Compounds []*types.Compound `yaml:"compounds"`
}

func writeSummary(compounds []*types.Compound, path string) error {
	data, err := yaml.Marshal(&summary{Compounds: compounds})
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadSummary loads the compound summary written by the last fetch run.
// A missing file is not an error; downstream stages fall back to
// per-compound metadata files.
func ReadSummary(dataDir string) (map[int64]*types.Compound, error) {
	data, err := os.ReadFile(filepath.Join(dataDir, summaryFile))
	if err != nil {
		if os.IsNotExist(err) {
			return map[int64]*types.Compound{}, nil
		}
		return nil, fmt.Errorf("reading summary: %w", err)
	}
	var s summary
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing summary: %w", err)
	}
	byID := make(map[int64]*types.Compound, len(s.Compounds))
	for _, c := range s.Compounds {
		if id := c.RecordID(); id != 0 {
			byID[id] = c
		}
	}
	return byID, nil
}
