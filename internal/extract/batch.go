// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/propharvest/pkg/types"
)

// ExtractedDir is the subdirectory under the data base for per-compound
// extraction output.
const ExtractedDir = "extracted"

// BatchSummary holds counts from a batch extraction run.
type BatchSummary struct {
	Extracted int
	Empty     int
	Failed    int
}

// Total returns the number of documents processed.
func (s BatchSummary) Total() int {
	return s.Extracted + s.Empty + s.Failed
}

// HasFailures reports whether any documents failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// Run processes a batch of documents with the given searcher, printing
// per-document status to w. Documents are independent: a structural
// failure in one is recorded in the report's failure manifest and the
// batch moves on. Given the same input sequence the report is identical
// across runs — nothing here depends on wall clock or external state.
func Run(docs []types.CompoundDocument, props []Property, searcher *Searcher, w io.Writer) (types.BatchReport, BatchSummary) {
	report := types.BatchReport{Failures: make(map[int64]string)}
	var summary BatchSummary

	for _, doc := range docs {
		matches, err := searcher.Search(doc.Tree, doc.CompoundID, props)
		if err != nil {
			fmt.Fprintf(w, "failed  %d: %v\n", doc.CompoundID, err)
			report.Failures[doc.CompoundID] = err.Error()
			summary.Failed++
			continue
		}

		result := Aggregate(doc.CompoundID, matches)
		report.Results = append(report.Results, result)

		if len(result.Records) == 0 {
			fmt.Fprintf(w, "empty   %d: no matching properties\n", doc.CompoundID)
			summary.Empty++
			continue
		}

		fmt.Fprintf(w, "extracted %d (%d properties, %d leaves)\n",
			doc.CompoundID, len(result.Records), countMatches(result))
		summary.Extracted++
	}

	fmt.Fprintf(w, "\nextracted: %d, empty: %d, failed: %d\n",
		summary.Extracted, summary.Empty, summary.Failed)

	return report, summary
}

func countMatches(result types.ExtractionResult) int {
	total := 0
	for _, rec := range result.Records {
		total += rec.MatchCount
	}
	return total
}

// WriteResults writes one YAML file per compound with at least one
// property record ([cid]-properties.yaml) plus a report.yaml with the
// failure manifest, all under dataDir/extracted/.
func WriteResults(dataDir string, report types.BatchReport) error {
	outDir := filepath.Join(dataDir, ExtractedDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	for _, result := range report.Results {
		if len(result.Records) == 0 {
			continue
		}
		path := filepath.Join(outDir, fmt.Sprintf("%d-properties.yaml", result.CompoundID))
		data, err := yaml.Marshal(&result)
		if err != nil {
			return fmt.Errorf("marshaling result for compound %d: %w", result.CompoundID, err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}

	return writeReportFile(filepath.Join(outDir, "report.yaml"), report)
}

// reportFile is the serialized batch report: result counts plus the
// failure manifest, keyed by compound ID.
type reportFile struct {
	Compounds int              `yaml:"compounds"`
	Extracted int              `yaml:"extracted"`
	Failures  map[int64]string `yaml:"failures,omitempty"`
}

func writeReportFile(path string, report types.BatchReport) error {
	rf := reportFile{
		Compounds: len(report.Results) + len(report.Failures),
		Failures:  report.Failures,
	}
	for _, r := range report.Results {
		if len(r.Records) > 0 {
			rf.Extracted++
		}
	}
	data, err := yaml.Marshal(&rf)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadResults loads previously written extraction results from
// dataDir/extracted/, ordered by compound ID.
func ReadResults(dataDir string) ([]types.ExtractionResult, error) {
	outDir := filepath.Join(dataDir, ExtractedDir)
	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, fmt.Errorf("reading extraction directory %s: %w", outDir, err)
	}

	var results []types.ExtractionResult
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "-properties.yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(outDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		var result types.ExtractionResult
		if err := yaml.Unmarshal(data, &result); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", entry.Name(), err)
		}
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CompoundID < results[j].CompoundID
	})
	return results, nil
}

// ParseProperties converts property names from configuration to engine
// tags. Empty input means all known properties. A name with no alias
// table entry is not an error — it resolves to an empty heading set and
// simply never matches — but it is worth a warning so typos do not read
// as "property absent from every compound".
func ParseProperties(names []string, matcher *Matcher, w io.Writer) []Property {
	if len(names) == 0 {
		return matcher.Known()
	}
	known := make(map[Property]bool)
	for _, p := range matcher.Known() {
		known[p] = true
	}
	props := make([]Property, 0, len(names))
	for _, name := range names {
		p := Property(strings.TrimSpace(name))
		if !known[p] {
			fmt.Fprintf(w, "warning: no heading aliases for property %q, it will never match\n", name)
		}
		props = append(props, p)
	}
	return props
}
