// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubchem

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/propharvest/pkg/types"
)

// Native PUG View JSON structures. Only the fields the decoder touches
// are declared; records carry much more.
type pugRecordFile struct {
	Record pugRecord `json:"Record"`
}

type pugRecord struct {
	RecordType   string       `json:"RecordType"`
	RecordNumber int64        `json:"RecordNumber"`
	RecordTitle  string       `json:"RecordTitle"`
	Section      []pugSection `json:"Section"`
}

type pugSection struct {
	TOCHeading  string           `json:"TOCHeading"`
	Section     []pugSection     `json:"Section"`
	Information []pugInformation `json:"Information"`
}

type pugInformation struct {
	Name      string   `json:"Name"`
	Value     pugValue `json:"Value"`
	Reference []string `json:"Reference"`
}

type pugValue struct {
	StringWithMarkup []pugString `json:"StringWithMarkup"`
	Number           []float64   `json:"Number"`
	Unit             string      `json:"Unit"`
}

type pugString struct {
	String string `json:"String"`
}

// decodeMaxDepth caps section nesting while converting the wire format.
// The engine applies its own traversal guard; this one only stops a
// hostile payload from exhausting the stack during conversion.
const decodeMaxDepth = 128

// Headings whose subtree carries a provenance category. PUG View does
// not tag Information entries directly; provenance follows from where
// in the table of contents a section sits.
const (
	experimentalHeading = "experimental properties"
	computedHeading     = "computed properties"
)

// DecodeRecord converts native PUG View JSON into the engine's document
// model, returning the tree and the record's declared title. Provenance
// is derived from Experimental/Computed Properties ancestry, and Number
// values are flattened to "value unit" strings so the value parser sees
// one uniform representation.
func DecodeRecord(data []byte) (*types.DocumentTree, string, error) {
	var rf pugRecordFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return nil, "", fmt.Errorf("parsing record JSON: %w", err)
	}
	if rf.Record.RecordNumber == 0 && len(rf.Record.Section) == 0 {
		return nil, "", fmt.Errorf("payload has no Record structure")
	}

	tree := &types.DocumentTree{RecordID: rf.Record.RecordNumber}
	for i := range rf.Record.Section {
		sec, err := convertSection(&rf.Record.Section[i], types.CategoryUnspecified, 1)
		if err != nil {
			return nil, "", err
		}
		tree.Sections = append(tree.Sections, sec)
	}
	return tree, rf.Record.RecordTitle, nil
}

func convertSection(src *pugSection, category types.Category, depth int) (*types.Section, error) {
	if depth > decodeMaxDepth {
		return nil, fmt.Errorf("section nesting exceeds %d levels", decodeMaxDepth)
	}

	switch strings.ToLower(strings.TrimSpace(src.TOCHeading)) {
	case experimentalHeading:
		category = types.CategoryExperimental
	case computedHeading:
		category = types.CategoryComputed
	}

	sec := &types.Section{Heading: src.TOCHeading}

	for _, info := range src.Information {
		leaf := types.InformationLeaf{
			Name:     info.Name,
			Category: category,
			Values:   flattenValue(info.Value),
		}
		if len(info.Reference) > 0 {
			leaf.Reference = info.Reference[0]
		}
		sec.Information = append(sec.Information, leaf)
	}

	for i := range src.Section {
		child, err := convertSection(&src.Section[i], category, depth+1)
		if err != nil {
			return nil, err
		}
		sec.Sections = append(sec.Sections, child)
	}

	return sec, nil
}

// flattenValue turns a PUG View Value into raw strings. String values
// pass through; numeric values are rendered with the declared unit
// appended, the same shape the strings arrive in.
func flattenValue(v pugValue) []string {
	var values []string
	for _, s := range v.StringWithMarkup {
		if s.String == "" {
			continue
		}
		values = append(values, withUnit(s.String, v.Unit))
	}
	for _, n := range v.Number {
		values = append(values, withUnit(strconv.FormatFloat(n, 'g', -1, 64), v.Unit))
	}
	return values
}

func withUnit(value, unit string) string {
	if unit == "" {
		return value
	}
	return value + " " + unit
}

// LoadRecords reads all record JSON files under dataDir/records/,
// decodes them, and returns documents ordered by compound ID. Files
// that cannot be read or decoded land in the failures map so the batch
// report can carry them; they never abort the load.
func LoadRecords(dataDir string) ([]types.CompoundDocument, map[int64]string, error) {
	dir := filepath.Join(dataDir, RecordsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading records directory %s: %w", dir, err)
	}

	var docs []types.CompoundDocument
	failures := make(map[int64]string)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id, ok := compoundIDFromFilename(entry.Name())
		if !ok {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			failures[id] = fmt.Sprintf("reading record: %v", err)
			continue
		}

		tree, _, err := DecodeRecord(data)
		if err != nil {
			failures[id] = fmt.Sprintf("decoding record: %v", err)
			continue
		}

		docs = append(docs, types.CompoundDocument{CompoundID: id, Tree: tree})
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].CompoundID < docs[j].CompoundID })
	return docs, failures, nil
}

// compoundIDFromFilename extracts the numeric compound ID from a record
// filename: "2244.json" or "2244_58-08-2_caffeine.json".
func compoundIDFromFilename(name string) (int64, bool) {
	base := strings.TrimSuffix(name, ".json")
	if i := strings.IndexByte(base, '_'); i >= 0 {
		base = base[:i]
	}
	id, err := strconv.ParseInt(base, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
