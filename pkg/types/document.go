// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the propharvest
// pipeline: compound documents, parsed property values, and the
// per-stage configuration.
package types

// Category is the provenance of an information leaf: whether its values
// were measured, model-predicted, or of unstated origin.
type Category string

const (
	CategoryExperimental Category = "experimental"
	CategoryComputed     Category = "computed"
	CategoryUnspecified  Category = "unspecified"
)

// Rank returns the precedence of the category for aggregation. Higher
// ranks win: experimental values shadow computed ones, which shadow
// values of unstated provenance.
func (c Category) Rank() int {
	switch c {
	case CategoryExperimental:
		return 2
	case CategoryComputed:
		return 1
	default:
		return 0
	}
}

// ParseCategory normalizes a category string. Unrecognized or empty
// input maps to CategoryUnspecified.
func ParseCategory(s string) Category {
	switch s {
	case "experimental", "Experimental":
		return CategoryExperimental
	case "computed", "Computed":
		return CategoryComputed
	default:
		return CategoryUnspecified
	}
}

// InformationLeaf is the smallest unit of a compound record: one or more
// raw value strings with provenance. Leaves are collected by the section
// searcher and their values fed to the value parser.
type InformationLeaf struct {
	// Name labels the entry within its section (e.g. "pKa" under
	// Dissociation Constants). Often empty.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Category is the provenance of the values.
	Category Category `json:"category" yaml:"category"`

	// Reference names the source that contributed the values
	// (e.g. "CRC Handbook of Chemistry and Physics").
	Reference string `json:"reference,omitempty" yaml:"reference,omitempty"`

	// Values holds the raw value strings exactly as they appear in the
	// record (e.g. "100 °C", "1.2 to 1.5 g/cm³", "Freely soluble").
	Values []string `json:"values" yaml:"values"`
}

// Section is a named node in a compound record. A section may contain
// child sections, information leaves, or both. Headings are not unique:
// the same heading can recur among siblings and at different depths.
type Section struct {
	Heading     string            `json:"heading" yaml:"heading"`
	Sections    []*Section        `json:"sections,omitempty" yaml:"sections,omitempty"`
	Information []InformationLeaf `json:"information,omitempty" yaml:"information,omitempty"`
}

// DocumentTree is a read-only view over one compound's hierarchical
// record. It is built once per record and discarded after extraction;
// no state is shared across documents.
type DocumentTree struct {
	// RecordID is the identifier the record declares for itself. It must
	// match the compound ID the caller expects, or extraction reports a
	// data-integrity failure for the document.
	RecordID int64 `json:"record_id" yaml:"record_id"`

	Sections []*Section `json:"sections" yaml:"sections"`
}

// CompoundDocument pairs a compound identifier with its parsed record,
// the unit of work for a batch extraction run.
type CompoundDocument struct {
	CompoundID int64
	Tree       *DocumentTree
}
