// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strconv"
)

// Comparator qualifies a parsed magnitude: the raw string carried an
// inequality or approximation marker (e.g. ">200 °C").
type Comparator string

const (
	ComparatorEqual        Comparator = "="
	ComparatorLess         Comparator = "<"
	ComparatorGreater      Comparator = ">"
	ComparatorLessEqual    Comparator = "<="
	ComparatorGreaterEqual Comparator = ">="
	ComparatorApprox       Comparator = "~"
)

// ParsedValue is the typed form of one raw value string. Exactly one of
// the numeric magnitude or the qualitative text is populated: a string
// with no extractable number is not an error, it is a qualitative value.
type ParsedValue struct {
	// Magnitude is the numeric value, or the lower bound of a range.
	// Nil when the raw string carried no extractable number.
	Magnitude *float64 `json:"magnitude,omitempty" yaml:"magnitude,omitempty"`

	// MagnitudeHigh is the upper bound when the raw string was a range
	// ("1.2 to 1.5"). Nil for scalar values.
	MagnitudeHigh *float64 `json:"magnitude_high,omitempty" yaml:"magnitude_high,omitempty"`

	// Comparator qualifies the magnitude. Empty when the value is plain.
	Comparator Comparator `json:"comparator,omitempty" yaml:"comparator,omitempty"`

	// Unit is the recognized unit token trailing the number, or empty
	// when no vocabulary unit was found.
	Unit string `json:"unit,omitempty" yaml:"unit,omitempty"`

	// RawText preserves the input string unchanged.
	RawText string `json:"raw_text" yaml:"raw_text"`

	// QualitativeText holds the trimmed raw text when no number could be
	// extracted (e.g. "Freely soluble in water").
	QualitativeText string `json:"qualitative_text,omitempty" yaml:"qualitative_text,omitempty"`
}

// IsNumeric reports whether the value carries a magnitude.
func (v ParsedValue) IsNumeric() bool { return v.Magnitude != nil }

// IsRange reports whether the value carries a [low, high] magnitude pair.
func (v ParsedValue) IsRange() bool { return v.Magnitude != nil && v.MagnitudeHigh != nil }

// Key returns a deduplication key covering magnitude, comparator, unit,
// and raw text. Two values with equal keys are exact duplicates.
func (v ParsedValue) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s",
		formatMagnitude(v.Magnitude), formatMagnitude(v.MagnitudeHigh),
		v.Comparator, v.Unit, v.RawText)
}

func formatMagnitude(m *float64) string {
	if m == nil {
		return ""
	}
	return strconv.FormatFloat(*m, 'g', -1, 64)
}

// PropertyRecord is the per-compound, per-property output of aggregation.
// A record exists only when at least one leaf matched: absence of a
// record means "not found", while a record whose values carry only
// qualitative text means "found but not numeric".
type PropertyRecord struct {
	CompoundID int64  `json:"compound_id" yaml:"compound_id"`
	Property   string `json:"property_name" yaml:"property_name"`

	// Category is the provenance of the retained values, chosen by
	// precedence: experimental over computed over unspecified.
	Category Category `json:"category" yaml:"category"`

	// Values holds the retained parsed values in document order, exact
	// duplicates removed (first occurrence kept). Never empty.
	Values []ParsedValue `json:"values" yaml:"values"`

	// Sources lists the distinct reference names of the matched leaves,
	// in document order.
	Sources []string `json:"sources,omitempty" yaml:"sources,omitempty"`

	// MatchCount is the number of leaves that matched the property
	// across all categories, before precedence filtering.
	MatchCount int `json:"match_count" yaml:"match_count"`
}

// ExtractionResult holds all property records extracted from one
// document, ordered by property name for deterministic serialization.
type ExtractionResult struct {
	CompoundID int64            `json:"compound_id" yaml:"compound_id"`
	Records    []PropertyRecord `json:"records" yaml:"records"`
}

// Record returns the record for the named property, or nil.
func (r *ExtractionResult) Record(property string) *PropertyRecord {
	for i := range r.Records {
		if r.Records[i].Property == property {
			return &r.Records[i]
		}
	}
	return nil
}

// BatchReport is the outcome of one extraction run: per-document results
// in input order plus a failure manifest. Failures are data, not control
// flow; one bad document never blocks the rest of the batch.
type BatchReport struct {
	Results []ExtractionResult `json:"results" yaml:"results"`

	// Failures maps compound IDs to the reason their document could not
	// be processed (record ID mismatch, traversal abort, unreadable file).
	Failures map[int64]string `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// HasFailures reports whether any documents failed.
func (r BatchReport) HasFailures() bool { return len(r.Failures) > 0 }
