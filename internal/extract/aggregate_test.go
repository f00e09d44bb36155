package extract

import (
	"testing"

	"github.com/pdiddy/propharvest/pkg/types"
)

func match(prop Property, cat types.Category, ref string, values ...string) Match {
	return Match{
		Property: prop,
		Leaf: types.InformationLeaf{
			Category:  cat,
			Reference: ref,
			Values:    values,
		},
	}
}

func TestAggregateExperimentalWins(t *testing.T) {
	matches := []Match{
		match(BoilingPoint, types.CategoryComputed, "EPI Suite", "95 °C"),
		match(BoilingPoint, types.CategoryExperimental, "CRC Handbook", "100 °C"),
	}

	result := Aggregate(2244, matches)
	if len(result.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(result.Records))
	}

	rec := result.Records[0]
	if rec.Category != types.CategoryExperimental {
		t.Errorf("Category = %q, want experimental", rec.Category)
	}
	if len(rec.Values) != 1 || *rec.Values[0].Magnitude != 100 {
		t.Errorf("Values = %+v, want only the experimental 100 °C", rec.Values)
	}
	if rec.MatchCount != 2 {
		t.Errorf("MatchCount = %d, want 2 (all categories counted)", rec.MatchCount)
	}
	if len(rec.Sources) != 1 || rec.Sources[0] != "CRC Handbook" {
		t.Errorf("Sources = %v, want only the experimental source", rec.Sources)
	}
}

func TestAggregateComputedFallback(t *testing.T) {
	matches := []Match{
		match(LogP, types.CategoryComputed, "XLogP3", "2.1"),
	}

	result := Aggregate(1, matches)
	if len(result.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(result.Records))
	}
	if result.Records[0].Category != types.CategoryComputed {
		t.Errorf("Category = %q, want computed", result.Records[0].Category)
	}
}

func TestAggregateEmptyCategoryRanksWithUnspecified(t *testing.T) {
	// A leaf with no category tag and a leaf tagged unspecified are the
	// same rank: both contribute when no better category exists.
	matches := []Match{
		match(Density, types.Category(""), "source A", "1.0 g/cm³"),
		match(Density, types.CategoryUnspecified, "source B", "1.1 g/cm³"),
	}

	result := Aggregate(1, matches)
	if len(result.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(result.Records))
	}
	if len(result.Records[0].Values) != 2 {
		t.Errorf("got %d values, want both same-rank leaves", len(result.Records[0].Values))
	}
}

func TestAggregateDeduplicatesValues(t *testing.T) {
	matches := []Match{
		match(DissociationConstants, types.CategoryExperimental, "source A", "4.5", "4.5"),
		match(DissociationConstants, types.CategoryExperimental, "source B", "4.5", "9.9"),
	}

	result := Aggregate(1, matches)
	rec := result.Records[0]
	if len(rec.Values) != 2 {
		t.Fatalf("got %d values, want 2 (exact duplicates removed)", len(rec.Values))
	}
	if *rec.Values[0].Magnitude != 4.5 || *rec.Values[1].Magnitude != 9.9 {
		t.Errorf("Values = %+v, want [4.5 9.9] with first occurrence kept", rec.Values)
	}
	if len(rec.Sources) != 2 {
		t.Errorf("Sources = %v, want both sources", rec.Sources)
	}
}

func TestAggregateDistinctRawTextNotDeduplicated(t *testing.T) {
	// Same magnitude from different raw strings is two values: the raw
	// text is part of the identity.
	matches := []Match{
		match(MeltingPoint, types.CategoryExperimental, "source A", "100 °C", "212 °F"),
	}

	result := Aggregate(1, matches)
	if len(result.Records[0].Values) != 2 {
		t.Errorf("got %d values, want 2", len(result.Records[0].Values))
	}
}

func TestAggregateNoMatchesNoRecord(t *testing.T) {
	result := Aggregate(1, nil)
	if len(result.Records) != 0 {
		t.Errorf("got %d records, want 0", len(result.Records))
	}
	if result.CompoundID != 1 {
		t.Errorf("CompoundID = %d, want 1", result.CompoundID)
	}
}

func TestAggregateDropsValuelessRecord(t *testing.T) {
	// A leaf can carry zero value strings; it must not produce an empty
	// record.
	matches := []Match{
		match(FlashPoint, types.CategoryExperimental, "source A"),
	}

	result := Aggregate(1, matches)
	if len(result.Records) != 0 {
		t.Errorf("got %d records, want 0 for valueless matches", len(result.Records))
	}
}

func TestAggregateQualitativeOnlyKept(t *testing.T) {
	// Found-but-not-numeric is a real outcome, distinct from not found.
	matches := []Match{
		match(Solubility, types.CategoryExperimental, "HSDB", "Freely soluble in water"),
	}

	result := Aggregate(1, matches)
	if len(result.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(result.Records))
	}
	v := result.Records[0].Values[0]
	if v.IsNumeric() {
		t.Errorf("value = %+v, want qualitative", v)
	}
	if v.QualitativeText != "Freely soluble in water" {
		t.Errorf("QualitativeText = %q", v.QualitativeText)
	}
}

func TestAggregateRecordsSortedByProperty(t *testing.T) {
	matches := []Match{
		match(Solubility, types.CategoryExperimental, "s", "soluble 1 g/L"),
		match(BoilingPoint, types.CategoryExperimental, "s", "100 °C"),
		match(Density, types.CategoryExperimental, "s", "1.0 g/cm³"),
	}

	result := Aggregate(1, matches)
	if len(result.Records) != 3 {
		t.Fatalf("got %d records, want 3", len(result.Records))
	}
	for i := 1; i < len(result.Records); i++ {
		if result.Records[i-1].Property >= result.Records[i].Property {
			t.Errorf("records not sorted: %q before %q",
				result.Records[i-1].Property, result.Records[i].Property)
		}
	}
}
