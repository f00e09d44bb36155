// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"sort"

	"github.com/pdiddy/propharvest/pkg/types"
)

// Aggregate merges the matches from one document into one property
// record per target property.
//
// Merge policy: matches are partitioned by provenance category and the
// maximal-priority non-empty partition wins (experimental > computed >
// unspecified) — a ranking over the category enumeration, not a side
// effect of processing order. Within the winning partition every raw
// value is parsed and retained in document order, with exact duplicates
// (same magnitude, comparator, unit, raw text) removed, first occurrence
// kept. A property with no matches produces no record at all; a property
// whose values parse to nothing numeric still produces a record carrying
// qualitative text.
func Aggregate(compoundID int64, matches []Match) types.ExtractionResult {
	result := types.ExtractionResult{CompoundID: compoundID}

	byProp := make(map[Property][]Match)
	for _, m := range matches {
		byProp[m.Property] = append(byProp[m.Property], m)
	}

	props := make([]Property, 0, len(byProp))
	for p := range byProp {
		props = append(props, p)
	}
	sort.Slice(props, func(i, j int) bool { return props[i] < props[j] })

	for _, prop := range props {
		propMatches := byProp[prop]

		// Compare by rank, not by string: an empty category tag ranks
		// with unspecified.
		category := bestCategory(propMatches)
		var chosen []Match
		for _, m := range propMatches {
			if m.Leaf.Category.Rank() == category.Rank() {
				chosen = append(chosen, m)
			}
		}

		record := types.PropertyRecord{
			CompoundID: compoundID,
			Property:   string(prop),
			Category:   category,
			MatchCount: len(propMatches),
		}

		seenValues := make(map[string]bool)
		seenSources := make(map[string]bool)
		for _, m := range chosen {
			for _, raw := range m.Leaf.Values {
				v := Parse(raw)
				if key := v.Key(); !seenValues[key] {
					seenValues[key] = true
					record.Values = append(record.Values, v)
				}
			}
			if ref := m.Leaf.Reference; ref != "" && !seenSources[ref] {
				seenSources[ref] = true
				record.Sources = append(record.Sources, ref)
			}
		}

		// Leaves can carry zero value strings; a record with no values
		// would violate the output contract, so it is dropped like a
		// non-match.
		if len(record.Values) == 0 {
			continue
		}

		result.Records = append(result.Records, record)
	}

	return result
}

// bestCategory returns the maximal-priority category present among the
// matches for one property.
func bestCategory(matches []Match) types.Category {
	best := types.CategoryUnspecified
	for _, m := range matches {
		if m.Leaf.Category.Rank() > best.Rank() {
			best = m.Leaf.Category
		}
	}
	return best
}
