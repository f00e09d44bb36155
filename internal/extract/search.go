// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"

	"github.com/pdiddy/propharvest/pkg/types"
)

// defaultMaxDepth bounds section nesting. Real PubChem records stay
// under six levels; anything past this is a malformed document.
const defaultMaxDepth = 64

// StructuralError marks a document that could not be traversed: its
// declared record ID does not match the expected compound, or the
// section tree exceeded the depth bound or revisited a node. Structural
// errors fail the document, never the batch.
type StructuralError struct {
	CompoundID int64
	Reason     string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("compound %d: %s", e.CompoundID, e.Reason)
}

// Match is one information leaf found under a matching heading, with the
// heading path traversed to reach it (for provenance; ordering and
// aggregation do not depend on the path).
type Match struct {
	Property Property
	Leaf     types.InformationLeaf
	Path     []string
}

// Searcher finds information leaves for target properties in one
// document. It is stateless across documents and safe to reuse.
type Searcher struct {
	matcher  *Matcher
	maxDepth int
}

// NewSearcher builds a Searcher. A maxDepth of zero uses the default.
func NewSearcher(matcher *Matcher, maxDepth int) *Searcher {
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	return &Searcher{matcher: matcher, maxDepth: maxDepth}
}

// frame is one pending node in the traversal work list.
type frame struct {
	sec   *types.Section
	depth int
	path  []string
}

// Search walks the document's section tree in pre-order and returns all
// information leaves attached to sections whose heading matches any of
// the target properties. Matching sections still recurse: duplicate
// headings at several depths all contribute, in document order, which
// callers rely on for deterministic first-match tie-breaks.
//
// Before traversal the document's declared record ID is checked against
// expectID; a mismatch is a data-integrity failure for this document.
// The traversal carries an explicit work-list stack with a depth bound
// and a visited set so malformed (cyclic or absurdly deep) input aborts
// the document instead of looping.
func (s *Searcher) Search(doc *types.DocumentTree, expectID int64, props []Property) ([]Match, error) {
	if doc == nil {
		return nil, &StructuralError{CompoundID: expectID, Reason: "document is nil"}
	}
	if doc.RecordID != expectID {
		return nil, &StructuralError{
			CompoundID: expectID,
			Reason:     fmt.Sprintf("record ID %d does not match expected compound %d", doc.RecordID, expectID),
		}
	}

	var matches []Match
	visited := make(map[*types.Section]bool)
	stack := make([]frame, 0, len(doc.Sections))

	// Push top-level sections in reverse so the stack pops them in
	// document order.
	for i := len(doc.Sections) - 1; i >= 0; i-- {
		stack = append(stack, frame{sec: doc.Sections[i], depth: 1})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.sec == nil {
			continue
		}
		if f.depth > s.maxDepth {
			return nil, &StructuralError{
				CompoundID: expectID,
				Reason:     fmt.Sprintf("section nesting exceeds depth bound %d", s.maxDepth),
			}
		}
		if visited[f.sec] {
			return nil, &StructuralError{
				CompoundID: expectID,
				Reason:     fmt.Sprintf("section %q visited twice: cycle in record structure", f.sec.Heading),
			}
		}
		visited[f.sec] = true

		path := make([]string, len(f.path), len(f.path)+1)
		copy(path, f.path)
		path = append(path, f.sec.Heading)

		for _, prop := range props {
			if !s.matcher.Matches(prop, f.sec.Heading) {
				continue
			}
			for _, leaf := range f.sec.Information {
				matches = append(matches, Match{Property: prop, Leaf: leaf, Path: path})
			}
		}

		for i := len(f.sec.Sections) - 1; i >= 0; i-- {
			stack = append(stack, frame{sec: f.sec.Sections[i], depth: f.depth + 1, path: path})
		}
	}

	return matches, nil
}
