// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract locates property data in hierarchical compound records
// and parses the raw value strings into typed values. The engine is pure:
// no I/O during traversal or parsing, and a malformed document can fail
// only itself, never the batch.
package extract

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Property tags a target physical/chemical property. The set is closed;
// heading matching dispatches on these tags rather than on free strings
// scattered through the traversal.
type Property string

const (
	BoilingPoint          Property = "BoilingPoint"
	MeltingPoint          Property = "MeltingPoint"
	Density               Property = "Density"
	VaporPressure         Property = "VaporPressure"
	FlashPoint            Property = "FlashPoint"
	Solubility            Property = "Solubility"
	DissociationConstants Property = "DissociationConstants"
	MolecularWeight       Property = "MolecularWeight"
	LogP                  Property = "LogP"
)

// defaultAliases maps each property tag to the record headings it accepts.
// These are the headings PubChem uses in its table of contents; the table
// is domain data and can be overridden from a YAML file without touching
// the engine. Matching is exact (after normalization), never substring:
// "Melting Point" must not match "Melting Point Range" unless the alias
// is listed.
var defaultAliases = map[Property][]string{
	BoilingPoint:          {"Boiling Point", "Boiling Point at 760 mm Hg"},
	MeltingPoint:          {"Melting Point"},
	Density:               {"Density", "Density/Specific Gravity"},
	VaporPressure:         {"Vapor Pressure"},
	FlashPoint:            {"Flash Point"},
	Solubility:            {"Solubility", "Water Solubility"},
	DissociationConstants: {"Dissociation Constants", "pKa"},
	MolecularWeight:       {"Molecular Weight", "Exact Mass"},
	LogP:                  {"LogP", "XLogP3", "Octanol/Water Partition Coefficient"},
}

// Matcher resolves target properties to their accepted heading sets.
// Build one at startup with NewMatcher and share it across documents;
// it is read-only after construction.
type Matcher struct {
	accepted map[Property]map[string]struct{}
}

// NewMatcher builds a Matcher from the built-in alias tables, with
// per-property overrides applied on top. An override replaces the whole
// alias list for that property.
func NewMatcher(overrides map[string][]string) *Matcher {
	m := &Matcher{accepted: make(map[Property]map[string]struct{}, len(defaultAliases))}
	for prop, aliases := range defaultAliases {
		m.set(prop, aliases)
	}
	for name, aliases := range overrides {
		m.set(Property(name), aliases)
	}
	return m
}

func (m *Matcher) set(prop Property, aliases []string) {
	set := make(map[string]struct{}, len(aliases))
	for _, a := range aliases {
		set[NormalizeHeading(a)] = struct{}{}
	}
	m.accepted[prop] = set
}

// Resolve returns the accepted heading set for a target property. An
// unknown property yields an empty set: no match is possible, but it is
// not an error.
func (m *Matcher) Resolve(prop Property) map[string]struct{} {
	return m.accepted[prop]
}

// Matches reports whether a section heading is accepted for the property.
func (m *Matcher) Matches(prop Property, heading string) bool {
	_, ok := m.accepted[prop][NormalizeHeading(heading)]
	return ok
}

// Known returns the properties with a non-empty alias table, sorted.
func (m *Matcher) Known() []Property {
	props := make([]Property, 0, len(m.accepted))
	for p, set := range m.accepted {
		if len(set) > 0 {
			props = append(props, p)
		}
	}
	sort.Slice(props, func(i, j int) bool { return props[i] < props[j] })
	return props
}

// NormalizeHeading lowercases a heading and collapses surrounding and
// internal runs of whitespace, so matching is insensitive to both.
func NormalizeHeading(h string) string {
	return strings.Join(strings.Fields(strings.ToLower(h)), " ")
}

// aliasFile is the on-disk shape of a heading alias override file.
type aliasFile struct {
	Aliases map[string][]string `yaml:"aliases"`
}

// LoadAliasFile reads property→headings overrides from a YAML file.
func LoadAliasFile(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading alias file %s: %w", path, err)
	}
	var af aliasFile
	if err := yaml.Unmarshal(data, &af); err != nil {
		return nil, fmt.Errorf("parsing alias file %s: %w", path, err)
	}
	return af.Aliases, nil
}
