// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/pdiddy/propharvest/pkg/types"
)

// number matches a decimal with optional sign, thousands separators, and
// scientific notation. Decimal commas are not handled; PubChem records
// use "." throughout.
const number = `[-+]?(?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?(?:[eE][-+]?\d+)?`

// valuePattern locates the first numeric value in a raw string: an
// optional comparator marker, the number, and an optional range tail
// ("1.2 to 1.5", "1.2-1.5"). A dash counts as a range separator only
// after the first number has been consumed, so "-15 °C" stays a single
// negative value.
var valuePattern = regexp.MustCompile(
	`(?i)(<=|>=|≤|≥|<|>|~|ca\.?\s+|approx(?:\.|imately)?\s+|about\s+|less than\s+|greater than\s+)?` +
		`(` + number + `)` +
		`(?:\s*(?:to(?:\s|$)|[–—-])\s*(` + number + `))?`)

// comparatorForMarker normalizes the matched marker text to a Comparator.
var comparatorForMarker = map[string]types.Comparator{
	"<":             types.ComparatorLess,
	">":             types.ComparatorGreater,
	"<=":            types.ComparatorLessEqual,
	">=":            types.ComparatorGreaterEqual,
	"≤":             types.ComparatorLessEqual,
	"≥":             types.ComparatorGreaterEqual,
	"~":             types.ComparatorApprox,
	"ca":            types.ComparatorApprox,
	"ca.":           types.ComparatorApprox,
	"approx":        types.ComparatorApprox,
	"approx.":       types.ComparatorApprox,
	"approximately": types.ComparatorApprox,
	"about":         types.ComparatorApprox,
	"less than":     types.ComparatorLess,
	"greater than":  types.ComparatorGreater,
}

// unitVocab is the recognized-unit vocabulary, grouped by property
// family (temperature, density, pressure, concentration, dimensionless).
// Keys are lowercase match tokens; values are the canonical spelling.
var unitVocab = map[string]string{
	// temperature
	"°c": "°C", "deg c": "°C", "°f": "°F", "deg f": "°F", "k": "K",
	// density
	"g/cm³": "g/cm³", "g/cm3": "g/cm³", "g/cu cm": "g/cm³",
	"g/ml": "g/mL", "kg/m³": "kg/m³", "kg/m3": "kg/m³",
	// concentration / solubility
	"mg/ml": "mg/mL", "mg/l": "mg/L", "g/l": "g/L", "µg/ml": "µg/mL",
	"g/100 ml": "g/100 mL", "mol/l": "mol/L", "ppm": "ppm", "ppb": "ppb",
	// pressure
	"mm hg": "mm Hg", "mmhg": "mm Hg", "kpa": "kPa", "hpa": "hPa",
	"pa": "Pa", "atm": "atm", "torr": "Torr", "bar": "bar", "mbar": "mbar",
	// dimensionless / misc
	"%": "%", "wt%": "wt%", "g/mol": "g/mol", "da": "Da",
}

// unitTokens holds the vocabulary keys sorted longest-first so compound
// tokens ("mm hg") win over their prefixes ("m", "mm").
var unitTokens = sortedUnitTokens()

func sortedUnitTokens() []string {
	tokens := make([]string, 0, len(unitVocab))
	for t := range unitVocab {
		tokens = append(tokens, t)
	}
	// Insertion sort by descending length, ties lexicographic, so the
	// slice is deterministic across runs.
	for i := 1; i < len(tokens); i++ {
		for j := i; j > 0; j-- {
			a, b := tokens[j-1], tokens[j]
			if len(a) > len(b) || (len(a) == len(b) && a <= b) {
				break
			}
			tokens[j-1], tokens[j] = b, a
		}
	}
	return tokens
}

// Parse converts one raw value string to a typed ParsedValue. It never
// fails: a string with no extractable number comes back as a qualitative
// value with the trimmed raw text, so no single leaf can abort an
// extraction run.
func Parse(raw string) types.ParsedValue {
	v := types.ParsedValue{RawText: raw}
	trimmed := strings.TrimSpace(raw)

	if !strings.ContainsAny(trimmed, "0123456789") {
		v.QualitativeText = trimmed
		return v
	}

	m := valuePattern.FindStringSubmatchIndex(trimmed)
	if m == nil {
		v.QualitativeText = trimmed
		return v
	}

	low, ok := parseNumber(group(trimmed, m, 2))
	if !ok {
		v.QualitativeText = trimmed
		return v
	}
	v.Magnitude = &low

	if marker := strings.TrimSpace(strings.ToLower(group(trimmed, m, 1))); marker != "" {
		v.Comparator = comparatorForMarker[marker]
	}

	if highText := group(trimmed, m, 3); highText != "" {
		if high, ok := parseNumber(highText); ok {
			v.MagnitudeHigh = &high
		}
	}

	v.Unit = matchUnit(trimmed[m[1]:])
	return v
}

// group returns the text of the i-th submatch, or "" when it did not
// participate in the match.
func group(s string, m []int, i int) string {
	if m[2*i] < 0 {
		return ""
	}
	return s[m[2*i]:m[2*i+1]]
}

// parseNumber converts matched number text to a float, stripping
// thousands separators.
func parseNumber(text string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// matchUnit looks for a vocabulary unit at the start of the text
// trailing the number. No recognized token means no unit; the magnitude
// is still reported.
func matchUnit(rest string) string {
	rest = strings.TrimLeft(rest, " \t")
	lower := strings.ToLower(rest)
	for _, token := range unitTokens {
		if !strings.HasPrefix(lower, token) {
			continue
		}
		if !boundaryAfter(rest, len(token)) {
			continue
		}
		return unitVocab[token]
	}
	return ""
}

// boundaryAfter reports whether the character following a candidate unit
// token ends the token (so "K" does not match inside "kg/m³").
func boundaryAfter(s string, n int) bool {
	if n >= len(s) {
		return true
	}
	r := []rune(s[n:])[0]
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '/' && r != '%'
}

// Format renders a ParsedValue back to a canonical raw string. It is the
// inverse of Parse for numeric values: parsing the formatted string
// reconstructs the same magnitude, comparator, and unit.
func Format(v types.ParsedValue) string {
	if v.Magnitude == nil {
		return v.QualitativeText
	}

	var b strings.Builder
	b.WriteString(string(v.Comparator))
	b.WriteString(strconv.FormatFloat(*v.Magnitude, 'g', -1, 64))
	if v.MagnitudeHigh != nil {
		b.WriteString(" to ")
		b.WriteString(strconv.FormatFloat(*v.MagnitudeHigh, 'g', -1, 64))
	}
	if v.Unit != "" {
		b.WriteString(" ")
		b.WriteString(v.Unit)
	}
	return b.String()
}
