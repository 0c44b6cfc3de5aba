package pickscan

import "regexp"

// oddsRE matches an American price or a point line: optional sign, digits,
// optional decimal fraction (e.g. +150, -3.5, 110).
var oddsRE = regexp.MustCompile(`[+-]?[0-9]+(?:\.[0-9]+)?`)

// normalizeOdds extracts the first odds-shaped substring from the text of the
// element nearest the click. OCR noise is expected, so when nothing matches
// the raw text is returned unchanged rather than failing; downstream
// consumers must accept a non-numeric token.
func normalizeOdds(raw string) string {
	if m := oddsRE.FindString(raw); m != "" {
		return m
	}
	return raw
}
