package pickscan

import (
	"regexp"
	"strings"
	"unicode"
)

// separatorRE recovers free-text matchups like "Lakers vs Celtics" or
// "LAL @ BOS" from the joined context.
var separatorRE = regexp.MustCompile(`(?i)([a-z][a-z ]*?)\s*(?:\bvs\b|@)\s*([a-z][a-z ]*)`)

// teamRule is one inference strategy. Rules run in order; the first success
// wins and later rules are never consulted.
type teamRule struct {
	name  string
	infer func(texts []string) (string, string, bool)
}

var teamRules = []teamRule{
	{name: "adjacent-pair", infer: adjacentPairTeams},
	{name: "separator", infer: separatorTeams},
}

// inferTeamNames derives up to two team names from the distance-sorted
// context texts. Empty names are a valid outcome, not an error.
func inferTeamNames(texts []string) (team1, team2 string) {
	for _, r := range teamRules {
		if t1, t2, ok := r.infer(texts); ok {
			return t1, t2
		}
	}
	return "", ""
}

// adjacentPairTeams adopts the first consecutive pair of fragments that both
// look like team names. Odds boards stack each label next to its price, so
// this is the common case and the cheapest to validate.
func adjacentPairTeams(texts []string) (string, string, bool) {
	for i := 0; i+1 < len(texts); i++ {
		if looksLikeTeamName(texts[i]) && looksLikeTeamName(texts[i+1]) {
			return texts[i], texts[i+1], true
		}
	}
	return "", "", false
}

// separatorTeams joins the fragments and searches for a "vs"/"@" separated
// matchup, capturing the trimmed sides.
func separatorTeams(texts []string) (string, string, bool) {
	joined := strings.Join(texts, " ")
	m := separatorRE.FindStringSubmatch(joined)
	if len(m) < 3 {
		return "", "", false
	}
	t1 := strings.TrimSpace(m[1])
	t2 := strings.TrimSpace(m[2])
	if t1 == "" || t2 == "" {
		return "", "", false
	}
	return t1, t2, true
}

// looksLikeTeamName accepts fragments of at least 3 characters where 70% or
// more of the characters are alphabetic.
func looksLikeTeamName(s string) bool {
	runes := []rune(s)
	if len(runes) < 3 {
		return false
	}
	alpha := 0
	for _, r := range runes {
		if unicode.IsLetter(r) {
			alpha++
		}
	}
	return float64(alpha)/float64(len(runes)) >= 0.7
}
