package pickscan

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// gameTextFallback is used when neither team inference nor the raw context
// yields anything printable.
const gameTextFallback = "Unknown matchup"

var gameTextJunkRE = regexp.MustCompile(`[^\w\s\-+.]`)

// Engine wires the recognition collaborator to the selection and parsing
// heuristics. It keeps no state between calls and is safe to reuse; the
// recognizer it was built with bounds its concurrency.
type Engine struct {
	rec    Recognizer
	radius float64
	log    zerolog.Logger
}

func NewEngine(rec Recognizer, log zerolog.Logger) *Engine {
	return &Engine{rec: rec, radius: DefaultClickRadius, log: log}
}

// SetRadius overrides the click selection radius (pixels).
func (e *Engine) SetRadius(r float64) { e.radius = r }

// ExtractPick recognizes text in img and assembles the pick nearest the
// click. It returns ErrNoPick when nothing lies within the radius; a
// recognition failure comes back as a distinct wrapped error so callers can
// tell the two apart in logs even if they surface both as "not found".
func (e *Engine) ExtractPick(img []byte, click ClickContext) (*PickExtraction, error) {
	blocks, err := e.rec.Recognize(img)
	if err != nil {
		e.log.Error().Err(err).Str("click", formatClick(click.Position)).Msg("recognition failed")
		return nil, fmt.Errorf("recognize: %w", err)
	}

	near := nearbyElements(blocks, click, e.radius)
	if len(near) == 0 {
		e.log.Debug().Str("click", formatClick(click.Position)).Msg("no text near click")
		return nil, ErrNoPick
	}
	sortByDistance(near)

	odds := oddsNotAvailable
	if t := strings.TrimSpace(near[0].Text); t != "" {
		odds = normalizeOdds(t)
	}

	texts := make([]string, len(near))
	for i, n := range near {
		texts[i] = n.Text
	}
	team1, team2 := inferTeamNames(texts)
	market := classifyMarket(strings.Join(texts, " "), odds)

	pick := &PickExtraction{
		GameText:         buildGameText(team1, team2, texts),
		Odds:             odds,
		Team1:            team1,
		Team2:            team2,
		MarketType:       market,
		Timestamp:        time.Now().UnixMilli(),
		ExtractionMethod: extractionMethod,
		ClickPosition:    formatClick(click.Position),
	}
	e.log.Info().
		Str("odds", pick.Odds).
		Str("market", string(pick.MarketType)).
		Str("game", pick.GameText).
		Int("nearby", len(near)).
		Msg("pick extracted")
	return pick, nil
}

// buildGameText renders "T1 vs T2" when both teams were inferred; otherwise
// it falls back to the first five context texts stripped to word characters,
// whitespace, hyphen, plus and period.
func buildGameText(team1, team2 string, texts []string) string {
	if team1 != "" && team2 != "" {
		return team1 + " vs " + team2
	}
	n := len(texts)
	if n > 5 {
		n = 5
	}
	s := gameTextJunkRE.ReplaceAllString(strings.Join(texts[:n], " "), "")
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return gameTextFallback
	}
	return s
}
