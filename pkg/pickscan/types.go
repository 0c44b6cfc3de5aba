package pickscan

import (
	"fmt"
	"image"
)

// TextElement is a single recognized fragment with its bounding box in the
// source image's pixel space.
type TextElement struct {
	Text string
	Box  image.Rectangle
}

// center returns the bounding-box midpoint.
func (e TextElement) center() (float64, float64) {
	return float64(e.Box.Min.X+e.Box.Max.X) / 2, float64(e.Box.Min.Y+e.Box.Max.Y) / 2
}

// TextLine groups elements on one recognized line.
type TextLine struct {
	Elements []TextElement
}

// TextBlock groups lines. The engine only walks blocks/lines to flatten
// elements; it does not depend on the grouping beyond iteration order.
type TextBlock struct {
	Lines []TextLine
}

// ClickContext carries the tap position and the image dimensions. The
// position may fall outside the image; selection simply finds nothing near it.
type ClickContext struct {
	Position  image.Point
	ImageSize image.Point
}

// nearbyElement pairs an element with its distance to the click. Transient:
// only used while selecting and sorting.
type nearbyElement struct {
	TextElement
	Distance float64
}

// MarketType is the wager category inferred for a pick.
type MarketType string

const (
	MarketMoneyline MarketType = "moneyline"
	MarketSpread    MarketType = "spread"
	MarketTotal     MarketType = "total"
	MarketUnknown   MarketType = "unknown"
)

// extractionMethod tags records produced by this engine.
const extractionMethod = "ocr_click"

// oddsNotAvailable is the odds value when the nearest fragment has no text.
const oddsNotAvailable = "N/A"

// PickExtraction is the assembled result of one extraction. Either fully
// populated or not returned at all; fields default to empty/unknown rather
// than staying unset.
type PickExtraction struct {
	GameText         string     `json:"game_text"`
	Odds             string     `json:"odds"`
	Team1            string     `json:"team1"`
	Team2            string     `json:"team2"`
	MarketType       MarketType `json:"market_type"`
	Timestamp        int64      `json:"timestamp"` // epoch millis
	ExtractionMethod string     `json:"extraction_method"`
	ClickPosition    string     `json:"click_position"`
}

// formatClick renders the click point for diagnostics, e.g. "(30, 15)".
func formatClick(p image.Point) string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}
