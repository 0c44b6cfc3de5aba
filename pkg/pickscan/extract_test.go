package pickscan

import (
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// fakeRecognizer feeds canned blocks into the engine.
type fakeRecognizer struct {
	blocks []TextBlock
	err    error
}

func (f *fakeRecognizer) Recognize([]byte) ([]TextBlock, error) { return f.blocks, f.err }
func (f *fakeRecognizer) Close() error                          { return nil }

func newTestEngine(f *fakeRecognizer) *Engine {
	return NewEngine(f, zerolog.Nop())
}

func TestExtractOddsBoardLayout(t *testing.T) {
	blocks := singleBlock(
		el("+150", 10, 10, 40, 20),
		el("Lakers", 10, 40, 60, 20),
		el("Celtics", 10, 70, 60, 20),
	)
	e := newTestEngine(&fakeRecognizer{blocks: blocks})
	pick, err := e.ExtractPick(nil, clickAt(30, 15))
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if pick.Odds != "+150" {
		t.Fatalf("expected odds +150 got %q", pick.Odds)
	}
	if pick.Team1 != "Lakers" || pick.Team2 != "Celtics" {
		t.Fatalf("expected Lakers/Celtics got %q/%q", pick.Team1, pick.Team2)
	}
	if pick.MarketType != MarketMoneyline {
		t.Fatalf("expected moneyline got %s", pick.MarketType)
	}
	if pick.GameText != "Lakers vs Celtics" {
		t.Fatalf("expected game text %q got %q", "Lakers vs Celtics", pick.GameText)
	}
	if pick.ClickPosition != "(30, 15)" {
		t.Fatalf("expected click position %q got %q", "(30, 15)", pick.ClickPosition)
	}
	if pick.ExtractionMethod != extractionMethod {
		t.Fatalf("unexpected extraction method %q", pick.ExtractionMethod)
	}
	if pick.Timestamp == 0 {
		t.Fatalf("timestamp not set")
	}
}

func TestExtractNothingNearClick(t *testing.T) {
	blocks := singleBlock(el("+150", 10, 10, 40, 20))
	e := newTestEngine(&fakeRecognizer{blocks: blocks})
	if _, err := e.ExtractPick(nil, clickAt(500, 500)); !errors.Is(err, ErrNoPick) {
		t.Fatalf("expected ErrNoPick got %v", err)
	}
	e = newTestEngine(&fakeRecognizer{})
	if _, err := e.ExtractPick(nil, clickAt(10, 10)); !errors.Is(err, ErrNoPick) {
		t.Fatalf("expected ErrNoPick on empty recognition got %v", err)
	}
}

func TestExtractTotalKeywordBeatsShape(t *testing.T) {
	blocks := singleBlock(
		el("Over", 10, 0, 20, 20),
		el("220.5", 50, 0, 20, 20),
		el("-110", 90, 0, 20, 20),
	)
	e := newTestEngine(&fakeRecognizer{blocks: blocks})
	pick, err := e.ExtractPick(nil, clickAt(100, 12))
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if pick.Odds != "-110" {
		t.Fatalf("expected odds -110 got %q", pick.Odds)
	}
	if pick.MarketType != MarketTotal {
		t.Fatalf("keyword must beat odds shape, got %s", pick.MarketType)
	}
}

func TestExtractRecognizerFailureIsDistinct(t *testing.T) {
	e := newTestEngine(&fakeRecognizer{err: errors.New("tesseract exploded")})
	_, err := e.ExtractPick(nil, clickAt(10, 10))
	if err == nil {
		t.Fatalf("expected error")
	}
	if errors.Is(err, ErrNoPick) {
		t.Fatalf("recognizer failure must not be reported as no-signal")
	}
	if !strings.Contains(err.Error(), "recognize") {
		t.Fatalf("expected wrapped recognize error got %v", err)
	}
}

func TestExtractBlankNearestText(t *testing.T) {
	blocks := singleBlock(TextElement{Text: "  ", Box: el("", 10, 10, 10, 10).Box})
	e := newTestEngine(&fakeRecognizer{blocks: blocks})
	pick, err := e.ExtractPick(nil, clickAt(15, 15))
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if pick.Odds != oddsNotAvailable {
		t.Fatalf("expected %q got %q", oddsNotAvailable, pick.Odds)
	}
	if pick.GameText != gameTextFallback {
		t.Fatalf("expected fallback game text got %q", pick.GameText)
	}
	if pick.MarketType != MarketUnknown {
		t.Fatalf("expected unknown market got %s", pick.MarketType)
	}
}

func TestExtractRadiusOverride(t *testing.T) {
	blocks := singleBlock(el("+150", 190, -10, 20, 20)) // center (200, 0)
	e := newTestEngine(&fakeRecognizer{blocks: blocks})
	if _, err := e.ExtractPick(nil, clickAt(0, 0)); !errors.Is(err, ErrNoPick) {
		t.Fatalf("expected ErrNoPick at default radius got %v", err)
	}
	e.SetRadius(200)
	if _, err := e.ExtractPick(nil, clickAt(0, 0)); err != nil {
		t.Fatalf("expected hit with widened radius got %v", err)
	}
}

func TestBuildGameTextSanitizes(t *testing.T) {
	got := buildGameText("", "", []string{"Ov#er!", "22(0).5", "a", "b", "c", "dropped"})
	if got != "Over 220.5 a b c" {
		t.Fatalf("unexpected game text %q", got)
	}
	if buildGameText("A", "B", nil) != "A vs B" {
		t.Fatalf("team names must render as a matchup")
	}
}
