package pickscan

import "testing"

func TestNormalizeOddsIdempotent(t *testing.T) {
	for _, tok := range []string{"+150", "-3.5", "110"} {
		if got := normalizeOdds(tok); got != tok {
			t.Fatalf("canonical token %q changed to %q", tok, got)
		}
	}
}

func TestNormalizeOddsExtractsFirstRun(t *testing.T) {
	// OCR read a zero as the letter S; the leading numeric run still matches.
	if got := normalizeOdds("+1S0"); got != "+1" {
		t.Fatalf("expected %q got %q", "+1", got)
	}
	if got := normalizeOdds("ML -110"); got != "-110" {
		t.Fatalf("expected %q got %q", "-110", got)
	}
}

func TestNormalizeOddsRawFallback(t *testing.T) {
	if got := normalizeOdds("EVEN"); got != "EVEN" {
		t.Fatalf("non-numeric text must pass through, got %q", got)
	}
}
