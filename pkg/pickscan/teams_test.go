package pickscan

import "testing"

func TestAdjacentPairWinsOverSeparator(t *testing.T) {
	// A trailing "vs" would also satisfy the separator rule ("Lakers ... vs ..."
	// shapes); the adjacent pair must be adopted first and never overridden.
	t1, t2 := inferTeamNames([]string{"Lakers", "Celtics", "vs"})
	if t1 != "Lakers" || t2 != "Celtics" {
		t.Fatalf("expected Lakers/Celtics got %q/%q", t1, t2)
	}
}

func TestAdjacentPairSkipsPrices(t *testing.T) {
	t1, t2 := inferTeamNames([]string{"+150", "Lakers", "Celtics"})
	if t1 != "Lakers" || t2 != "Celtics" {
		t.Fatalf("expected Lakers/Celtics got %q/%q", t1, t2)
	}
}

func TestSeparatorRecoversFreeText(t *testing.T) {
	t1, t2 := inferTeamNames([]string{"+150", "Golden State vs Phoenix", "-110"})
	if t1 != "Golden State" || t2 != "Phoenix" {
		t.Fatalf("expected Golden State/Phoenix got %q/%q", t1, t2)
	}
	t1, t2 = inferTeamNames([]string{"+150", "LAL @ BOS"})
	if t1 != "LAL" || t2 != "BOS" {
		t.Fatalf("expected LAL/BOS got %q/%q", t1, t2)
	}
	// separator packed tight against the names
	t1, t2 = inferTeamNames([]string{"110", "Heat@Magic"})
	if t1 != "Heat" || t2 != "Magic" {
		t.Fatalf("expected Heat/Magic got %q/%q", t1, t2)
	}
}

func TestNoTeamsIsNotAnError(t *testing.T) {
	t1, t2 := inferTeamNames([]string{"+150", "-110", "220.5"})
	if t1 != "" || t2 != "" {
		t.Fatalf("expected empty names got %q/%q", t1, t2)
	}
	t1, t2 = inferTeamNames(nil)
	if t1 != "" || t2 != "" {
		t.Fatalf("expected empty names for empty context got %q/%q", t1, t2)
	}
}

func TestLooksLikeTeamName(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"Lakers", true},
		{"ab", false},        // too short
		{"ab1", false},       // 2/3 alphabetic
		{"abcdefg012", true}, // exactly 70%
		{"+150", false},
		{"St. Louis", true},
	}
	for _, c := range cases {
		if got := looksLikeTeamName(c.in); got != c.want {
			t.Fatalf("looksLikeTeamName(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
