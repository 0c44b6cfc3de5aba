package pickscan

import "testing"

func TestVocabularyBeatsOddsShape(t *testing.T) {
	// +3.5 is spread-shaped, but the explicit keyword wins.
	if got := classifyMarket("Moneyline Lakers Celtics", "+3.5"); got != MarketMoneyline {
		t.Fatalf("expected moneyline got %s", got)
	}
	if got := classifyMarket("Over 220.5 Lakers", "-110"); got != MarketTotal {
		t.Fatalf("expected total got %s", got)
	}
}

func TestKeywordRules(t *testing.T) {
	cases := []struct {
		ctx  string
		want MarketType
	}{
		{"Lakers ML -110", MarketMoneyline},
		{"point spread -3.5", MarketSpread},
		{"Spread Celtics", MarketSpread},
		{"TOTAL 220.5", MarketTotal},
		{"under 45.5", MarketTotal},
		{"O/U 220.5", MarketTotal},
	}
	for _, c := range cases {
		if got := classifyMarket(c.ctx, ""); got != c.want {
			t.Fatalf("classifyMarket(%q) = %s, want %s", c.ctx, got, c.want)
		}
	}
}

func TestStandaloneMLOnly(t *testing.T) {
	// "ml" must be its own token; embedded occurrences don't count.
	if got := classifyMarket("html page", "110"); got != MarketUnknown {
		t.Fatalf("embedded ml should not classify, got %s", got)
	}
}

func TestOddsShapeFallback(t *testing.T) {
	cases := []struct {
		odds string
		want MarketType
	}{
		{"+3.5", MarketSpread},    // fractional signed line
		{"-110", MarketMoneyline}, // integral signed price
		{"+150", MarketMoneyline},
		{"110", MarketUnknown}, // no sign, no vocabulary
		{"N/A", MarketUnknown},
	}
	for _, c := range cases {
		if got := classifyMarket("Lakers Celtics", c.odds); got != c.want {
			t.Fatalf("classifyMarket(odds=%q) = %s, want %s", c.odds, got, c.want)
		}
	}
}
