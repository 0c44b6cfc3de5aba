package pickscan

import (
	"regexp"
	"strings"
)

// standaloneML matches "ml" as its own token ("ML -110"), not inside words.
var standaloneML = regexp.MustCompile(`(?i)\bml\b`)

// marketRule is one classification step. Rules run in order and the first
// match wins: explicit vocabulary outranks odds-shape inference, because a
// spread of -3 is shaped exactly like a moneyline price.
type marketRule struct {
	market MarketType
	match  func(ctx, odds string) bool
}

var marketRules = []marketRule{
	{MarketMoneyline, func(ctx, _ string) bool {
		return strings.Contains(ctx, "moneyline") || standaloneML.MatchString(ctx)
	}},
	{MarketSpread, func(ctx, _ string) bool {
		return strings.Contains(ctx, "spread") || strings.Contains(ctx, "point")
	}},
	{MarketTotal, func(ctx, _ string) bool {
		return strings.Contains(ctx, "total") || strings.Contains(ctx, "over") ||
			strings.Contains(ctx, "under") || strings.Contains(ctx, "o/u")
	}},
	// Shape fallback: fractional signed lines (+3.5) are spreads, integral
	// signed prices (+150, -110) are moneylines.
	{MarketSpread, func(_, odds string) bool {
		return strings.Contains(odds, ".") && hasSign(odds)
	}},
	{MarketMoneyline, func(_, odds string) bool {
		return hasSign(odds)
	}},
}

// classifyMarket decides the wager category from the joined context and the
// (possibly raw) odds token.
func classifyMarket(context, odds string) MarketType {
	ctx := strings.ToLower(context)
	for _, r := range marketRules {
		if r.match(ctx, odds) {
			return r.market
		}
	}
	return MarketUnknown
}

func hasSign(s string) bool {
	return strings.ContainsAny(s, "+-")
}
