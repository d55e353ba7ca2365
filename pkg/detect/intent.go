package detect

import (
	"regexp"
)

// IntentScorer captures the contextual intent of a message rather than
// raw keyword density. It scores four behavioral categories and adds a
// combination bonus when several categories co-fire, because a message
// that is simultaneously urgent, coercive, and payment-focused is far
// more dangerous than the sum of its keywords.
type IntentScorer struct {
	categories []intentCategory
}

// intentCategory is one behavioral axis with its scoring parameters.
type intentCategory struct {
	name     string
	perMatch float64
	cap      float64
	patterns []*regexp.Regexp
}

// Intent category names exposed in pattern_counts.
const (
	IntentUPIScam   = "upi_scam"
	IntentCoercion  = "coercion"
	IntentUrgency   = "urgency"
	IntentFinancial = "financial"
)

// combination bonus: each extra co-firing category adds 0.15, capped at 0.30
const (
	combinationBonusStep = 0.15
	combinationBonusCap  = 0.30
)

func compileAll(exprs ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		compiled = append(compiled, regexp.MustCompile(`(?i)`+e))
	}
	return compiled
}

// NewIntentScorer builds the scorer with its category tables.
// Category order encodes severity: upi_scam carries the highest weight
// because a single composite UPI phrase is near-conclusive.
func NewIntentScorer() *IntentScorer {
	return &IntentScorer{
		categories: []intentCategory{
			{
				name:     IntentUPIScam,
				perMatch: 0.25,
				cap:      0.50,
				patterns: compileAll(
					`(?:share|send|provide|give).*upi`,
					`upi.*(?:blocked|suspended|deactivated|frozen|invalid)`,
					`(?:verify|update|confirm|reactivate).*upi`,
					`upi.*(?:expire|expiring|mandate)`,
					`(?:collect|accept).*(?:request|payment.*request)`,
				),
			},
			{
				name:     IntentCoercion,
				perMatch: 0.20,
				cap:      0.40,
				patterns: compileAll(
					`\bblock(?:ed|ing)?\b`,
					`\bsuspend(?:ed)?\b`,
					`\bdeactivat(?:e|ed)\b`,
					`\bfreez(?:e|ing)\b|\bfrozen\b`,
					`\blegal\s+action\b`,
					`\bpolice\b|\barrest(?:ed)?\b`,
					`(?:prevent|avoid|stop).*(?:blocking|suspension|closure)`,
					`kyc.*(?:pending|incomplete|failed)`,
					`update.*kyc.*(?:immediately|today|now)`,
					`\bpermanent(?:ly)?\b`,
					`last.*(?:chance|warning)`,
				),
			},
			{
				name:     IntentUrgency,
				perMatch: 0.15,
				cap:      0.30,
				patterns: compileAll(
					`\burgent(?:ly)?\b`,
					`\bimmediately\b`,
					`\bnow\b`,
					`\btoday\b`,
					`\basap\b`,
					`\bhurry\b`,
					`\bwithin\s+\d+\s*(?:min|mins|minutes|hours|hrs)\b`,
					`\bexpir(?:e|es|ing|ed)\b`,
					`\bdeadline\b`,
				),
			},
			{
				name:     IntentFinancial,
				perMatch: 0.10,
				cap:      0.25,
				patterns: compileAll(
					`\bupi\b`,
					`\bbank(?:ing)?\b`,
					`\baccount\b`,
					`\bcard\b`,
					`\bkyc\b`,
					`\botp\b`,
					`\bpaytm\b|\bgpay\b|\bphonepe\b`,
					`\bwallet\b`,
					`\batm\b|\bifsc\b`,
					`\brefund\b|\bcashback\b`,
				),
			},
		},
	}
}

// IntentResult is the intent scorer's output for one message.
type IntentResult struct {
	// Score is min(strongest category component + combination bonus, 1).
	Score float64

	// PatternCounts maps category name to its distinct pattern hits.
	PatternCounts map[string]int

	// Components maps category name to its capped contribution, plus
	// the "combination_bonus" entry.
	Components map[string]float64
}

// Score evaluates all categories against the (already normalized) text.
func (s *IntentScorer) Score(text string) IntentResult {
	res := IntentResult{
		PatternCounts: make(map[string]int, len(s.categories)),
		Components:    make(map[string]float64, len(s.categories)+1),
	}

	active := 0
	maxComponent := 0.0
	for _, cat := range s.categories {
		count := 0
		for _, p := range cat.patterns {
			if p.MatchString(text) {
				count++
			}
		}
		res.PatternCounts[cat.name] = count
		if count == 0 {
			res.Components[cat.name] = 0
			continue
		}

		component := float64(count) * cat.perMatch
		if component > cat.cap {
			component = cat.cap
		}
		res.Components[cat.name] = component

		active++
		if component > maxComponent {
			maxComponent = component
		}
	}

	bonus := 0.0
	if active >= 2 {
		bonus = combinationBonusStep * float64(active-1)
		if bonus > combinationBonusCap {
			bonus = combinationBonusCap
		}
	}
	res.Components["combination_bonus"] = bonus
	res.Score = clip01(maxComponent + bonus)
	return res
}
