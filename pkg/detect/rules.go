package detect

import (
	"github.com/JosephJonathanFernandes/ScamNest/pkg/patterns"
)

// RuleScorer computes the rule-based signal: every pattern family
// contributes min(distinct_matches * per_match_weight, cap), and the
// family contributions are summed and clipped to [0, 1].
type RuleScorer struct {
	registry *patterns.Registry
}

// NewRuleScorer returns a scorer over the global pattern registry.
func NewRuleScorer() *RuleScorer {
	return &RuleScorer{registry: patterns.Get()}
}

// RuleResult is the rule scorer's output for one message.
type RuleResult struct {
	// Score is the clipped sum of family contributions.
	Score float64

	// FamilyScores maps each family that fired to its capped contribution.
	FamilyScores map[string]float64

	// Keywords is the deduplicated matched-substring evidence across
	// all families, in family evaluation order.
	Keywords []string
}

// Score runs every family against the (already normalized) text.
func (s *RuleScorer) Score(text string) RuleResult {
	res := RuleResult{FamilyScores: make(map[string]float64)}

	seen := make(map[string]struct{})
	total := 0.0
	for _, f := range s.registry.Families() {
		fs := s.registry.FamilyScore(text, f)
		if fs == 0 {
			continue
		}
		total += fs
		res.FamilyScores[string(f)] = fs
		for _, term := range s.registry.MatchedTerms(text, f) {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			res.Keywords = append(res.Keywords, term)
		}
	}

	res.Score = clip01(total)
	return res
}
