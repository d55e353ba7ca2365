package detect

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/JosephJonathanFernandes/ScamNest/pkg/config"
)

// Aggregator combines the rule, intent, and ML signals into a single
// risk verdict. The weight profile is chosen by the classifier's
// confidence band: a confident model dominates, an uncertain or absent
// model hands control back to rules and intent.
type Aggregator struct {
	rules      *RuleScorer
	intent     *IntentScorer
	classifier Classifier
	semantic   *SemanticAdvisor
	cfg        config.DetectionConfig
}

// weightProfile is one row of the confidence-band weight table.
type weightProfile struct {
	ml, rules, intent float64
}

// Weight tables per confidence band. HIGH trusts the model; LOW leans
// on rules and intent. Rows sum to 1.
var bandWeights = map[ConfidenceLevel]weightProfile{
	ConfidenceHigh:   {ml: 0.80, rules: 0.12, intent: 0.08},
	ConfidenceMedium: {ml: 0.50, rules: 0.30, intent: 0.20},
	ConfidenceLow:    {ml: 0.20, rules: 0.45, intent: 0.35},
}

// AggregatorOption configures optional layers.
type AggregatorOption func(*Aggregator)

// WithSemanticAdvisor attaches the embedding-similarity advisory layer.
// Its verdict is recorded in the explanation but never weighted in.
func WithSemanticAdvisor(sa *SemanticAdvisor) AggregatorOption {
	return func(a *Aggregator) { a.semantic = sa }
}

// NewAggregator builds the aggregator. classifier may be nil: scoring
// then degrades to rules + intent with the ML signal pinned at zero.
func NewAggregator(cfg config.DetectionConfig, classifier Classifier, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		rules:      NewRuleScorer(),
		intent:     NewIntentScorer(),
		classifier: classifier,
		cfg:        cfg,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeMessage scores one message. external, when non-nil, is a
// caller-supplied classification that takes priority over the local
// model (e.g. an upstream ML service already scored this text).
func (a *Aggregator) AnalyzeMessage(ctx context.Context, text string, external *Prediction) Result {
	normalized := Normalize(text)

	ruleRes := a.rules.Score(normalized)
	intentRes := a.intent.Score(normalized)
	mlScore, confidence, mlDetails := a.mlSignal(ctx, normalized, external)

	level := a.confidenceBand(confidence)
	weights := bandWeights[level]

	combined := clip01(weights.ml*mlScore + weights.rules*ruleRes.Score + weights.intent*intentRes.Score)
	riskLevel := a.riskLevel(combined)

	signals := map[string]SignalResult{
		SignalML: {
			Score:                mlScore,
			Weight:               weights.ml,
			WeightedContribution: weights.ml * mlScore,
			Details:              mlDetails,
		},
		SignalRules: {
			Score:                ruleRes.Score,
			Weight:               weights.rules,
			WeightedContribution: weights.rules * ruleRes.Score,
			Evidence:             ruleRes.Keywords,
			Details:              map[string]interface{}{"family_scores": ruleRes.FamilyScores},
		},
		SignalIntent: {
			Score:                intentRes.Score,
			Weight:               weights.intent,
			WeightedContribution: weights.intent * intentRes.Score,
			Details: map[string]interface{}{
				"pattern_counts": intentRes.PatternCounts,
				"components":     intentRes.Components,
			},
		},
	}

	a.attachSemantic(ctx, normalized, signals)

	explanation := &Explanation{
		Signals:         signals,
		ConfidenceLevel: level,
		DecisionLogic:   a.decisionLogic(riskLevel, combined, level, signals, mlDetails),
	}

	return Result{RiskLevel: riskLevel, Score: combined, Explanation: explanation}
}

// mlSignal resolves the ML score: external prediction first, then the
// local classifier, else the degraded zero signal.
func (a *Aggregator) mlSignal(ctx context.Context, text string, external *Prediction) (float64, float64, map[string]interface{}) {
	if external != nil {
		return ScamScore(*external), external.Confidence, map[string]interface{}{
			"label":  external.Label,
			"source": "external",
		}
	}

	if a.classifier != nil && a.classifier.Ready() {
		pred, err := a.classifier.Classify(ctx, text)
		if err == nil {
			return ScamScore(pred), pred.Confidence, map[string]interface{}{
				"label":  pred.Label,
				"source": "local",
			}
		}
		log.Printf("[WARN] Classifier error, degrading to rules + intent: %v", err)
	}

	// Degraded: no model available. Zero score with zero confidence
	// pushes the band to LOW so rules and intent carry the verdict.
	return 0.0, 0.0, map[string]interface{}{"label": "unavailable", "source": "degraded"}
}

// confidenceBand maps classifier confidence onto the weight-profile band.
// The low boundary itself belongs to LOW.
func (a *Aggregator) confidenceBand(confidence float64) ConfidenceLevel {
	switch {
	case confidence >= a.cfg.HighConfidence:
		return ConfidenceHigh
	case confidence > a.cfg.LowConfidence:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// riskLevel maps the combined score onto the verdict.
func (a *Aggregator) riskLevel(score float64) RiskLevel {
	switch {
	case score >= a.cfg.ScamThreshold:
		return RiskScam
	case score >= a.cfg.SafeThreshold:
		return RiskSuspicious
	default:
		return RiskSafe
	}
}

// attachSemantic records the advisory similarity match in the signal map
// with zero weight.
func (a *Aggregator) attachSemantic(ctx context.Context, text string, signals map[string]SignalResult) {
	if a.semantic == nil || !a.semantic.Ready() {
		return
	}
	match, err := a.semantic.Match(ctx, text)
	if err != nil {
		log.Printf("[WARN] Semantic advisor error: %v", err)
		return
	}
	signals["semantic_advisory"] = SignalResult{
		Score: float64(match.Score),
		Details: map[string]interface{}{
			"category":     match.Category,
			"matched_text": match.MatchedText,
			"is_suspect":   match.IsSuspect,
		},
	}
}

// decisionLogic renders the human-readable audit trail for the verdict.
func (a *Aggregator) decisionLogic(level RiskLevel, score float64, band ConfidenceLevel, signals map[string]SignalResult, mlDetails map[string]interface{}) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Combined score %.4f => %s (safe < %.2f, scam >= %.2f). ",
		score, level, a.cfg.SafeThreshold, a.cfg.ScamThreshold)

	if mlDetails["source"] == "degraded" {
		b.WriteString("ML classifier unavailable, verdict driven by rules and intent. ")
	} else {
		fmt.Fprintf(&b, "ML confidence band %s (label=%v). ", band, mlDetails["label"])
	}

	// Dominant weighted signal, ties broken alphabetically for determinism.
	names := make([]string, 0, len(signals))
	for name := range signals {
		if name == "semantic_advisory" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	dominant, max := "", -1.0
	for _, name := range names {
		if c := signals[name].WeightedContribution; c > max {
			dominant, max = name, c
		}
	}
	fmt.Fprintf(&b, "Strongest signal: %s (%.4f weighted).", dominant, max)

	return b.String()
}

// ShouldEngage reports whether the honeypot agent should keep the
// conversation going.
func (a *Aggregator) ShouldEngage(level RiskLevel, score float64) bool {
	return level != RiskSafe
}

// EngagementStrategy picks how the agent engages: probing while merely
// suspicious, cautious for ordinary scams, aggressive intelligence
// extraction once the score is conclusive.
func (a *Aggregator) EngagementStrategy(level RiskLevel, score float64) EngagementStrategy {
	switch level {
	case RiskSuspicious:
		return EngageProbing
	case RiskScam:
		if score >= a.cfg.AggressiveThreshold {
			return EngageAggressive
		}
		return EngageCautious
	default:
		return EngageMinimal
	}
}
