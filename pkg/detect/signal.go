// Package detect implements the multi-signal scoring pipeline: a rule
// scorer over the pattern registry, a contextual intent scorer, an ONNX
// text classifier, and the confidence-aware aggregator that folds them
// into a single risk verdict with a full explanation.
package detect

// RiskLevel is the final verdict for a message.
type RiskLevel string

const (
	RiskSafe       RiskLevel = "SAFE"
	RiskSuspicious RiskLevel = "SUSPICIOUS"
	RiskScam       RiskLevel = "SCAM"
)

// ConfidenceLevel bands the classifier's confidence; it selects the
// aggregation weight profile.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "HIGH"
	ConfidenceMedium ConfidenceLevel = "MEDIUM"
	ConfidenceLow    ConfidenceLevel = "LOW"
)

// EngagementStrategy tells the honeypot agent how hard to lean in.
type EngagementStrategy string

const (
	EngageMinimal    EngagementStrategy = "minimal_engagement"
	EngageProbing    EngagementStrategy = "probing_engagement"
	EngageCautious   EngagementStrategy = "cautious_engagement"
	EngageAggressive EngagementStrategy = "aggressive_engagement"
)

// Signal names used as keys in Explanation.Signals.
const (
	SignalRules  = "rules"
	SignalIntent = "intent"
	SignalML     = "ml"
)

// SignalResult is one layer's contribution to the combined score.
type SignalResult struct {
	// Score is the layer's raw score in [0, 1].
	Score float64 `json:"score"`

	// Weight is the aggregation weight chosen for this layer given the
	// classifier confidence band.
	Weight float64 `json:"weight"`

	// WeightedContribution = Score * Weight.
	WeightedContribution float64 `json:"weighted_contribution"`

	// Evidence lists the matched keywords or labels backing the score.
	Evidence []string `json:"evidence,omitempty"`

	// Details carries layer-specific extras (category components,
	// pattern counts, model label).
	Details map[string]interface{} `json:"details,omitempty"`
}

// Explanation is the auditable breakdown attached to every verdict.
type Explanation struct {
	Signals         map[string]SignalResult `json:"signals"`
	ConfidenceLevel ConfidenceLevel         `json:"confidence_level"`
	DecisionLogic   string                  `json:"decision_logic"`
}

// Result is the aggregator's full output for a single message.
type Result struct {
	RiskLevel   RiskLevel    `json:"risk_level"`
	Score       float64      `json:"score"`
	Explanation *Explanation `json:"explanation"`
}

// clip01 bounds a score to [0, 1].
func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
