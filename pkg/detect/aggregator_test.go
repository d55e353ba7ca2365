package detect

import (
	"context"
	"testing"

	"github.com/JosephJonathanFernandes/ScamNest/pkg/config"
)

func newTestAggregator(classifier Classifier) *Aggregator {
	return NewAggregator(config.DefaultDetectionConfig(), classifier)
}

func TestHighConfidenceMLTrusted(t *testing.T) {
	agg := newTestAggregator(nil)

	external := &Prediction{Label: "possible_scam", Confidence: 0.85}
	res := agg.AnalyzeMessage(context.Background(), "Your account is blocked. Send OTP to verify.", external)

	if res.RiskLevel != RiskScam && res.RiskLevel != RiskSuspicious {
		t.Errorf("high-confidence ML should detect scam, got %s", res.RiskLevel)
	}
	if res.Explanation.ConfidenceLevel != ConfidenceHigh {
		t.Errorf("confidence level = %s, want HIGH", res.Explanation.ConfidenceLevel)
	}
	if w := res.Explanation.Signals[SignalML].Weight; w < 0.8 {
		t.Errorf("ML weight = %.2f, want >= 0.8 for high confidence", w)
	}
	t.Logf("✓ High-confidence ML: risk=%s score=%.4f", res.RiskLevel, res.Score)
}

func TestLowConfidenceMLFallback(t *testing.T) {
	agg := newTestAggregator(nil)

	// An uncertain "not_scam" must be overridden by rules and intent.
	external := &Prediction{Label: "not_scam", Confidence: 0.45}
	res := agg.AnalyzeMessage(context.Background(), "Urgent: Update your UPI PIN now or account will be blocked!", external)

	if res.RiskLevel != RiskSuspicious && res.RiskLevel != RiskScam {
		t.Errorf("low-confidence ML should be overridden, got %s", res.RiskLevel)
	}
	if res.Explanation.ConfidenceLevel != ConfidenceLow {
		t.Errorf("confidence level = %s, want LOW (0.45 belongs to the LOW band)", res.Explanation.ConfidenceLevel)
	}
	if w := res.Explanation.Signals[SignalRules].Weight; w < 0.3 {
		t.Errorf("rules weight = %.2f, want >= 0.3 for low confidence", w)
	}
	if w := res.Explanation.Signals[SignalIntent].Weight; w < 0.25 {
		t.Errorf("intent weight = %.2f, want >= 0.25 for low confidence", w)
	}
}

func TestDegradedClassifier(t *testing.T) {
	// No classifier at all: ML signal pinned at zero, rules + intent
	// must still catch an obvious UPI scam.
	agg := newTestAggregator(nil)

	res := agg.AnalyzeMessage(context.Background(),
		"Dear customer, your Paytm UPI is deactivated. Share your UPI ID to reactivate immediately.", nil)

	if res.RiskLevel != RiskSuspicious && res.RiskLevel != RiskScam {
		t.Errorf("should detect UPI scam without ML, got %s", res.RiskLevel)
	}
	if ml := res.Explanation.Signals[SignalML]; ml.Score != 0 {
		t.Errorf("degraded ML score = %.2f, want 0", ml.Score)
	}

	counts, ok := res.Explanation.Signals[SignalIntent].Details["pattern_counts"].(map[string]int)
	if !ok || counts[IntentUPIScam] == 0 {
		t.Error("intent signal should report UPI scam pattern counts")
	}
}

func TestStubClassifierUsedWhenReady(t *testing.T) {
	stub := &StubClassifier{
		Prediction: Prediction{Label: "possible_scam", Confidence: 0.9},
		Available:  true,
	}
	agg := newTestAggregator(stub)

	res := agg.AnalyzeMessage(context.Background(), "Your account is blocked. Send OTP now.", nil)

	if res.Explanation.ConfidenceLevel != ConfidenceHigh {
		t.Errorf("confidence level = %s, want HIGH from local classifier", res.Explanation.ConfidenceLevel)
	}
	if res.RiskLevel != RiskScam {
		t.Errorf("risk = %s, want SCAM", res.RiskLevel)
	}
}

func TestSafeMessageClassification(t *testing.T) {
	agg := newTestAggregator(nil)

	res := agg.AnalyzeMessage(context.Background(), "Hello, how can I help you with your query?", nil)

	if res.RiskLevel != RiskSafe {
		t.Errorf("safe message should be SAFE, got %s", res.RiskLevel)
	}
	if res.Score >= 0.35 {
		t.Errorf("safe message score = %.4f, want < 0.35", res.Score)
	}
}

func TestRiskThresholdOrdering(t *testing.T) {
	agg := newTestAggregator(nil)
	ctx := context.Background()

	moderate := agg.AnalyzeMessage(ctx, "Your account needs verification. Click here.", nil)
	high := agg.AnalyzeMessage(ctx,
		"URGENT: Your bank account is blocked! Send OTP and UPI PIN immediately to avoid legal action!", nil)

	if high.Score <= moderate.Score {
		t.Errorf("high-risk message should score higher: moderate=%.4f high=%.4f", moderate.Score, high.Score)
	}
	if high.RiskLevel != RiskScam {
		t.Errorf("high-risk message should be SCAM, got %s (score %.4f)", high.RiskLevel, high.Score)
	}
}

func TestCompleteWorkflow(t *testing.T) {
	agg := newTestAggregator(nil)

	res := agg.AnalyzeMessage(context.Background(),
		"URGENT: Your GPay UPI is blocked due to KYC pending. "+
			"Share your UPI ID and OTP immediately to reactivate within 24 hours. "+
			"Failure will result in permanent account suspension.", nil)

	if res.RiskLevel != RiskScam {
		t.Errorf("should detect as SCAM, got %s", res.RiskLevel)
	}
	if res.Score <= 0.6 {
		t.Errorf("score = %.4f, want > 0.6", res.Score)
	}

	for _, signal := range []string{SignalML, SignalRules, SignalIntent} {
		if _, ok := res.Explanation.Signals[signal]; !ok {
			t.Errorf("explanation missing %s signal", signal)
		}
	}
	if intent := res.Explanation.Signals[SignalIntent]; intent.Score <= 0.5 {
		t.Errorf("intent score = %.4f, want > 0.5", intent.Score)
	}
	if res.Explanation.DecisionLogic == "" {
		t.Error("decision logic should not be empty")
	}

	t.Logf("✓ Complete workflow: risk=%s score=%.4f", res.RiskLevel, res.Score)
	t.Logf("  Decision: %s", res.Explanation.DecisionLogic)
}

func TestEngagementDecisions(t *testing.T) {
	agg := newTestAggregator(nil)

	tests := []struct {
		level    RiskLevel
		score    float64
		engage   bool
		strategy EngagementStrategy
	}{
		{RiskSafe, 0.2, false, EngageMinimal},
		{RiskSuspicious, 0.4, true, EngageProbing},
		{RiskScam, 0.7, true, EngageCautious},
		{RiskScam, 0.9, true, EngageAggressive},
	}

	for _, tt := range tests {
		t.Run(string(tt.level)+"_"+string(tt.strategy), func(t *testing.T) {
			if got := agg.ShouldEngage(tt.level, tt.score); got != tt.engage {
				t.Errorf("ShouldEngage(%s, %.1f) = %v, want %v", tt.level, tt.score, got, tt.engage)
			}
			if got := agg.EngagementStrategy(tt.level, tt.score); got != tt.strategy {
				t.Errorf("EngagementStrategy(%s, %.1f) = %s, want %s", tt.level, tt.score, got, tt.strategy)
			}
		})
	}
}

func TestScamScoreConversion(t *testing.T) {
	tests := []struct {
		name string
		pred Prediction
		want float64
	}{
		{"scam label passes confidence through", Prediction{Label: "possible_scam", Confidence: 0.9}, 0.9},
		{"benign label complements confidence", Prediction{Label: "not_scam", Confidence: 0.9}, 0.1},
		{"uncertain benign", Prediction{Label: "not_scam", Confidence: 0.45}, 0.55},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScamScore(tt.pred)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("ScamScore = %.4f, want %.4f", got, tt.want)
			}
		})
	}
}
