package detect

import (
	"testing"
)

func TestIntentScorerUPIScam(t *testing.T) {
	scorer := NewIntentScorer()

	res := scorer.Score(Normalize("Your UPI is blocked. Share your UPI ID immediately to reactivate."))

	if res.Score <= 0.5 {
		t.Errorf("UPI scam intent score = %.4f, want > 0.5", res.Score)
	}
	if res.PatternCounts[IntentUPIScam] == 0 {
		t.Error("should detect UPI scam pattern")
	}
	if res.PatternCounts[IntentFinancial] == 0 {
		t.Error("should detect financial entity")
	}
	if res.PatternCounts[IntentCoercion] == 0 {
		t.Error("should detect coercion")
	}
	t.Logf("✓ UPI scam intent: score=%.4f components=%v", res.Score, res.Components)
}

func TestIntentScorerFinancialCoercion(t *testing.T) {
	scorer := NewIntentScorer()

	res := scorer.Score(Normalize("Your bank account will be suspended today. Update KYC now to avoid blocking."))

	if res.Score <= 0.6 {
		t.Errorf("financial threat intent score = %.4f, want > 0.6", res.Score)
	}
	if res.PatternCounts[IntentCoercion] == 0 {
		t.Error("should detect coercion")
	}
	if res.PatternCounts[IntentUrgency] == 0 {
		t.Error("should detect urgency")
	}
}

func TestIntentScorerSafeMessage(t *testing.T) {
	scorer := NewIntentScorer()

	res := scorer.Score(Normalize("Hello, how are you today? I hope you're doing well."))

	if res.Score >= 0.3 {
		t.Errorf("safe message intent score = %.4f, want < 0.3", res.Score)
	}
	if res.Components["combination_bonus"] != 0 {
		t.Error("single category should not earn a combination bonus")
	}
}

func TestIntentScorerCombinationBonus(t *testing.T) {
	scorer := NewIntentScorer()

	single := scorer.Score(Normalize("Your UPI ID is required."))
	combined := scorer.Score(Normalize("Your UPI ID is blocked. Share it immediately to reactivate your account."))

	if combined.Score <= single.Score {
		t.Errorf("combined patterns should raise risk: single=%.4f combined=%.4f", single.Score, combined.Score)
	}
	if combined.Components["combination_bonus"] <= 0 {
		t.Error("co-firing categories should earn a combination bonus")
	}
	// Bonus is 0.15 per extra category, capped at 0.30.
	if bonus := combined.Components["combination_bonus"]; bonus > 0.30 {
		t.Errorf("combination bonus = %.2f, exceeds cap 0.30", bonus)
	}
}

func TestIntentScorerComponentCaps(t *testing.T) {
	scorer := NewIntentScorer()

	// Many coercion patterns at once must still cap at 0.40.
	res := scorer.Score(Normalize("account blocked suspended deactivated frozen legal action police arrest permanent last warning"))

	if c := res.Components[IntentCoercion]; c != 0.40 {
		t.Errorf("coercion component = %.2f, want cap 0.40", c)
	}
}

func BenchmarkIntentScorer(b *testing.B) {
	scorer := NewIntentScorer()
	text := Normalize("Your Paytm UPI is deactivated. Share your UPI ID to reactivate immediately.")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		scorer.Score(text)
	}
}
