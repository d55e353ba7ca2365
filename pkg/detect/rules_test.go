package detect

import (
	"strings"
	"testing"
)

func TestRuleScorerUPIScam(t *testing.T) {
	scorer := NewRuleScorer()

	res := scorer.Score(Normalize("Share your UPI ID to reactivate your blocked account"))

	if res.Score <= 0.4 {
		t.Errorf("UPI scam message scored %.4f, want > 0.4", res.Score)
	}
	hasUPI := false
	for _, kw := range res.Keywords {
		if strings.Contains(strings.ToLower(kw), "upi") {
			hasUPI = true
			break
		}
	}
	if !hasUPI {
		t.Errorf("keywords %v should include a UPI term", res.Keywords)
	}
	if res.FamilyScores["upi_scam"] == 0 {
		t.Error("upi_scam family should contribute")
	}
}

func TestRuleScorerFinancialCoercion(t *testing.T) {
	scorer := NewRuleScorer()

	res := scorer.Score(Normalize("Your account will be suspended. Update KYC immediately to prevent blocking."))

	if res.Score <= 0.4 {
		t.Errorf("coercion message scored %.4f, want > 0.4", res.Score)
	}
	// Three coercion patterns fire; the family must be capped at 0.20.
	if fs := res.FamilyScores["financial_coercion"]; fs != 0.20 {
		t.Errorf("financial_coercion contribution = %.2f, want cap 0.20", fs)
	}
}

func TestRuleScorerLotteryScam(t *testing.T) {
	scorer := NewRuleScorer()

	res := scorer.Score(Normalize("Congratulations! You won lottery prize of Rs 50000. Send your bank details."))

	if res.Score <= 0.25 {
		t.Errorf("lottery message scored %.4f, want > 0.25", res.Score)
	}
	if len(res.Keywords) == 0 {
		t.Error("should extract keywords")
	}
	// Money family hits three patterns but is capped at 0.10.
	if fs := res.FamilyScores["money"]; fs != 0.10 {
		t.Errorf("money contribution = %.2f, want cap 0.10", fs)
	}
}

func TestRuleScorerCleanText(t *testing.T) {
	scorer := NewRuleScorer()

	tests := []struct {
		name string
		text string
	}{
		{"greeting", "Hello, how can I help you with your query?"},
		{"scheduling", "Can we move the meeting to Friday afternoon?"},
		{"shipping", "Your order has shipped and arrives next week."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := scorer.Score(Normalize(tt.text))
			if res.Score >= 0.35 {
				t.Errorf("clean text scored %.4f, want < 0.35", res.Score)
			}
		})
	}
}

func TestNormalizeFoldsFullWidth(t *testing.T) {
	// Scammers use full-width characters to slip past keyword filters;
	// NFKC folds them back to ASCII.
	got := Normalize("ＵＲＧＥＮＴ: share your ＯＴＰ")
	if !strings.Contains(got, "urgent") || !strings.Contains(got, "otp") {
		t.Errorf("Normalize = %q, want folded lowercase ascii", got)
	}
}

func BenchmarkRuleScorer(b *testing.B) {
	scorer := NewRuleScorer()
	text := Normalize("URGENT: Your SBI account will be blocked today. Share your UPI PIN immediately to avoid suspension")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		scorer.Score(text)
	}
}
