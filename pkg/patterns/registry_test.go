package patterns

import (
	"strings"
	"testing"
)

func TestRegistrySingleton(t *testing.T) {
	r1 := Get()
	r2 := Get()
	if r1 != r2 {
		t.Error("Get() should return the same registry instance")
	}
}

func TestAllFamiliesConfigured(t *testing.T) {
	r := Get()
	for _, f := range r.Families() {
		cfg := r.Config(f)
		if cfg.PerMatchWeight <= 0 {
			t.Errorf("family %s has no per-match weight", f)
		}
		if cfg.Cap < cfg.PerMatchWeight {
			t.Errorf("family %s cap %.2f below per-match weight %.2f", f, cfg.Cap, cfg.PerMatchWeight)
		}
		if r.FamilyCount(f) == 0 {
			t.Errorf("family %s has no patterns registered", f)
		}
	}
	t.Logf("✓ %d patterns across %d families", r.TotalPatterns(), len(r.Families()))
}

func TestFamilyWeights(t *testing.T) {
	r := Get()

	tests := []struct {
		family Family
		weight float64
		cap    float64
	}{
		{FamilyUrgency, 0.05, 0.15},
		{FamilyThreat, 0.08, 0.25},
		{FamilyRequest, 0.05, 0.15},
		{FamilySensitiveData, 0.08, 0.25},
		{FamilyImpersonation, 0.05, 0.10},
		{FamilyMoney, 0.05, 0.10},
		{FamilyUPIScam, 0.10, 0.20},
		{FamilyFinancialCoercion, 0.10, 0.20},
	}

	for _, tt := range tests {
		t.Run(string(tt.family), func(t *testing.T) {
			cfg := r.Config(tt.family)
			if cfg.PerMatchWeight != tt.weight {
				t.Errorf("weight = %.2f, want %.2f", cfg.PerMatchWeight, tt.weight)
			}
			if cfg.Cap != tt.cap {
				t.Errorf("cap = %.2f, want %.2f", cfg.Cap, tt.cap)
			}
		})
	}
}

func TestCountMatches(t *testing.T) {
	r := Get()

	tests := []struct {
		name   string
		text   string
		family Family
		want   int
	}{
		{
			name:   "urgency hits",
			text:   "urgent! act now, offer expires today",
			family: FamilyUrgency,
			want:   5, // urgent, now, act_now, today, expires_soon
		},
		{
			name:   "repeated pattern counts once",
			text:   "urgent urgent urgent",
			family: FamilyUrgency,
			want:   1,
		},
		{
			name:   "case insensitive",
			text:   "Your account is BLOCKED",
			family: FamilyThreat,
			want:   1,
		},
		{
			name:   "upi scam composite",
			text:   "share your upi id to reactivate, your upi is blocked",
			family: FamilyUPIScam,
			want:   3, // share_upi, upi_blocked, verify_upi
		},
		{
			name:   "clean text",
			text:   "see you at lunch tomorrow",
			family: FamilySensitiveData,
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.CountMatches(strings.ToLower(tt.text), tt.family)
			if got != tt.want {
				t.Errorf("CountMatches(%q, %s) = %d, want %d", tt.text, tt.family, got, tt.want)
			}
		})
	}
}

func TestFamilyScoreCapped(t *testing.T) {
	r := Get()

	// Enough distinct threat hits to blow past the 0.25 cap (4 * 0.08 = 0.32).
	text := "account blocked, card suspended, legal action, police complaint registered"
	score := r.FamilyScore(text, FamilyThreat)
	if score != 0.25 {
		t.Errorf("FamilyScore = %.2f, want cap 0.25", score)
	}

	// Single hit stays below the cap.
	score = r.FamilyScore("your account is blocked", FamilyThreat)
	if score != 0.08 {
		t.Errorf("FamilyScore = %.2f, want 0.08", score)
	}

	// No hits, no score.
	if s := r.FamilyScore("hello there", FamilyThreat); s != 0 {
		t.Errorf("FamilyScore on clean text = %.2f, want 0", s)
	}
}

func TestMatchedTerms(t *testing.T) {
	r := Get()

	terms := r.MatchedTerms("verify your otp and share your pin", FamilySensitiveData)
	wantTerms := map[string]bool{"otp": true, "pin": true}
	for _, term := range terms {
		if !wantTerms[term] {
			t.Errorf("unexpected matched term %q", term)
		}
		delete(wantTerms, term)
	}
	for missing := range wantTerms {
		t.Errorf("missing matched term %q", missing)
	}

	// Duplicates collapse.
	terms = r.MatchedTerms("otp otp otp", FamilySensitiveData)
	if len(terms) != 1 {
		t.Errorf("got %d terms for repeated keyword, want 1", len(terms))
	}
}

func BenchmarkCountMatchesAllFamilies(b *testing.B) {
	r := Get()
	text := "urgent: your sbi account will be blocked today. share your upi pin immediately to avoid suspension"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, f := range r.Families() {
			r.CountMatches(text, f)
		}
	}
}

func BenchmarkFamilyScore(b *testing.B) {
	r := Get()
	text := "verify your kyc now or your account will be suspended"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.FamilyScore(text, FamilyFinancialCoercion)
	}
}
