package session

import (
	"context"
	"strings"

	"github.com/JosephJonathanFernandes/ScamNest/pkg/config"
	"github.com/JosephJonathanFernandes/ScamNest/pkg/detect"
)

// Analyzer folds per-message risk scores into the session-level verdict.
// The session score is the mean of the counterparty messages' combined
// scores plus a keyword-diversity bonus: varied indicators across turns
// are stronger evidence than one keyword repeated.
type Analyzer struct {
	aggregator *detect.Aggregator
	cfg        config.DetectionConfig
}

// NewAnalyzer builds the session analyzer over the message aggregator.
func NewAnalyzer(aggregator *detect.Aggregator, cfg config.DetectionConfig) *Analyzer {
	return &Analyzer{aggregator: aggregator, cfg: cfg}
}

// Verdict is the session-level analysis result.
type Verdict struct {
	Score     float64
	Suspected bool
	Detected  bool
	Keywords  []string
}

// AnalyzeSession scores every counterparty message and derives the
// session verdict. Detection requires the minimum counterparty message
// count so a single aggressive opener cannot confirm a scam alone.
func (a *Analyzer) AnalyzeSession(ctx context.Context, state *State) Verdict {
	total := 0.0
	count := 0
	seen := make(map[string]struct{})
	var keywords []string

	for _, msg := range state.Messages {
		if !strings.EqualFold(msg.Sender, SenderScammer) {
			continue
		}
		res := a.aggregator.AnalyzeMessage(ctx, msg.Text, nil)
		total += res.Score
		count++

		for _, kw := range res.Explanation.Signals[detect.SignalRules].Evidence {
			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}
			keywords = append(keywords, kw)
		}
	}

	avg := 0.0
	if count > 0 {
		avg = total / float64(count)
	}

	bonus := float64(len(seen)) * a.cfg.DiversityBonusPerKeyword
	if bonus > a.cfg.DiversityBonusCap {
		bonus = a.cfg.DiversityBonusCap
	}
	score := avg + bonus
	if score > 1 {
		score = 1
	}

	return Verdict{
		Score:     score,
		Suspected: score >= a.cfg.SessionSuspectThreshold,
		Detected:  score >= a.cfg.SessionDetectThreshold && count >= a.cfg.MinScammerMessages,
		Keywords:  keywords,
	}
}

// scamTypeRules maps keyword evidence to the scam label, in precedence
// order: the first category with any hit wins.
var scamTypeRules = []struct {
	label    string
	keywords []string
}{
	{"Banking Fraud", []string{"bank", "account", "blocked", "suspended"}},
	{"Credential Phishing", []string{"otp", "pin", "password", "cvv"}},
	{"Lottery/Prize Scam", []string{"prize", "lottery", "winner", "reward"}},
	{"UPI Fraud", []string{"upi", "paytm", "gpay", "phonepe"}},
	{"KYC Fraud", []string{"kyc", "aadhaar", "pan"}},
}

// ScamType labels the scam from accumulated keyword evidence.
func ScamType(keywords []string) string {
	seen := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		seen[strings.ToLower(kw)] = struct{}{}
	}

	for _, rule := range scamTypeRules {
		for _, kw := range rule.keywords {
			if _, ok := seen[kw]; ok {
				return rule.label
			}
		}
	}
	return "General Scam"
}
