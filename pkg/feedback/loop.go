// Package feedback collects detection decisions and ground-truth labels
// for continuous learning: every verdict is logged with its full signal
// breakdown, analyst feedback is matched back to the decision it grades,
// and misclassified samples can be exported for classifier retraining.
package feedback

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/JosephJonathanFernandes/ScamNest/pkg/detect"
)

const (
	decisionFlushSize = 100
	feedbackFlushSize = 50
)

// DecisionRecord captures one verdict with its full signal context.
type DecisionRecord struct {
	Timestamp        string   `json:"timestamp"`
	SessionID        string   `json:"session_id"`
	MessageText      string   `json:"message_text"`
	RiskLevel        string   `json:"risk_level"`
	AggregatedScore  float64  `json:"aggregated_score"`
	MLConfidence     string   `json:"ml_confidence_level"`
	MLScore          float64  `json:"ml_score"`
	RuleScore        float64  `json:"rule_score"`
	IntentScore      float64  `json:"intent_score"`
	MLWeight         float64  `json:"ml_weight"`
	RuleKeywords     []string `json:"rule_keywords"`
	IntentComponents any      `json:"intent_components,omitempty"`
	DecisionLogic    string   `json:"decision_logic"`
}

// FeedbackRecord pairs a decision with its ground-truth label.
type FeedbackRecord struct {
	Timestamp        string          `json:"timestamp"`
	SessionID        string          `json:"session_id"`
	PredictedLabel   string          `json:"predicted_label"`
	PredictedScore   float64         `json:"predicted_score"`
	GroundTruthLabel string          `json:"ground_truth_label"`
	FeedbackSource   string          `json:"feedback_source"`
	Notes            string          `json:"notes,omitempty"`
	MLConfidence     string          `json:"ml_confidence_level"`
	WasCorrect       bool            `json:"was_correct"`
	OriginalDecision *DecisionRecord `json:"original_decision"`
}

// TrainingSample is one row of the retraining export.
type TrainingSample struct {
	Text           string  `json:"text"`
	Label          string  `json:"label"`
	PredictedLabel string  `json:"predicted_label"`
	MLConfidence   string  `json:"ml_confidence"`
	MLScore        float64 `json:"ml_score"`
	RuleScore      float64 `json:"rule_score"`
	IntentScore    float64 `json:"intent_score"`
	WasError       bool    `json:"was_error"`
}

// Sink receives flushed records for durable storage beyond the JSONL
// files (e.g. Postgres).
type Sink interface {
	StoreDecision(rec DecisionRecord) error
	StoreFeedback(rec FeedbackRecord) error
	Close() error
}

// Loop buffers decisions and feedback in memory and flushes them to
// timestamped JSONL files in the feedback directory.
type Loop struct {
	mu       sync.Mutex
	dir      string
	sink     Sink
	decision []DecisionRecord
	feedback []FeedbackRecord
}

// LoopOption is a functional option for configuring the Loop.
type LoopOption func(*Loop)

// WithSink attaches a durable sink alongside the JSONL files.
func WithSink(s Sink) LoopOption {
	return func(l *Loop) {
		l.sink = s
	}
}

// NewLoop creates the feedback loop, ensuring the storage directory
// exists.
func NewLoop(dir string, opts ...LoopOption) (*Loop, error) {
	if dir == "" {
		dir = "feedback_data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create feedback dir: %w", err)
	}

	l := &Loop{dir: dir}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// LogDecision records a verdict with its full signal breakdown.
func (l *Loop) LogDecision(sessionID, messageText string, res detect.Result) {
	rec := DecisionRecord{
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		SessionID:       sessionID,
		MessageText:     messageText,
		RiskLevel:       string(res.RiskLevel),
		AggregatedScore: res.Score,
	}

	if exp := res.Explanation; exp != nil {
		rec.MLConfidence = string(exp.ConfidenceLevel)
		rec.DecisionLogic = exp.DecisionLogic
		if sig, ok := exp.Signals[detect.SignalML]; ok {
			rec.MLScore = sig.Score
			rec.MLWeight = sig.Weight
		}
		if sig, ok := exp.Signals[detect.SignalRules]; ok {
			rec.RuleScore = sig.Score
			rec.RuleKeywords = sig.Evidence
		}
		if sig, ok := exp.Signals[detect.SignalIntent]; ok {
			rec.IntentScore = sig.Score
			if comp, ok := sig.Details["components"]; ok {
				rec.IntentComponents = comp
			}
		}
	}

	l.mu.Lock()
	l.decision = append(l.decision, rec)
	flush := len(l.decision) >= decisionFlushSize
	l.mu.Unlock()

	if l.sink != nil {
		if err := l.sink.StoreDecision(rec); err != nil {
			log.Printf("[WARN] Feedback sink store failed: %v", err)
		}
	}
	if flush {
		if err := l.FlushDecisions(); err != nil {
			log.Printf("[WARN] Decision flush failed: %v", err)
		}
	}
}

// AddFeedback matches a ground-truth label to the most recent decision
// for the session and classifies the error when the verdict was wrong.
// Returns the recorded feedback, or an error when no decision exists.
func (l *Loop) AddFeedback(sessionID, groundTruth, source, notes string) (*FeedbackRecord, error) {
	l.mu.Lock()
	var decision *DecisionRecord
	for i := len(l.decision) - 1; i >= 0; i-- {
		if l.decision[i].SessionID == sessionID {
			d := l.decision[i]
			decision = &d
			break
		}
	}
	l.mu.Unlock()

	if decision == nil {
		return nil, fmt.Errorf("no decision logged for session %s", sessionID)
	}

	rec := FeedbackRecord{
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
		SessionID:        sessionID,
		PredictedLabel:   decision.RiskLevel,
		PredictedScore:   decision.AggregatedScore,
		GroundTruthLabel: groundTruth,
		FeedbackSource:   source,
		Notes:            notes,
		MLConfidence:     decision.MLConfidence,
		WasCorrect:       decision.RiskLevel == groundTruth,
		OriginalDecision: decision,
	}

	if !rec.WasCorrect {
		log.Printf("[INFO] Feedback: session=%s error_type=%s predicted=%s actual=%s",
			sessionID, rec.ErrorType(), decision.RiskLevel, groundTruth)
	}

	l.mu.Lock()
	l.feedback = append(l.feedback, rec)
	flush := len(l.feedback) >= feedbackFlushSize
	l.mu.Unlock()

	if l.sink != nil {
		if err := l.sink.StoreFeedback(rec); err != nil {
			log.Printf("[WARN] Feedback sink store failed: %v", err)
		}
	}
	if flush {
		if err := l.FlushFeedback(); err != nil {
			log.Printf("[WARN] Feedback flush failed: %v", err)
		}
	}
	return &rec, nil
}

// ErrorType classifies a wrong verdict.
func (r FeedbackRecord) ErrorType() string {
	if r.WasCorrect {
		return ""
	}
	switch {
	case r.GroundTruthLabel == string(detect.RiskScam) && r.PredictedLabel != string(detect.RiskScam):
		return "false_negative"
	case r.GroundTruthLabel != string(detect.RiskScam) && r.PredictedLabel == string(detect.RiskScam):
		return "false_positive"
	default:
		return "misclassification"
	}
}

// FlushDecisions writes buffered decisions to a timestamped JSONL file.
func (l *Loop) FlushDecisions() error {
	l.mu.Lock()
	batch := l.decision
	l.decision = nil
	l.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	return l.writeJSONL("decisions", batch)
}

// FlushFeedback writes buffered feedback to a timestamped JSONL file.
func (l *Loop) FlushFeedback() error {
	l.mu.Lock()
	batch := l.feedback
	l.feedback = nil
	l.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}
	return l.writeJSONL("feedback", batch)
}

func (l *Loop) writeJSONL(prefix string, batch any) error {
	name := fmt.Sprintf("%s_%s.jsonl", prefix, time.Now().UTC().Format("20060102_150405.000000"))
	path := filepath.Join(l.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	switch records := batch.(type) {
	case []DecisionRecord:
		for _, rec := range records {
			if err := enc.Encode(rec); err != nil {
				return fmt.Errorf("encode record: %w", err)
			}
		}
		log.Printf("✓ Flushed %d decisions to %s", len(records), path)
	case []FeedbackRecord:
		for _, rec := range records {
			if err := enc.Encode(rec); err != nil {
				return fmt.Errorf("encode record: %w", err)
			}
		}
		log.Printf("✓ Flushed %d feedback items to %s", len(records), path)
	}
	return nil
}

// RetrainingData exports buffered feedback as training samples.
// Correct predictions are skipped unless includeCorrect is set.
func (l *Loop) RetrainingData(includeCorrect bool, minScore float64) []TrainingSample {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []TrainingSample
	for _, fb := range l.feedback {
		if !includeCorrect && fb.WasCorrect {
			continue
		}
		if fb.PredictedScore < minScore {
			continue
		}
		out = append(out, TrainingSample{
			Text:           fb.OriginalDecision.MessageText,
			Label:          fb.GroundTruthLabel,
			PredictedLabel: fb.PredictedLabel,
			MLConfidence:   fb.MLConfidence,
			MLScore:        fb.OriginalDecision.MLScore,
			RuleScore:      fb.OriginalDecision.RuleScore,
			IntentScore:    fb.OriginalDecision.IntentScore,
			WasError:       !fb.WasCorrect,
		})
	}
	return out
}

// Stats summarizes the feedback loop for the stats endpoint.
func (l *Loop) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := Stats{
		DecisionsBuffered: len(l.decision),
		FeedbackReceived:  len(l.feedback),
		FeedbackDir:       l.dir,
	}

	correct := 0
	for _, fb := range l.feedback {
		if fb.WasCorrect {
			correct++
			continue
		}
		switch fb.ErrorType() {
		case "false_positive":
			stats.FalsePositives++
		case "false_negative":
			stats.FalseNegatives++
		}
	}
	if len(l.feedback) > 0 {
		stats.Accuracy = float64(correct) / float64(len(l.feedback))
	}
	return stats
}

// Stats contains feedback loop counters.
type Stats struct {
	DecisionsBuffered int     `json:"decisions_buffered"`
	FeedbackReceived  int     `json:"feedback_received"`
	FalsePositives    int     `json:"false_positives"`
	FalseNegatives    int     `json:"false_negatives"`
	Accuracy          float64 `json:"accuracy"`
	FeedbackDir       string  `json:"feedback_dir"`
}

// KeywordCount is a keyword with its scam-verdict frequency.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// PatternAnalysis summarizes buffered decisions for analyst insight.
type PatternAnalysis struct {
	TotalSamples           int            `json:"total_samples"`
	RiskDistribution       map[string]int `json:"risk_distribution"`
	ConfidenceDistribution map[string]int `json:"confidence_distribution"`
	EdgeCaseCount          int            `json:"edge_cases_count"`
	TopScamKeywords        []KeywordCount `json:"top_scam_keywords"`
}

// AnalyzePatterns mines the buffered decisions: verdict and confidence
// distributions, low-confidence scam edge cases, and the keywords most
// often behind scam verdicts.
func (l *Loop) AnalyzePatterns() PatternAnalysis {
	l.mu.Lock()
	defer l.mu.Unlock()

	analysis := PatternAnalysis{
		TotalSamples:           len(l.decision),
		RiskDistribution:       make(map[string]int),
		ConfidenceDistribution: make(map[string]int),
	}

	keywordCounts := make(map[string]int)
	for _, d := range l.decision {
		analysis.RiskDistribution[d.RiskLevel]++
		analysis.ConfidenceDistribution[d.MLConfidence]++

		if d.MLConfidence == string(detect.ConfidenceLow) && d.RiskLevel == string(detect.RiskScam) {
			analysis.EdgeCaseCount++
		}
		if d.RiskLevel == string(detect.RiskScam) {
			for _, kw := range d.RuleKeywords {
				keywordCounts[kw]++
			}
		}
	}

	for kw, n := range keywordCounts {
		analysis.TopScamKeywords = append(analysis.TopScamKeywords, KeywordCount{Keyword: kw, Count: n})
	}
	sort.Slice(analysis.TopScamKeywords, func(i, j int) bool {
		if analysis.TopScamKeywords[i].Count != analysis.TopScamKeywords[j].Count {
			return analysis.TopScamKeywords[i].Count > analysis.TopScamKeywords[j].Count
		}
		return analysis.TopScamKeywords[i].Keyword < analysis.TopScamKeywords[j].Keyword
	})
	if len(analysis.TopScamKeywords) > 10 {
		analysis.TopScamKeywords = analysis.TopScamKeywords[:10]
	}
	return analysis
}

// Close flushes both buffers and closes the sink.
func (l *Loop) Close() error {
	if err := l.FlushDecisions(); err != nil {
		return err
	}
	if err := l.FlushFeedback(); err != nil {
		return err
	}
	if l.sink != nil {
		return l.sink.Close()
	}
	return nil
}
