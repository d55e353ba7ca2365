package detect

import (
	"context"
	"strings"
)

// Prediction is a text-classification verdict, either from the local
// ONNX classifier or supplied externally by the caller.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classifier is the capability the aggregator needs from an ML layer.
// Implementations must degrade gracefully: a classifier that cannot run
// reports Ready() == false rather than erroring on every message.
type Classifier interface {
	// Classify scores a single message.
	Classify(ctx context.Context, text string) (Prediction, error)

	// Ready reports whether the model is loaded and usable.
	Ready() bool

	// Close releases model resources.
	Close() error
}

// IsScamLabel maps the classifier's label vocabulary onto a boolean.
// Models in the wild disagree on naming, so accept the common variants.
func IsScamLabel(label string) bool {
	switch strings.ToLower(label) {
	case "possible_scam", "scam", "fraud", "spam", "label_1":
		return true
	default:
		return false
	}
}

// ScamScore converts a prediction into a scam probability: a scam label
// contributes its confidence directly, a benign label contributes the
// complement.
func ScamScore(p Prediction) float64 {
	if IsScamLabel(p.Label) {
		return clip01(p.Confidence)
	}
	return clip01(1 - p.Confidence)
}

// StubClassifier is a fixed-answer classifier for tests.
type StubClassifier struct {
	Prediction Prediction
	Err        error
	Available  bool
}

func (s *StubClassifier) Classify(ctx context.Context, text string) (Prediction, error) {
	return s.Prediction, s.Err
}

func (s *StubClassifier) Ready() bool { return s.Available }

func (s *StubClassifier) Close() error { return nil }
