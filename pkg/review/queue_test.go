package review

import (
	"fmt"
	"testing"

	"github.com/JosephJonathanFernandes/ScamNest/pkg/config"
	"github.com/JosephJonathanFernandes/ScamNest/pkg/detect"
)

func result(level detect.RiskLevel, score float64, conf detect.ConfidenceLevel) detect.Result {
	return detect.Result{
		RiskLevel: level,
		Score:     score,
		Explanation: &detect.Explanation{
			Signals:         map[string]detect.SignalResult{},
			ConfidenceLevel: conf,
		},
	}
}

func TestShouldQueueRouting(t *testing.T) {
	q := NewQueue(config.DefaultDetectionConfig())

	tests := []struct {
		name string
		res  detect.Result
		want bool
	}{
		{"suspicious always queues", result(detect.RiskSuspicious, 0.45, detect.ConfidenceHigh), true},
		{"confident safe skips", result(detect.RiskSafe, 0.10, detect.ConfidenceHigh), false},
		{"confident high scam skips", result(detect.RiskScam, 0.92, detect.ConfidenceHigh), false},
		{"scam inside review band", result(detect.RiskScam, 0.65, detect.ConfidenceHigh), true},
		{"scam at band edge", result(detect.RiskScam, 0.70, detect.ConfidenceHigh), true},
		{"scam above band", result(detect.RiskScam, 0.71, detect.ConfidenceMedium), false},
		{"low confidence elevated safe", result(detect.RiskSafe, 0.56, detect.ConfidenceLow), true},
		{"low confidence low score", result(detect.RiskSafe, 0.20, detect.ConfidenceLow), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := q.ShouldQueue(tt.res)
			if got != tt.want {
				t.Errorf("ShouldQueue = %v (%s), want %v", got, reason, tt.want)
			}
		})
	}
}

func TestEnqueueAndReview(t *testing.T) {
	q := NewQueue(config.DefaultDetectionConfig())

	item := q.Enqueue("sess-1", "is this your upi pin?", result(detect.RiskSuspicious, 0.48, detect.ConfidenceMedium))
	if item == nil {
		t.Fatal("suspicious verdict should enqueue")
	}
	if item.ID == "" {
		t.Error("item should get an ID")
	}

	if skipped := q.Enqueue("sess-2", "hello there", result(detect.RiskSafe, 0.05, detect.ConfidenceHigh)); skipped != nil {
		t.Error("safe verdict should not enqueue")
	}

	pending := q.Pending()
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending))
	}

	reviewed, err := q.MarkReviewed(item.ID, "scam")
	if err != nil {
		t.Fatalf("MarkReviewed: %v", err)
	}
	if !reviewed.Reviewed || reviewed.ReviewerVerdict != "scam" {
		t.Errorf("review not recorded: %+v", reviewed)
	}

	if len(q.Pending()) != 0 {
		t.Error("reviewed items should leave the pending set")
	}

	if _, err := q.MarkReviewed(item.ID, "scam"); err == nil {
		t.Error("double review should fail")
	}
	if _, err := q.MarkReviewed("nope", "scam"); err == nil {
		t.Error("unknown ID should fail")
	}
}

func TestQueueBounded(t *testing.T) {
	q := NewQueue(config.DefaultDetectionConfig())
	q.max = 5

	for i := range 8 {
		q.Enqueue(fmt.Sprintf("sess-%d", i), "text", result(detect.RiskSuspicious, 0.5, detect.ConfidenceMedium))
	}

	stats := q.Stats()
	if stats.Total != 5 {
		t.Errorf("Total = %d, want 5 (bounded)", stats.Total)
	}
	if stats.Dropped != 3 {
		t.Errorf("Dropped = %d, want 3", stats.Dropped)
	}

	// Oldest entries were evicted.
	pending := q.Pending()
	if pending[0].SessionID != "sess-3" {
		t.Errorf("oldest remaining = %s, want sess-3", pending[0].SessionID)
	}
}

func TestMarkSessionReviewed(t *testing.T) {
	q := NewQueue(config.DefaultDetectionConfig())

	q.Enqueue("sess-a", "first", result(detect.RiskSuspicious, 0.5, detect.ConfidenceMedium))
	q.Enqueue("sess-a", "second", result(detect.RiskSuspicious, 0.5, detect.ConfidenceMedium))

	item, err := q.MarkSessionReviewed("sess-a", "safe")
	if err != nil {
		t.Fatalf("MarkSessionReviewed: %v", err)
	}
	if item.MessageText != "first" {
		t.Errorf("reviewed %q, want oldest item first", item.MessageText)
	}

	if len(q.PendingForSession("sess-a")) != 1 {
		t.Error("one item should remain pending")
	}

	if _, err := q.MarkSessionReviewed("sess-x", "safe"); err == nil {
		t.Error("unknown session should fail")
	}
}

func TestPendingForSession(t *testing.T) {
	q := NewQueue(config.DefaultDetectionConfig())

	q.Enqueue("sess-a", "msg 1", result(detect.RiskSuspicious, 0.5, detect.ConfidenceMedium))
	q.Enqueue("sess-b", "msg 2", result(detect.RiskSuspicious, 0.5, detect.ConfidenceMedium))
	q.Enqueue("sess-a", "msg 3", result(detect.RiskSuspicious, 0.5, detect.ConfidenceMedium))

	if got := q.PendingForSession("sess-a"); len(got) != 2 {
		t.Errorf("sess-a pending = %d, want 2", len(got))
	}
	if got := q.PendingForSession("sess-c"); len(got) != 0 {
		t.Errorf("sess-c pending = %d, want 0", len(got))
	}
}
