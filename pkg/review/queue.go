// Package review routes borderline verdicts to a bounded manual-review
// queue. Analysts drain the queue and their verdicts feed the feedback
// loop for threshold retuning and classifier retraining.
package review

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JosephJonathanFernandes/ScamNest/pkg/config"
	"github.com/JosephJonathanFernandes/ScamNest/pkg/detect"
)

// DefaultMaxQueue bounds the queue; when full the oldest unreviewed
// item is dropped so a flood of borderline traffic cannot grow memory
// without bound.
const DefaultMaxQueue = 1000

// Item is one queued borderline decision.
type Item struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	MessageText string    `json:"message_text"`
	Score       float64   `json:"score"`
	RiskLevel   string    `json:"risk_level"`
	Confidence  string    `json:"confidence"`
	Reason      string    `json:"reason"`
	QueuedAt    time.Time `json:"queued_at"`

	Reviewed        bool   `json:"reviewed"`
	ReviewerVerdict string `json:"reviewer_verdict,omitempty"`
	ReviewedAt      string `json:"reviewed_at,omitempty"`
}

// Queue is a thread-safe bounded FIFO of review items.
type Queue struct {
	mu    sync.RWMutex
	items []*Item
	byID  map[string]*Item
	max   int
	cfg   config.DetectionConfig

	dropped int64
}

// NewQueue builds a review queue with the default capacity.
func NewQueue(cfg config.DetectionConfig) *Queue {
	return &Queue{
		byID: make(map[string]*Item),
		max:  DefaultMaxQueue,
		cfg:  cfg,
	}
}

// ShouldQueue decides whether a verdict needs human eyes. The returned
// reason names the routing rule that fired.
func (q *Queue) ShouldQueue(res detect.Result) (bool, string) {
	if res.RiskLevel == detect.RiskSuspicious {
		return true, "suspicious verdict"
	}
	if res.Explanation.ConfidenceLevel == detect.ConfidenceLow && res.Score >= q.cfg.LowConfReviewScore {
		return true, fmt.Sprintf("low classifier confidence at score %.2f", res.Score)
	}
	if res.RiskLevel == detect.RiskScam && res.Score >= q.cfg.ReviewBandLow && res.Score <= q.cfg.ReviewBandHigh {
		return true, fmt.Sprintf("scam verdict inside review band [%.2f, %.2f]", q.cfg.ReviewBandLow, q.cfg.ReviewBandHigh)
	}
	return false, ""
}

// Enqueue adds a borderline decision to the queue when routing rules
// match. Returns the queued item, or nil when no rule fired.
func (q *Queue) Enqueue(sessionID, messageText string, res detect.Result) *Item {
	ok, reason := q.ShouldQueue(res)
	if !ok {
		return nil
	}

	item := &Item{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		MessageText: messageText,
		Score:       res.Score,
		RiskLevel:   string(res.RiskLevel),
		Confidence:  string(res.Explanation.ConfidenceLevel),
		Reason:      reason,
		QueuedAt:    time.Now().UTC(),
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) >= q.max {
		oldest := q.items[0]
		q.items = q.items[1:]
		delete(q.byID, oldest.ID)
		q.dropped++
	}

	q.items = append(q.items, item)
	q.byID[item.ID] = item
	return item
}

// Pending returns queued items awaiting review, oldest first.
func (q *Queue) Pending() []*Item {
	q.mu.RLock()
	defer q.mu.RUnlock()

	out := make([]*Item, 0, len(q.items))
	for _, item := range q.items {
		if !item.Reviewed {
			out = append(out, item)
		}
	}
	return out
}

// PendingForSession returns unreviewed items for one session.
func (q *Queue) PendingForSession(sessionID string) []*Item {
	q.mu.RLock()
	defer q.mu.RUnlock()

	var out []*Item
	for _, item := range q.items {
		if !item.Reviewed && item.SessionID == sessionID {
			out = append(out, item)
		}
	}
	return out
}

// MarkReviewed records the analyst verdict on a queued item.
func (q *Queue) MarkReviewed(id, verdict string) (*Item, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, ok := q.byID[id]
	if !ok {
		return nil, fmt.Errorf("review item %s not found", id)
	}
	if item.Reviewed {
		return nil, fmt.Errorf("review item %s already reviewed", id)
	}

	item.Reviewed = true
	item.ReviewerVerdict = verdict
	item.ReviewedAt = time.Now().UTC().Format(time.RFC3339)
	return item, nil
}

// MarkSessionReviewed records the analyst verdict on the oldest
// unreviewed item for a session. Analysts review per session; queue
// item IDs are an internal detail.
func (q *Queue) MarkSessionReviewed(sessionID, verdict string) (*Item, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, item := range q.items {
		if item.SessionID != sessionID || item.Reviewed {
			continue
		}
		item.Reviewed = true
		item.ReviewerVerdict = verdict
		item.ReviewedAt = time.Now().UTC().Format(time.RFC3339)
		return item, nil
	}
	return nil, fmt.Errorf("no pending review for session %s", sessionID)
}

// Stats summarizes queue state for the stats endpoint.
func (q *Queue) Stats() QueueStats {
	q.mu.RLock()
	defer q.mu.RUnlock()

	stats := QueueStats{
		Total:   len(q.items),
		Dropped: q.dropped,
	}
	for _, item := range q.items {
		if item.Reviewed {
			stats.Reviewed++
		} else {
			stats.Pending++
		}
	}
	return stats
}

// QueueStats contains review queue counters.
type QueueStats struct {
	Total    int   `json:"total"`
	Pending  int   `json:"pending"`
	Reviewed int   `json:"reviewed"`
	Dropped  int64 `json:"dropped"`
}
