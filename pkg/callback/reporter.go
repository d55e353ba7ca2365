// Package callback delivers the final session verdict to the external
// reporting endpoint. Delivery is gated so each session reports at most
// once, only after a confirmed detection with enough conversation behind
// it, and - when no artifacts were captured - only at high confidence.
package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/JosephJonathanFernandes/ScamNest/pkg/config"
	"github.com/JosephJonathanFernandes/ScamNest/pkg/extract"
	"github.com/JosephJonathanFernandes/ScamNest/pkg/httputil"
	"github.com/JosephJonathanFernandes/ScamNest/pkg/session"
)

// Payload is the final-result report wire format.
type Payload struct {
	SessionID              string               `json:"sessionId"`
	ScamDetected           bool                 `json:"scamDetected"`
	TotalMessagesExchanged int                  `json:"totalMessagesExchanged"`
	ExtractedIntelligence  extract.Intelligence `json:"extractedIntelligence"`
	AgentNotes             string               `json:"agentNotes"`
}

// Reporter posts final results over the shared pooled HTTP client,
// with a semaphore bounding concurrent in-flight callbacks.
type Reporter struct {
	url    string
	client *http.Client
	sem    *httputil.Semaphore
	cfg    config.DetectionConfig

	minMessages int
}

// ReporterOption is a functional option for configuring the Reporter.
type ReporterOption func(*Reporter)

// WithHTTPClient overrides the HTTP client (used in tests).
func WithHTTPClient(c *http.Client) ReporterOption {
	return func(r *Reporter) {
		if c != nil {
			r.client = c
		}
	}
}

// NewReporter builds a Reporter from service configuration.
func NewReporter(cfg *config.Config, opts ...ReporterOption) *Reporter {
	r := &Reporter{
		url:         cfg.CallbackURL,
		client:      httputil.ReportClient(),
		sem:         httputil.NewSemaphore(50),
		cfg:         cfg.Detection,
		minMessages: cfg.MinMessagesForCallback,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ShouldSend decides whether the session is ready to report. The returned
// reason names the failed gate when the answer is no.
func (r *Reporter) ShouldSend(state *session.State) (bool, string) {
	if state.CallbackSent {
		return false, "callback already sent"
	}
	if !state.ScamDetected {
		return false, "scam not confirmed"
	}
	if state.TotalMessages < r.minMessages {
		return false, fmt.Sprintf("only %d messages, need %d", state.TotalMessages, r.minMessages)
	}
	if state.ExtractedIntelligence.IsEmpty() && state.ScamConfidenceScore < r.cfg.EmptyIntelMinConfidence {
		return false, fmt.Sprintf("no intelligence and confidence %.2f below %.2f",
			state.ScamConfidenceScore, r.cfg.EmptyIntelMinConfidence)
	}
	return true, ""
}

// BuildPayload assembles the report for a session.
func (r *Reporter) BuildPayload(state *session.State) Payload {
	notes := state.AgentNotes
	if notes == "" {
		scamType := state.ScamType
		if scamType == "" {
			scamType = "General Scam"
		}
		notes = extract.GenerateAgentNotes(state.ExtractedIntelligence, scamType, state.TotalMessages)
	}
	return Payload{
		SessionID:              state.SessionID,
		ScamDetected:           state.ScamDetected,
		TotalMessagesExchanged: state.TotalMessages,
		ExtractedIntelligence:  state.ExtractedIntelligence,
		AgentNotes:             notes,
	}
}

// Send posts the payload to the callback endpoint.
func (r *Reporter) Send(ctx context.Context, payload Payload) error {
	if r.url == "" {
		return fmt.Errorf("callback URL not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode callback payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("callback POST failed: %w", err)
	}
	defer httputil.DrainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := httputil.ReadErrorBody(resp.Body)
		return fmt.Errorf("callback returned %d: %s", resp.StatusCode, string(errBody))
	}
	return nil
}

// Report runs the gate and, when the session qualifies, sends the final
// result and flips the session's callback latch. Returns whether the
// callback was sent.
func (r *Reporter) Report(ctx context.Context, state *session.State) (bool, error) {
	ok, reason := r.ShouldSend(state)
	if !ok {
		log.Printf("[INFO] Callback skipped for %s: %s", state.SessionID, reason)
		return false, nil
	}

	if err := r.sem.Acquire(ctx); err != nil {
		return false, fmt.Errorf("callback slot: %w", err)
	}
	defer r.sem.Release()

	if err := r.Send(ctx, r.BuildPayload(state)); err != nil {
		return false, err
	}

	state.MarkCallbackSent()
	log.Printf("✓ Callback delivered for session %s (%d messages)", state.SessionID, state.TotalMessages)
	return true, nil
}

// Stats exposes backpressure counters for the stats endpoint.
func (r *Reporter) Stats() httputil.SemaphoreStats {
	return r.sem.Stats()
}
