// Package session tracks multi-turn honeypot conversations: the message
// log, the monotonic scam verdict, accumulated intelligence, and the
// one-way callback latch.
package session

import (
	"strings"
	"time"

	"github.com/JosephJonathanFernandes/ScamNest/pkg/extract"
)

// SenderScammer marks counterparty messages; only these are scored and
// mined for intelligence.
const SenderScammer = "scammer"

// Message is one turn of the conversation.
type Message struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// Metadata carries channel context supplied at session creation.
type Metadata struct {
	Channel  string `json:"channel,omitempty"`
	Language string `json:"language,omitempty"`
	Locale   string `json:"locale,omitempty"`
}

// State is the full session record.
//
// Invariants:
//   - ScamSuspected and ScamDetected never revert to false
//   - ScamConfidenceScore only ever increases (max-tracking)
//   - CallbackSent is a one-way latch
type State struct {
	SessionID     string    `json:"sessionId"`
	Messages      []Message `json:"messages"`
	TotalMessages int       `json:"totalMessages"`

	ScamSuspected       bool    `json:"scamSuspected"`
	ScamDetected        bool    `json:"scamDetected"`
	ScamConfidenceScore float64 `json:"scamConfidenceScore"`
	ScamType            string  `json:"scamType,omitempty"`

	ExtractedIntelligence extract.Intelligence `json:"extractedIntelligence"`

	AgentNotes string `json:"agentNotes,omitempty"`

	CallbackSent bool     `json:"callbackSent"`
	Metadata     Metadata `json:"metadata"`

	CreatedAt   time.Time `json:"createdAt"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// NewState initializes a fresh session.
func NewState(sessionID string, meta Metadata) *State {
	now := time.Now().UTC()
	return &State{
		SessionID:   sessionID,
		Metadata:    meta,
		CreatedAt:   now,
		LastUpdated: now,
	}
}

// Clone returns a deep copy of the session. Stores hand out clones so
// callers never mutate shared state.
func (s *State) Clone() *State {
	c := *s
	c.Messages = append([]Message(nil), s.Messages...)
	c.ExtractedIntelligence = s.ExtractedIntelligence.Clone()
	return &c
}

// AddMessage appends a turn and bumps the counters.
func (s *State) AddMessage(msg Message) {
	s.Messages = append(s.Messages, msg)
	s.TotalMessages++
	s.LastUpdated = time.Now().UTC()
}

// SeedHistory replays a caller-supplied transcript into an empty session
// and mines the counterparty turns for intelligence, so a replayed
// conversation carries the same artifacts and verdict as a live one.
// No-op once the session has messages.
func (s *State) SeedHistory(history []Message, ex *extract.Extractor) {
	if s.TotalMessages != 0 || len(history) == 0 {
		return
	}

	var scammerTexts []string
	for _, m := range history {
		s.AddMessage(m)
		if strings.EqualFold(m.Sender, SenderScammer) {
			scammerTexts = append(scammerTexts, m.Text)
		}
	}
	if len(scammerTexts) > 0 {
		s.MergeIntelligence(ex.ExtractFromTexts(scammerTexts))
	}
}

// ScammerMessages returns the counterparty's turns.
func (s *State) ScammerMessages() []Message {
	var out []Message
	for _, m := range s.Messages {
		if m.Sender == SenderScammer {
			out = append(out, m)
		}
	}
	return out
}

// UpdateScamStatus folds a new verdict into the session. Flags only
// ever rise and the confidence score is max-tracked, so a later benign
// message cannot erase an earlier detection.
func (s *State) UpdateScamStatus(suspected, detected bool, confidence float64, scamType string) {
	if suspected {
		s.ScamSuspected = true
	}
	if detected {
		s.ScamDetected = true
	}
	if confidence > s.ScamConfidenceScore {
		s.ScamConfidenceScore = confidence
	}
	if scamType != "" && s.ScamType == "" {
		s.ScamType = scamType
	}
	s.LastUpdated = time.Now().UTC()
}

// MergeIntelligence unions newly extracted artifacts into the session.
func (s *State) MergeIntelligence(intel extract.Intelligence) {
	s.ExtractedIntelligence = s.ExtractedIntelligence.Merge(intel)
	s.LastUpdated = time.Now().UTC()
}

// SetAgentNotes refreshes the narrative summary carried in the final
// report.
func (s *State) SetAgentNotes(notes string) {
	s.AgentNotes = notes
	s.LastUpdated = time.Now().UTC()
}

// MarkCallbackSent flips the one-way latch.
func (s *State) MarkCallbackSent() {
	s.CallbackSent = true
	s.LastUpdated = time.Now().UTC()
}
