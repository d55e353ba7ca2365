// Package agent generates the honeypot's persona replies. The persona is
// a cooperative, slightly confused target; reply aggression tracks the
// engagement strategy so confirmed scammers are strung along and probed
// for payment details while safe conversations get nothing.
package agent

import (
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/JosephJonathanFernandes/ScamNest/pkg/detect"
)

// Responder picks persona replies per engagement strategy.
type Responder struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewResponder creates a responder with a random source.
func NewResponder() *Responder {
	return &Responder{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeededResponder creates a responder with deterministic reply
// selection (used in tests).
func NewSeededResponder(seed uint64) *Responder {
	return &Responder{rng: rand.New(rand.NewPCG(seed, seed))}
}

// Probing replies keep the conversation going and invite detail without
// committing to anything.
var probingReplies = []string{
	"Sorry, I don't understand. Can you explain what this is about?",
	"Who is this? How did you get my number?",
	"I'm a bit confused. Which bank are you calling from?",
	"Can you tell me more about this? I want to be sure before I do anything.",
	"Is this really from the bank? Can you send me some proof?",
}

// Cautious replies play along carefully once the verdict says scam but
// confidence is not yet high.
var cautiousReplies = []string{
	"Oh no, that sounds serious. What do I need to do exactly?",
	"I'm not very good with phone banking. Can you walk me through it slowly?",
	"Okay, I think I understand. Where exactly do I send it?",
	"My son usually helps me with these things. Can you explain it simply?",
	"I want to fix this. What information do you need from me?",
}

// Aggressive replies bait for extractable artifacts: payment handles,
// account numbers, links.
var aggressiveReplies = []string{
	"Okay okay, I'll do it. Which UPI ID should I send the money to?",
	"I have my bank app open now. What's the account number I should transfer to?",
	"The link isn't opening on my phone. Can you send it again?",
	"I tried but it failed. Is there another number or UPI I can pay to?",
	"I have the money ready. Just tell me exactly where to send it.",
}

// Reply returns a persona reply for the strategy. Minimal engagement
// returns an empty string: safe conversations get no reply at all.
func (r *Responder) Reply(strategy detect.EngagementStrategy) string {
	var pool []string
	switch strategy {
	case detect.EngageProbing:
		pool = probingReplies
	case detect.EngageCautious:
		pool = cautiousReplies
	case detect.EngageAggressive:
		pool = aggressiveReplies
	default:
		return ""
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return pool[r.rng.IntN(len(pool))]
}

// ReplyFor tailors the aggressive bait to what the message mentions, so
// a UPI pitch is answered with a UPI question rather than a bank one.
func (r *Responder) ReplyFor(strategy detect.EngagementStrategy, messageText string) string {
	if strategy != detect.EngageAggressive {
		return r.Reply(strategy)
	}

	lower := strings.ToLower(messageText)
	switch {
	case strings.Contains(lower, "upi") || strings.Contains(lower, "paytm") ||
		strings.Contains(lower, "gpay") || strings.Contains(lower, "phonepe"):
		return "Okay okay, I'll do it. Which UPI ID should I send the money to?"
	case strings.Contains(lower, "link") || strings.Contains(lower, "click"):
		return "The link isn't opening on my phone. Can you send it again?"
	case strings.Contains(lower, "account") || strings.Contains(lower, "bank"):
		return "I have my bank app open now. What's the account number I should transfer to?"
	default:
		return r.Reply(strategy)
	}
}
