package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/JosephJonathanFernandes/ScamNest/pkg/httputil"
)

// ScamExemplar is a seed message with metadata for similarity search.
type ScamExemplar struct {
	Text     string
	Category string
	Severity float32 // 0.0-1.0: how conclusive a close match is
}

// SemanticAdvisor flags messages that paraphrase known scam scripts via
// embedding similarity. It is advisory only: its verdict lands in the
// explanation but never enters the weighted sum, because the rule and
// intent layers already encode the same corpus and double-counting
// would inflate scores.
type SemanticAdvisor struct {
	db         *chromem.DB
	collection *chromem.Collection
	threshold  float32
	mu         sync.RWMutex
	ready      bool
}

// SemanticMatch is the advisor's output for one message.
type SemanticMatch struct {
	Score       float32 // Highest similarity (0.0-1.0)
	Category    string  // Scam script category of the best match
	MatchedText string  // The exemplar that matched
	IsSuspect   bool    // True if Score >= threshold and category != benign
}

// NewSemanticAdvisor creates an advisor backed by the given embedding
// function. Tests inject a deterministic embedder; production wires a
// local ONNX embedding model.
func NewSemanticAdvisor(embed chromem.EmbeddingFunc) (*SemanticAdvisor, error) {
	if embed == nil {
		return nil, fmt.Errorf("embedding function is nil")
	}

	db := chromem.NewDB()
	collection, err := db.CreateCollection("scam_exemplars", nil, embed)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	return &SemanticAdvisor{
		db:         db,
		collection: collection,
		threshold:  0.70,
	}, nil
}

// NewOllamaEmbeddingFunc embeds text via an Ollama /api/embeddings
// endpoint, for deployments that run a local embedding model.
func NewOllamaEmbeddingFunc(model, baseURL string) chromem.EmbeddingFunc {
	client := httputil.SlowClient()

	return func(ctx context.Context, text string) ([]float32, error) {
		reqBody, err := json.Marshal(map[string]string{
			"model":  model,
			"prompt": text,
		})
		if err != nil {
			return nil, fmt.Errorf("marshal embedding request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/embeddings", bytes.NewReader(reqBody))
		if err != nil {
			return nil, fmt.Errorf("build embedding request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("embedding request failed: %w", err)
		}
		defer httputil.DrainAndClose(resp.Body)

		if resp.StatusCode != http.StatusOK {
			errBody, _ := httputil.ReadErrorBody(resp.Body)
			return nil, fmt.Errorf("embedding endpoint returned %d: %s", resp.StatusCode, string(errBody))
		}

		var result struct {
			Embedding []float32 `json:"embedding"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, fmt.Errorf("decode embedding response: %w", err)
		}
		return result.Embedding, nil
	}
}

// LoadExemplars loads the seed scam corpus into the vector store.
func (sa *SemanticAdvisor) LoadExemplars(ctx context.Context) error {
	sa.mu.Lock()
	defer sa.mu.Unlock()

	exemplars := seedExemplars()
	docs := make([]chromem.Document, len(exemplars))
	for i, e := range exemplars {
		docs[i] = chromem.Document{
			ID:      fmt.Sprintf("exemplar_%d", i),
			Content: e.Text,
			Metadata: map[string]string{
				"category": e.Category,
				"severity": fmt.Sprintf("%.2f", e.Severity),
			},
		}
	}

	if err := sa.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("failed to add exemplars: %w", err)
	}

	sa.ready = true
	return nil
}

// Ready reports whether exemplars are loaded.
func (sa *SemanticAdvisor) Ready() bool {
	sa.mu.RLock()
	defer sa.mu.RUnlock()
	return sa.ready
}

// SetThreshold updates the similarity threshold.
func (sa *SemanticAdvisor) SetThreshold(t float32) {
	sa.mu.Lock()
	defer sa.mu.Unlock()
	sa.threshold = t
}

// Match finds the closest known scam script to the text.
func (sa *SemanticAdvisor) Match(ctx context.Context, text string) (*SemanticMatch, error) {
	sa.mu.RLock()
	defer sa.mu.RUnlock()

	if !sa.ready {
		return nil, fmt.Errorf("semantic advisor not initialized - call LoadExemplars first")
	}

	results, err := sa.collection.Query(ctx, strings.ToLower(text), 3, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	if len(results) == 0 {
		return &SemanticMatch{Category: "benign"}, nil
	}

	best := results[0]
	category := best.Metadata["category"]

	if category == "benign" && best.Similarity > sa.threshold {
		return &SemanticMatch{Category: "benign"}, nil
	}

	return &SemanticMatch{
		Score:       best.Similarity,
		Category:    category,
		MatchedText: best.Content,
		IsSuspect:   best.Similarity >= sa.threshold && category != "benign",
	}, nil
}

var (
	cachedExemplars     []ScamExemplar
	cachedExemplarsOnce sync.Once
)

// seedExemplars returns the curated scam script corpus. Categories match
// the scam-type precedence used for session labeling.
func seedExemplars() []ScamExemplar {
	cachedExemplarsOnce.Do(func() {
		cachedExemplars = []ScamExemplar{
			// === Banking fraud ===
			{"Your bank account will be blocked today, verify your details immediately", "banking_fraud", 1.0},
			{"Dear customer your SBI account has been suspended due to incomplete verification", "banking_fraud", 0.95},
			{"RBI notice: your account will be frozen unless you confirm your identity", "banking_fraud", 0.95},
			{"Your debit card has been deactivated, call customer care and share card number", "banking_fraud", 0.9},

			// === Credential phishing ===
			{"Share the OTP you just received to complete the verification", "credential_phishing", 1.0},
			{"Enter your ATM PIN and CVV to unlock your card", "credential_phishing", 1.0},
			{"We need your password to restore account access", "credential_phishing", 0.95},
			{"Send the 6 digit code from your SMS to confirm it is you", "credential_phishing", 0.9},

			// === Lottery / prize ===
			{"Congratulations you have won a lottery prize of 50000 rupees", "lottery_fraud", 0.95},
			{"You are the lucky winner, claim your cashback reward before it expires", "lottery_fraud", 0.9},
			{"Your number was selected for a special prize, pay processing fee to claim", "lottery_fraud", 0.95},

			// === UPI fraud ===
			{"Your UPI is blocked, share your UPI ID immediately to reactivate", "upi_fraud", 1.0},
			{"Accept this collect request to receive your refund on Paytm", "upi_fraud", 0.95},
			{"Your GPay mandate is pending, approve the auto debit to continue", "upi_fraud", 0.9},
			{"Verify your PhonePe account or UPI services will be suspended", "upi_fraud", 0.95},

			// === KYC fraud ===
			{"Your KYC is pending, update Aadhaar details today to avoid suspension", "kyc_fraud", 0.95},
			{"PAN card verification failed, resubmit documents within 24 hours", "kyc_fraud", 0.9},
			{"Complete video KYC now or your wallet will be permanently closed", "kyc_fraud", 0.9},

			// === Benign (false positive prevention) ===
			{"Hello, how are you doing today", "benign", 0.0},
			{"Can we reschedule our meeting to tomorrow afternoon", "benign", 0.0},
			{"Your order has been shipped and will arrive on Friday", "benign", 0.0},
			{"Thanks for the payment, see you next week", "benign", 0.0},
			{"The bank opens at 10 am on weekdays", "benign", 0.0},
		}
	})
	return cachedExemplars
}

// ExemplarCount returns the number of seed exemplars.
func (sa *SemanticAdvisor) ExemplarCount() int {
	return len(seedExemplars())
}
