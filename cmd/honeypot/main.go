package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/JosephJonathanFernandes/ScamNest/pkg/agent"
	"github.com/JosephJonathanFernandes/ScamNest/pkg/callback"
	"github.com/JosephJonathanFernandes/ScamNest/pkg/config"
	"github.com/JosephJonathanFernandes/ScamNest/pkg/detect"
	"github.com/JosephJonathanFernandes/ScamNest/pkg/extract"
	"github.com/JosephJonathanFernandes/ScamNest/pkg/feedback"
	"github.com/JosephJonathanFernandes/ScamNest/pkg/review"
	"github.com/JosephJonathanFernandes/ScamNest/pkg/session"
)

const Version = "1.0.0"

// Service wires the full detection pipeline: per-message scoring,
// session verdicts, intelligence extraction, review routing, decision
// logging, and callback reporting.
// Optional components degrade gracefully when unavailable.
type Service struct {
	cfg        *config.Config
	aggregator *detect.Aggregator
	analyzer   *session.Analyzer
	store      session.Store
	extractor  *extract.Extractor
	reporter   *callback.Reporter
	reviews    *review.Queue
	loop       *feedback.Loop
	responder  *agent.Responder
}

func NewService(cfg *config.Config) (*Service, error) {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}

	// ML classifier - optional, requires an ONNX model on disk.
	var classifier detect.Classifier
	if cfg.DisableML {
		log.Println("○ ML classifier disabled (HONEYPOT_DISABLE_ML)")
	} else if hc := detect.NewAutoDetectedClassifier(); hc != nil && hc.Ready() {
		classifier = hc
		log.Println("✓ ML classifier enabled (hugot/ONNX)")
	} else {
		log.Println("○ ML classifier disabled (no ONNX model found)")
	}

	// Semantic advisory layer - optional, requires an embedding endpoint.
	var aggOpts []detect.AggregatorOption
	if cfg.EnableSemantic {
		ollamaURL := config.GetEnv("HONEYPOT_OLLAMA_URL", "http://localhost:11434")
		advisor, err := detect.NewSemanticAdvisor(detect.NewOllamaEmbeddingFunc("nomic-embed-text", ollamaURL))
		if err != nil {
			log.Printf("○ Semantic advisory disabled (init failed: %v)", err)
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			if err := advisor.LoadExemplars(ctx); err != nil {
				log.Printf("○ Semantic advisory disabled (exemplar load failed: %v)", err)
			} else {
				aggOpts = append(aggOpts, detect.WithSemanticAdvisor(advisor))
				log.Printf("✓ Semantic advisory enabled (%d exemplars, chromem-go)", advisor.ExemplarCount())
			}
			cancel()
		}
	}

	aggregator := detect.NewAggregator(cfg.Detection, classifier, aggOpts...)

	// Session store - Redis when configured, in-memory otherwise.
	var store session.Store
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rs, err := session.NewRedisStore(ctx, cfg.RedisAddr, cfg.SessionTTL)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("redis session store: %w", err)
		}
		store = rs
		log.Printf("✓ Session store: redis (%s)", cfg.RedisAddr)
	} else {
		store = session.NewInMemoryStore(session.WithMaxAge(cfg.SessionTTL))
		log.Println("✓ Session store: in-memory")
	}

	// Feedback loop - optional Postgres sink alongside the JSONL files.
	var loopOpts []feedback.LoopOption
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		sink, err := feedback.NewPostgresSink(ctx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			log.Printf("○ Postgres feedback sink disabled (%v)", err)
		} else {
			loopOpts = append(loopOpts, feedback.WithSink(sink))
			log.Println("✓ Postgres feedback sink enabled")
		}
	}
	loop, err := feedback.NewLoop(cfg.FeedbackDir, loopOpts...)
	if err != nil {
		return nil, fmt.Errorf("feedback loop: %w", err)
	}

	return &Service{
		cfg:        cfg,
		aggregator: aggregator,
		analyzer:   session.NewAnalyzer(aggregator, cfg.Detection),
		store:      store,
		extractor:  extract.NewExtractor(),
		reporter:   callback.NewReporter(cfg),
		reviews:    review.NewQueue(cfg.Detection),
		loop:       loop,
		responder:  agent.NewResponder(),
	}, nil
}

func (s *Service) Close() {
	if err := s.loop.Close(); err != nil {
		log.Printf("[WARN] Feedback loop close: %v", err)
	}
	if err := s.store.Close(); err != nil {
		log.Printf("[WARN] Session store close: %v", err)
	}
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cfg := config.NewDefaultConfig()
		if len(os.Args) > 2 {
			cfg.Port = os.Args[2]
		}
		runHTTPServer(cfg)
	case "scan":
		if len(os.Args) < 3 {
			fmt.Println("Usage: honeypot scan <text>")
			os.Exit(1)
		}
		runCLIScan(strings.Join(os.Args[2:], " "))
	case "models":
		listModels()
	case "version":
		fmt.Printf("ScamNest v%s\n", Version)
		fmt.Println("Agentic Honeypot - scam detection and intelligence extraction")
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("ScamNest v%s - Agentic Honeypot\n\n", Version)
	fmt.Println("Usage:")
	fmt.Println("  honeypot serve [port]   Start HTTP server (default: 8000)")
	fmt.Println("  honeypot scan <text>    Score one message from the CLI")
	fmt.Println("  honeypot models         List available ML models")
	fmt.Println("  honeypot version        Show version")
	fmt.Println("")
	fmt.Println("Environment Variables:")
	fmt.Println("  HONEYPOT_API_KEY            x-api-key required on /api/v1/* routes")
	fmt.Println("  HONEYPOT_CALLBACK_URL       Final-result callback endpoint")
	fmt.Println("  HONEYPOT_REDIS_ADDR         Redis session store address")
	fmt.Println("  HONEYPOT_MODEL_PATH         ONNX classifier model directory")
	fmt.Println("  HONEYPOT_DISABLE_ML         Run rules + intent only")
	fmt.Println("  HONEYPOT_ENABLE_SEMANTIC    Enable embedding-similarity advisory")
	fmt.Println("  HONEYPOT_DETECTION_CONFIG   YAML file with threshold overrides")
	fmt.Println("  DATABASE_URL                Postgres feedback sink")
}

// ============================================================================
// HTTP Server Mode
// ============================================================================

// messageBody mirrors the inbound conversation turn.
type messageBody struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

type honeypotRequest struct {
	SessionID           string           `json:"sessionId"`
	Message             messageBody      `json:"message"`
	ConversationHistory []messageBody    `json:"conversationHistory"`
	Metadata            session.Metadata `json:"metadata"`
}

func historyMessages(history []messageBody) []session.Message {
	if len(history) == 0 {
		return nil
	}
	out := make([]session.Message, 0, len(history))
	for _, m := range history {
		out = append(out, session.Message{Sender: m.Sender, Text: m.Text, Timestamp: m.Timestamp})
	}
	return out
}

func runHTTPServer(cfg *config.Config) {
	cfg.MustValidate()

	svc, err := NewService(cfg)
	if err != nil {
		log.Fatalf("Service init failed: %v", err)
	}
	defer svc.Close()

	app := fiber.New(fiber.Config{
		AppName: "ScamNest",
	})

	app.Use(apiKeyMiddleware(cfg.APIKey))

	app.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"name":    "ScamNest",
			"version": Version,
			"status":  "running",
		})
	})

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy", "service": "honeypot-api"})
	})

	app.Post("/api/v1/honeypot", svc.handleHoneypot)
	app.Get("/api/v1/session/:id", svc.handleGetSession)
	app.Post("/api/v1/session/:id/callback", svc.handleForceCallback)
	app.Get("/api/v1/review/pending", svc.handlePendingReviews)
	app.Post("/api/v1/review/:sessionId", svc.handleMarkReviewed)
	app.Post("/api/v1/feedback", svc.handleFeedback)
	app.Get("/api/v1/stats", svc.handleStats)

	log.Printf("ScamNest HTTP server starting on :%s", cfg.Port)
	log.Printf("Endpoints:")
	log.Printf("  GET  /health                       - Health check")
	log.Printf("  POST /api/v1/honeypot              - Message ingestion + detection")
	log.Printf("  GET  /api/v1/session/:id           - Session snapshot")
	log.Printf("  POST /api/v1/session/:id/callback  - Force callback attempt")
	log.Printf("  GET  /api/v1/review/pending        - Pending manual reviews")
	log.Printf("  POST /api/v1/review/:sessionId     - Record review verdict")
	log.Printf("  POST /api/v1/feedback              - Ground-truth feedback")
	log.Printf("  GET  /api/v1/stats                 - Pipeline statistics")

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}

// apiKeyMiddleware enforces x-api-key on protected routes. Root and
// health stay public so load balancers can probe without credentials.
func apiKeyMiddleware(apiKey string) func(fiber.Ctx) error {
	return func(c fiber.Ctx) error {
		path := c.Path()
		if path == "/" || path == "/health" {
			return c.Next()
		}
		if apiKey == "" {
			// Dev mode: no key configured, everything is open.
			return c.Next()
		}

		got := c.Get("x-api-key")
		if got == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status": "error",
				"detail": "Missing API key. Please provide 'x-api-key' header.",
			})
		}
		if got != apiKey {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status": "error",
				"detail": "Invalid API key.",
			})
		}
		return c.Next()
	}
}

func (s *Service) handleHoneypot(c fiber.Ctx) error {
	var req honeypotRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error", "detail": "invalid request body",
		})
	}
	if req.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error", "detail": "sessionId is required",
		})
	}
	if req.Message.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error", "detail": "message.text is required",
		})
	}

	ctx := c.Context()

	if _, err := s.store.GetOrCreate(ctx, req.SessionID, req.Metadata); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status": "error", "detail": err.Error(),
		})
	}

	history := historyMessages(req.ConversationHistory)
	msg := session.Message{
		Sender:    req.Message.Sender,
		Text:      req.Message.Text,
		Timestamp: req.Message.Timestamp,
	}

	// Only counterparty messages are scored and mined.
	if !strings.EqualFold(req.Message.Sender, session.SenderScammer) {
		if _, err := s.store.Update(ctx, req.SessionID, func(st *session.State) error {
			st.SeedHistory(history, s.extractor)
			st.AddMessage(msg)
			return nil
		}); err != nil {
			log.Printf("[WARN] Session update failed: %v", err)
		}
		return c.JSON(fiber.Map{"status": "success", "reply": ""})
	}

	res := s.aggregator.AnalyzeMessage(ctx, req.Message.Text, nil)
	s.loop.LogDecision(req.SessionID, req.Message.Text, res)

	if item := s.reviews.Enqueue(req.SessionID, req.Message.Text, res); item != nil {
		log.Printf("[INFO] Queued for review: session=%s reason=%s", req.SessionID, item.Reason)
	}

	state, err := s.store.Update(ctx, req.SessionID, func(st *session.State) error {
		st.SeedHistory(history, s.extractor)
		st.AddMessage(msg)

		verdict := s.analyzer.AnalyzeSession(ctx, st)
		scamType := ""
		if verdict.Suspected {
			scamType = session.ScamType(verdict.Keywords)
		}
		st.UpdateScamStatus(verdict.Suspected, verdict.Detected, verdict.Score, scamType)
		st.MergeIntelligence(s.extractor.ExtractFromText(req.Message.Text))
		if st.ScamSuspected {
			st.SetAgentNotes(extract.GenerateAgentNotes(
				st.ExtractedIntelligence, st.ScamType, st.TotalMessages))
		}

		if st.ScamDetected {
			if _, err := s.reporter.Report(ctx, st); err != nil {
				log.Printf("[WARN] Callback failed for %s: %v", req.SessionID, err)
			}
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status": "error", "detail": err.Error(),
		})
	}

	strategy := s.aggregator.EngagementStrategy(res.RiskLevel, res.Score)
	if strategy == detect.EngageMinimal {
		return c.JSON(fiber.Map{
			"status":    "ignored",
			"reason":    "message not classified as scam",
			"riskLevel": res.RiskLevel,
			"score":     res.Score,
		})
	}

	return c.JSON(fiber.Map{
		"status":             "success",
		"reply":              s.responder.ReplyFor(strategy, req.Message.Text),
		"riskLevel":          res.RiskLevel,
		"score":              res.Score,
		"engagementStrategy": strategy,
		"scamDetected":       state.ScamDetected,
		"explanation":        res.Explanation,
	})
}

func (s *Service) handleGetSession(c fiber.Ctx) error {
	state, err := s.store.Get(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status": "error", "detail": "session not found",
		})
	}
	return c.JSON(fiber.Map{"status": "success", "session": state})
}

func (s *Service) handleForceCallback(c fiber.Ctx) error {
	ctx := c.Context()

	var rejectReason string
	var sendErr error
	_, err := s.store.Update(ctx, c.Params("id"), func(st *session.State) error {
		ok, reason := s.reporter.ShouldSend(st)
		if !ok {
			rejectReason = reason
			return nil
		}
		if _, e := s.reporter.Report(ctx, st); e != nil {
			sendErr = e
		}
		return nil
	})
	if errors.Is(err, session.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status": "error", "detail": "session not found",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status": "error", "detail": err.Error(),
		})
	}
	if rejectReason != "" {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"status": "rejected", "reason": rejectReason,
		})
	}
	if sendErr != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"status": "error", "detail": sendErr.Error(),
		})
	}
	return c.JSON(fiber.Map{"status": "success", "callbackSent": true})
}

func (s *Service) handlePendingReviews(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "success",
		"items":  s.reviews.Pending(),
	})
}

func (s *Service) handleMarkReviewed(c fiber.Ctx) error {
	var req struct {
		Verdict string `json:"verdict"`
		Notes   string `json:"notes"`
	}
	if err := c.Bind().Body(&req); err != nil || req.Verdict == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error", "detail": "verdict is required",
		})
	}

	sessionID := c.Params("sessionId")
	item, err := s.reviews.MarkSessionReviewed(sessionID, req.Verdict)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status": "error", "detail": err.Error(),
		})
	}

	// Analyst verdicts double as ground truth for the feedback loop.
	if _, err := s.loop.AddFeedback(sessionID, req.Verdict, "human_review", req.Notes); err != nil {
		log.Printf("[WARN] Review feedback not recorded: %v", err)
	}

	return c.JSON(fiber.Map{"status": "success", "item": item})
}

func (s *Service) handleFeedback(c fiber.Ctx) error {
	var req struct {
		SessionID        string `json:"sessionId"`
		GroundTruthLabel string `json:"groundTruthLabel"`
		Source           string `json:"source"`
		Notes            string `json:"notes"`
	}
	if err := c.Bind().Body(&req); err != nil || req.SessionID == "" || req.GroundTruthLabel == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error", "detail": "sessionId and groundTruthLabel are required",
		})
	}
	if req.Source == "" {
		req.Source = "user_report"
	}

	rec, err := s.loop.AddFeedback(req.SessionID, req.GroundTruthLabel, req.Source, req.Notes)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status": "error", "detail": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"status": "success", "feedback": rec})
}

func (s *Service) handleStats(c fiber.Ctx) error {
	stats := fiber.Map{
		"status":   "success",
		"review":   s.reviews.Stats(),
		"feedback": s.loop.Stats(),
		"callback": s.reporter.Stats(),
		"patterns": s.loop.AnalyzePatterns(),
	}
	if ms, ok := s.store.(*session.InMemoryStore); ok {
		stats["sessions"] = ms.Stats()
	}
	return c.JSON(stats)
}

// ============================================================================
// CLI Mode
// ============================================================================

func runCLIScan(text string) {
	cfg := config.NewDefaultConfig()

	var classifier detect.Classifier
	if !cfg.DisableML {
		if hc := detect.NewAutoDetectedClassifier(); hc != nil && hc.Ready() {
			classifier = hc
		}
	}

	aggregator := detect.NewAggregator(cfg.Detection, classifier)
	res := aggregator.AnalyzeMessage(context.Background(), text, nil)

	output, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(output))
}

func listModels() {
	models := detect.ListAvailableModels()
	if len(models) == 0 {
		fmt.Println("No ML models found.")
		fmt.Println("")
		fmt.Println("To enable ML scoring, place a model.onnx under ./models/scam-classifier")
		fmt.Println("or set HONEYPOT_MODEL_PATH to a model directory.")
		return
	}

	fmt.Println("Available ML Models:")
	fmt.Println("")
	for _, m := range models {
		fmt.Printf("  %s\n", m.Name)
		fmt.Printf("    Path: %s\n", m.Path)
		fmt.Printf("    Size: %s\n", m.Size)
		fmt.Println()
	}
}
