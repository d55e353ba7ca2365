// Package config holds the runtime configuration for the honeypot service.
// Everything can be set via environment variables; detection thresholds can
// additionally be overridden from a YAML file so analysts can retune scoring
// without a rebuild.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds global settings for the honeypot service.
type Config struct {
	// === Core Settings ===
	Port   string // HTTP listen port (default: "8000")
	APIKey string // x-api-key value required on /api/v1/* routes

	// === Callback Reporting ===
	CallbackURL            string        // Final-result callback endpoint
	CallbackTimeout        time.Duration // Per-callback HTTP timeout (default: 10s)
	MinMessagesForCallback int           // Minimum total messages before a callback fires (default: 3)

	// === Session Store ===
	RedisAddr  string        // When set, sessions persist in Redis instead of memory
	SessionTTL time.Duration // Idle-session eviction age (default: 24h)

	// === Feedback Loop ===
	FeedbackDir string // Directory for decision/feedback JSONL files
	DatabaseURL string // When set, feedback also lands in Postgres

	// === ML Classifier ===
	ModelPath      string // ONNX model directory; empty = auto-detect
	DisableML      bool   // Run rules + intent only
	EnableSemantic bool   // Enable embedding-similarity advisory layer

	// === Detection ===
	Detection DetectionConfig
}

// DetectionConfig carries every tunable threshold of the scoring pipeline.
// Defaults preserve the calibrated contract; override via YAML or env.
type DetectionConfig struct {
	// Risk level boundaries on the combined score.
	SafeThreshold float64 `yaml:"safe_threshold"` // below = SAFE (default: 0.35)
	ScamThreshold float64 `yaml:"scam_threshold"` // at or above = SCAM (default: 0.60)

	// Classifier confidence bands driving aggregation weights.
	HighConfidence float64 `yaml:"high_confidence"` // at or above = HIGH (default: 0.75)
	LowConfidence  float64 `yaml:"low_confidence"`  // at or below = LOW (default: 0.45)

	// Session-level verdict thresholds.
	SessionSuspectThreshold float64 `yaml:"session_suspect_threshold"` // scamSuspected (default: 0.30)
	SessionDetectThreshold  float64 `yaml:"session_detect_threshold"`  // scamDetected (default: 0.51)
	MinScammerMessages      int     `yaml:"min_scammer_messages"`      // detection needs this many counterparty messages (default: 2)

	// Keyword-diversity bonus folded into the session score.
	DiversityBonusPerKeyword float64 `yaml:"diversity_bonus_per_keyword"` // default: 0.02
	DiversityBonusCap        float64 `yaml:"diversity_bonus_cap"`         // default: 0.20

	// Manual review routing.
	ReviewBandLow      float64 `yaml:"review_band_low"`       // SCAM review band lower edge (default: 0.60)
	ReviewBandHigh     float64 `yaml:"review_band_high"`      // SCAM review band upper edge (default: 0.70)
	LowConfReviewScore float64 `yaml:"low_conf_review_score"` // LOW-confidence review floor (default: 0.55)

	// Callback gating.
	EmptyIntelMinConfidence float64 `yaml:"empty_intel_min_confidence"` // default: 0.80

	// Engagement.
	AggressiveThreshold float64 `yaml:"aggressive_threshold"` // aggressive engagement within SCAM (default: 0.80)
}

// NewDefaultConfig creates a Config with sensible defaults.
// All settings can be overridden via environment variables.
func NewDefaultConfig() *Config {
	cfg := &Config{
		Port:   GetEnv("HONEYPOT_PORT", GetEnv("PORT", "8000")),
		APIKey: GetEnv("HONEYPOT_API_KEY", GetEnv("API_KEY", "")),

		CallbackURL:            GetEnv("HONEYPOT_CALLBACK_URL", "https://hackathon.guvi.in/api/updateHoneyPotFinalResult"),
		CallbackTimeout:        time.Duration(GetEnvInt("HONEYPOT_CALLBACK_TIMEOUT_SECONDS", 10)) * time.Second,
		MinMessagesForCallback: GetEnvInt("HONEYPOT_MIN_MESSAGES_FOR_CALLBACK", 3),

		RedisAddr:  GetEnv("HONEYPOT_REDIS_ADDR", ""),
		SessionTTL: time.Duration(GetEnvInt("HONEYPOT_SESSION_TTL_SECONDS", 86400)) * time.Second,

		FeedbackDir: GetEnv("HONEYPOT_FEEDBACK_DIR", "feedback_data"),
		DatabaseURL: GetEnv("DATABASE_URL", ""),

		ModelPath:      GetEnv("HONEYPOT_MODEL_PATH", ""),
		DisableML:      GetEnvBool("HONEYPOT_DISABLE_ML", false),
		EnableSemantic: GetEnvBool("HONEYPOT_ENABLE_SEMANTIC", false),

		Detection: DefaultDetectionConfig(),
	}

	if path := GetEnv("HONEYPOT_DETECTION_CONFIG", ""); path != "" {
		if err := cfg.Detection.LoadFile(path); err != nil {
			log.Printf("[WARN] Failed to load detection config %s: %v (using defaults)", path, err)
		} else {
			log.Printf("✓ Detection thresholds loaded from %s", path)
		}
	}

	return cfg
}

// DefaultDetectionConfig returns the calibrated scoring thresholds.
func DefaultDetectionConfig() DetectionConfig {
	return DetectionConfig{
		SafeThreshold: GetEnvFloat("HONEYPOT_SAFE_THRESHOLD", 0.35),
		ScamThreshold: GetEnvFloat("HONEYPOT_SCAM_THRESHOLD", 0.60),

		HighConfidence: 0.75,
		LowConfidence:  0.45,

		SessionSuspectThreshold: 0.30,
		SessionDetectThreshold:  0.51,
		MinScammerMessages:      2,

		DiversityBonusPerKeyword: 0.02,
		DiversityBonusCap:        0.20,

		ReviewBandLow:      0.60,
		ReviewBandHigh:     0.70,
		LowConfReviewScore: 0.55,

		EmptyIntelMinConfidence: 0.80,

		AggressiveThreshold: 0.80,
	}
}

// LoadFile overlays thresholds from a YAML file onto the current values.
// Fields absent from the file keep their defaults.
func (d *DetectionConfig) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read detection config: %w", err)
	}
	if err := yaml.Unmarshal(data, d); err != nil {
		return fmt.Errorf("parse detection config: %w", err)
	}
	return nil
}

// Validate checks threshold ordering and required settings.
// In production mode, a missing API key is fatal; in development it warns.
func (c *Config) Validate() error {
	isProduction := strings.ToLower(os.Getenv("HONEYPOT_ENV")) == "production" ||
		strings.ToLower(os.Getenv("HONEYPOT_ENV")) == "prod"

	if c.APIKey == "" {
		if isProduction {
			return fmt.Errorf("missing required secret: HONEYPOT_API_KEY (API key for honeypot authentication)")
		}
		log.Printf("[STARTUP] Warning: HONEYPOT_API_KEY not set - /api/v1 routes are unauthenticated")
	}

	d := c.Detection
	if d.SafeThreshold < 0 || d.SafeThreshold >= d.ScamThreshold || d.ScamThreshold > 1 {
		return fmt.Errorf("invalid risk thresholds: safe=%.2f scam=%.2f (need 0 <= safe < scam <= 1)", d.SafeThreshold, d.ScamThreshold)
	}
	if d.LowConfidence >= d.HighConfidence {
		return fmt.Errorf("invalid confidence bands: low=%.2f high=%.2f", d.LowConfidence, d.HighConfidence)
	}
	if d.ReviewBandLow > d.ReviewBandHigh {
		return fmt.Errorf("invalid review band: %.2f-%.2f", d.ReviewBandLow, d.ReviewBandHigh)
	}
	if c.MinMessagesForCallback < 1 {
		return fmt.Errorf("min messages for callback must be >= 1, got %d", c.MinMessagesForCallback)
	}
	return nil
}

// MustValidate calls Validate and fatally exits if validation fails.
// Call this at startup before starting the server.
func (c *Config) MustValidate() {
	if err := c.Validate(); err != nil {
		log.Fatalf("[STARTUP] FATAL: Configuration validation failed: %v", err)
	}
	log.Println("[STARTUP] Configuration validated successfully")
}

// Helper functions for environment variable parsing
// These are exported for use by other packages

// GetEnv returns the value of an environment variable or a default value.
func GetEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvBool returns the boolean value of an environment variable or a default value.
func GetEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

// GetEnvFloat returns the float64 value of an environment variable or a default value.
func GetEnvFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}

// GetEnvInt returns the integer value of an environment variable or a default value.
func GetEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return defaultValue
}
