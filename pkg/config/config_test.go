package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultDetectionConfig(t *testing.T) {
	d := DefaultDetectionConfig()

	if d.SafeThreshold != 0.35 || d.ScamThreshold != 0.60 {
		t.Errorf("risk thresholds = %.2f/%.2f, want 0.35/0.60", d.SafeThreshold, d.ScamThreshold)
	}
	if d.HighConfidence != 0.75 || d.LowConfidence != 0.45 {
		t.Errorf("confidence bands = %.2f/%.2f, want 0.75/0.45", d.HighConfidence, d.LowConfidence)
	}
	if d.SessionDetectThreshold != 0.51 || d.MinScammerMessages != 2 {
		t.Errorf("session detect = %.2f/%d, want 0.51/2", d.SessionDetectThreshold, d.MinScammerMessages)
	}
}

func TestDetectionConfigYAMLOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "detection.yaml")
	yaml := "scam_threshold: 0.7\nreview_band_high: 0.75\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	d := DefaultDetectionConfig()
	if err := d.LoadFile(path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if d.ScamThreshold != 0.7 {
		t.Errorf("ScamThreshold = %.2f, want 0.7 from file", d.ScamThreshold)
	}
	if d.ReviewBandHigh != 0.75 {
		t.Errorf("ReviewBandHigh = %.2f, want 0.75 from file", d.ReviewBandHigh)
	}
	// Untouched fields keep defaults.
	if d.SafeThreshold != 0.35 {
		t.Errorf("SafeThreshold = %.2f, want default 0.35", d.SafeThreshold)
	}
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.APIKey = "test-key"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	cfg.Detection.SafeThreshold = 0.9 // above scam threshold
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for safe >= scam threshold")
	}

	cfg = NewDefaultConfig()
	cfg.APIKey = "test-key"
	cfg.MinMessagesForCallback = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero callback minimum")
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("HONEYPOT_TEST_STR", "hello")
	t.Setenv("HONEYPOT_TEST_INT", "42")
	t.Setenv("HONEYPOT_TEST_FLOAT", "0.5")
	t.Setenv("HONEYPOT_TEST_BOOL", "true")

	if v := GetEnv("HONEYPOT_TEST_STR", "x"); v != "hello" {
		t.Errorf("GetEnv = %q", v)
	}
	if v := GetEnvInt("HONEYPOT_TEST_INT", 0); v != 42 {
		t.Errorf("GetEnvInt = %d", v)
	}
	if v := GetEnvFloat("HONEYPOT_TEST_FLOAT", 0); v != 0.5 {
		t.Errorf("GetEnvFloat = %f", v)
	}
	if v := GetEnvBool("HONEYPOT_TEST_BOOL", false); !v {
		t.Error("GetEnvBool = false, want true")
	}
	if v := GetEnvInt("HONEYPOT_TEST_MISSING", 7); v != 7 {
		t.Errorf("GetEnvInt default = %d, want 7", v)
	}
}
