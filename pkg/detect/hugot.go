package detect

// hugot.go - Local ML-based scam classification using Hugot/ONNX
//
// Runs a text-classification model fully locally through ONNX Runtime,
// with a pure-Go backend fallback when the runtime library is absent.
// The detector degrades gracefully: if no model can be loaded, Ready()
// stays false and the aggregator falls back to rules + intent.

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/options"
	"github.com/knights-analytics/hugot/pipelines"
)

// HugotClassifier provides local ML-based scam classification.
type HugotClassifier struct {
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
	mu       sync.RWMutex
	config   HugotConfig
	ready    bool
}

// HugotConfig configures the Hugot classifier.
type HugotConfig struct {
	// ModelPath is the local path to the ONNX model directory.
	ModelPath string

	// ModelName is the HuggingFace model name, used to download the
	// model when ModelPath is empty or missing.
	ModelName string

	// OnnxLibraryPath is the directory containing libonnxruntime.
	OnnxLibraryPath string

	// BatchSize is the maximum batch size for inference (default: 32).
	BatchSize int

	// Timeout is the maximum time for a single inference call.
	Timeout time.Duration
}

// modelSearchPaths lists where to look for a local model, in priority order.
var modelSearchPaths = []string{
	"./models/scam-classifier",
	"./models/distilbert-scam",
	"./models",
}

// AutoDetectConfig finds a usable local model. HONEYPOT_MODEL_PATH wins;
// otherwise the standard locations are searched for a model.onnx.
// Returns nil when no model is found.
func AutoDetectConfig() *HugotConfig {
	if envPath := os.Getenv("HONEYPOT_MODEL_PATH"); envPath != "" {
		if _, err := os.Stat(filepath.Join(envPath, "model.onnx")); err == nil {
			log.Printf("Using model from HONEYPOT_MODEL_PATH: %s", envPath)
			return &HugotConfig{
				ModelPath:       envPath,
				OnnxLibraryPath: defaultOnnxPath(),
				BatchSize:       32,
				Timeout:         30 * time.Second,
			}
		}
	}

	for _, path := range modelSearchPaths {
		if _, err := os.Stat(filepath.Join(path, "model.onnx")); err == nil {
			log.Printf("Auto-detected model at %s", path)
			return &HugotConfig{
				ModelPath:       path,
				OnnxLibraryPath: defaultOnnxPath(),
				BatchSize:       32,
				Timeout:         30 * time.Second,
			}
		}
	}

	log.Printf("[ML] No local ONNX model found; running rules + intent only")
	log.Printf("[ML] Set HONEYPOT_MODEL_PATH to a directory containing model.onnx to enable ML scoring")
	return nil
}

// ModelInfo describes a locally installed classifier model.
type ModelInfo struct {
	Name string
	Path string
	Size string
}

// ListAvailableModels reports the model.onnx files found in the standard
// search locations, including HONEYPOT_MODEL_PATH.
func ListAvailableModels() []ModelInfo {
	paths := modelSearchPaths
	if envPath := os.Getenv("HONEYPOT_MODEL_PATH"); envPath != "" {
		paths = append([]string{envPath}, paths...)
	}

	var models []ModelInfo
	seen := make(map[string]struct{})
	for _, path := range paths {
		onnx := filepath.Join(path, "model.onnx")
		info, err := os.Stat(onnx)
		if err != nil {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		if _, dup := seen[abs]; dup {
			continue
		}
		seen[abs] = struct{}{}
		models = append(models, ModelInfo{
			Name: filepath.Base(abs),
			Path: abs,
			Size: fmt.Sprintf("%.1f MB", float64(info.Size())/(1024*1024)),
		})
	}
	return models
}

// defaultOnnxPath returns the ONNX Runtime library directory for this platform.
func defaultOnnxPath() string {
	paths := []string{
		"/usr/lib/libonnxruntime.so",
		"/usr/local/lib/libonnxruntime.so",
		"/opt/homebrew/lib/libonnxruntime.dylib",
		"/usr/local/lib/libonnxruntime.dylib",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return filepath.Dir(p)
		}
	}
	return ""
}

// NewHugotClassifier creates a classifier with the given configuration.
func NewHugotClassifier(cfg HugotConfig) (*HugotClassifier, error) {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 32
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	c := &HugotClassifier{config: cfg}
	if err := c.initialize(); err != nil {
		return nil, fmt.Errorf("hugot initialization failed: %w", err)
	}
	return c, nil
}

// NewHugotClassifierWithFallback creates a classifier that degrades
// gracefully: on failure it returns an instance with ready=false instead
// of an error, so the rest of the pipeline keeps running.
func NewHugotClassifierWithFallback(cfg HugotConfig) *HugotClassifier {
	c, err := NewHugotClassifier(cfg)
	if err != nil {
		log.Printf("WARNING: Hugot classifier initialization failed (graceful degradation): %v", err)
		return &HugotClassifier{config: cfg, ready: false}
	}
	return c
}

// NewAutoDetectedClassifier creates a classifier from auto-detected models.
// Returns nil if no model is available.
func NewAutoDetectedClassifier() *HugotClassifier {
	cfg := AutoDetectConfig()
	if cfg == nil {
		return nil
	}
	return NewHugotClassifierWithFallback(*cfg)
}

func (c *HugotClassifier) initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, err := c.createSession()
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	c.session = session

	modelPath, err := c.resolveModelPath()
	if err != nil {
		_ = c.session.Destroy()
		return fmt.Errorf("failed to resolve model path: %w", err)
	}

	pipeline, err := hugot.NewPipeline(session, hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "scam-classifier",
	})
	if err != nil {
		_ = c.session.Destroy()
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	c.pipeline = pipeline
	c.ready = true
	log.Printf("Hugot classifier initialized successfully (model: %s)", modelPath)
	return nil
}

// createSession prefers the ONNX Runtime backend and falls back to the
// pure Go backend when the runtime library is unavailable.
func (c *HugotClassifier) createSession() (*hugot.Session, error) {
	if c.config.OnnxLibraryPath != "" {
		session, err := hugot.NewORTSession(
			options.WithOnnxLibraryPath(c.config.OnnxLibraryPath),
		)
		if err == nil {
			log.Printf("Hugot using ONNX Runtime backend")
			return session, nil
		}
		log.Printf("ONNX Runtime unavailable, falling back to Go backend: %v", err)
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create Go session: %w", err)
	}
	log.Printf("Hugot using pure Go backend (slower, consider installing ONNX Runtime)")
	return session, nil
}

func (c *HugotClassifier) resolveModelPath() (string, error) {
	if c.config.ModelPath != "" {
		if _, err := os.Stat(c.config.ModelPath); err == nil {
			return c.config.ModelPath, nil
		}
	}

	if c.config.ModelName == "" {
		return "", fmt.Errorf("no model path or name specified")
	}

	modelsDir := "./models"
	if err := os.MkdirAll(modelsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create models directory: %w", err)
	}

	log.Printf("Downloading model %s...", c.config.ModelName)
	modelPath, err := hugot.DownloadModel(c.config.ModelName, modelsDir, hugot.NewDownloadOptions())
	if err != nil {
		return "", fmt.Errorf("failed to download model: %w", err)
	}
	log.Printf("Model downloaded to %s", modelPath)
	return modelPath, nil
}

// Ready reports whether the classifier is initialized and usable.
func (c *HugotClassifier) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// Classify scores a single message.
func (c *HugotClassifier) Classify(ctx context.Context, text string) (Prediction, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.ready || c.pipeline == nil {
		return Prediction{}, fmt.Errorf("classifier not ready")
	}

	result, err := c.pipeline.RunPipeline([]string{text})
	if err != nil {
		return Prediction{}, fmt.Errorf("classification failed: %w", err)
	}

	if len(result.ClassificationOutputs) == 0 || len(result.ClassificationOutputs[0]) == 0 {
		return Prediction{}, fmt.Errorf("no results returned")
	}

	out := result.ClassificationOutputs[0][0]
	return Prediction{Label: out.Label, Confidence: float64(out.Score)}, nil
}

// Close releases resources held by the classifier.
func (c *HugotClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ready = false
	if c.session != nil {
		if err := c.session.Destroy(); err != nil {
			return fmt.Errorf("failed to destroy session: %w", err)
		}
	}
	return nil
}
