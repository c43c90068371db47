package config

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
)

var (
	storeDrivers = []string{"sqlite", "postgres"}
	ocrProviders = []string{"local", "mistral"}
	backendNames = []string{"pattern", "table", "llm"}
	llmProviders = []string{"anthropic", "gemini", "none"}
)

// Validate checks the configuration for the given command mode: "assess",
// "batch" or "serve". All problems are reported together.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "assess", "batch":
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if !slices.Contains(storeDrivers, c.Store.Driver) {
		errs = append(errs, fmt.Sprintf("store.driver must be one of %s", strings.Join(storeDrivers, ", ")))
	}

	if !slices.Contains(ocrProviders, c.OCR.Provider) {
		errs = append(errs, fmt.Sprintf("ocr.provider must be one of %s", strings.Join(ocrProviders, ", ")))
	}
	if c.OCR.Provider == "mistral" && c.OCR.MistralKey == "" {
		errs = append(errs, "ocr.mistral_api_key is required for the mistral provider")
	}

	if len(c.Extract.Backends) == 0 {
		errs = append(errs, "extract.backends must not be empty")
	}
	for _, b := range c.Extract.Backends {
		if !slices.Contains(backendNames, b) {
			errs = append(errs, fmt.Sprintf("extract.backends: unknown backend %q", b))
		}
	}
	if !slices.Contains(llmProviders, c.Extract.LLMProvider) {
		errs = append(errs, fmt.Sprintf("extract.llm_provider must be one of %s", strings.Join(llmProviders, ", ")))
	}
	if c.Extract.RateLimit < 0 {
		errs = append(errs, "extract.rate_limit must be >= 0")
	}

	w := c.Scoring.Weights
	if w.LTV < 0 || w.Debt < 0 || w.Legal < 0 || w.Market < 0 || w.Building < 0 {
		errs = append(errs, "scoring.weights values must be >= 0")
	}
	if sum := w.LTV + w.Debt + w.Legal + w.Market + w.Building; math.Abs(sum-1) > 0.001 {
		errs = append(errs, fmt.Sprintf("scoring.weights should sum to 1, got %.3f", sum))
	}

	if c.Valuation.JeonseRatio <= 0 || c.Valuation.JeonseRatio > 1 {
		errs = append(errs, "valuation.jeonse_ratio must be > 0 and <= 1")
	}
	if c.Valuation.EstimateConfidence < 0 || c.Valuation.EstimateConfidence > 1 {
		errs = append(errs, "valuation.estimate_confidence must be between 0 and 1")
	}

	if c.Batch.MaxConcurrent < 1 || c.Batch.MaxConcurrent > 50 {
		errs = append(errs, "batch.max_concurrent must be between 1 and 50")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
