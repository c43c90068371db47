package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	OCR       OCRConfig       `yaml:"ocr" mapstructure:"ocr"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Gemini    GeminiConfig    `yaml:"gemini" mapstructure:"gemini"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Valuation ValuationConfig `yaml:"valuation" mapstructure:"valuation"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// OCRConfig configures PDF text extraction.
type OCRConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
	MistralKey    string `yaml:"mistral_api_key" mapstructure:"mistral_api_key"`
	MistralModel  string `yaml:"mistral_ocr_model" mapstructure:"mistral_ocr_model"`
}

// ExtractConfig configures the extraction backend chain.
type ExtractConfig struct {
	Backends            []string `yaml:"backends" mapstructure:"backends"`
	LLMProvider         string   `yaml:"llm_provider" mapstructure:"llm_provider"`
	MaxTokens           int64    `yaml:"max_tokens" mapstructure:"max_tokens"`
	RateLimit           float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst           int      `yaml:"rate_burst" mapstructure:"rate_burst"`
	BreakerThreshold    int      `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerCooldownSecs int      `yaml:"breaker_cooldown_secs" mapstructure:"breaker_cooldown_secs"`
	TimeoutSecs         int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// GeminiConfig holds Google Gemini API settings.
type GeminiConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// ScoringConfig configures the risk engine.
type ScoringConfig struct {
	Weights     WeightsConfig `yaml:"weights" mapstructure:"weights"`
	RegionsFile string        `yaml:"regions_file" mapstructure:"regions_file"`
}

// WeightsConfig holds the component weights of the overall score.
type WeightsConfig struct {
	LTV      float64 `yaml:"ltv" mapstructure:"ltv"`
	Debt     float64 `yaml:"debt" mapstructure:"debt"`
	Legal    float64 `yaml:"legal" mapstructure:"legal"`
	Market   float64 `yaml:"market" mapstructure:"market"`
	Building float64 `yaml:"building" mapstructure:"building"`
}

// ValuationConfig configures the valuation lookup and its fallback estimate.
type ValuationConfig struct {
	File               string  `yaml:"file" mapstructure:"file"`
	JeonseRatio        float64 `yaml:"jeonse_ratio" mapstructure:"jeonse_ratio"`
	EstimateConfidence float64 `yaml:"estimate_confidence" mapstructure:"estimate_confidence"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	MaxUploadMB int      `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("JEONSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "jeonse.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.max_upload_mb", 20)
	v.SetDefault("batch.max_concurrent", 4)
	v.SetDefault("ocr.provider", "local")
	v.SetDefault("ocr.pdftotext_path", "pdftotext")
	v.SetDefault("ocr.mistral_ocr_model", "mistral-ocr-latest")
	v.SetDefault("extract.backends", []string{"pattern", "table", "llm"})
	v.SetDefault("extract.llm_provider", "anthropic")
	v.SetDefault("extract.max_tokens", 4096)
	v.SetDefault("extract.rate_limit", 2.0)
	v.SetDefault("extract.rate_burst", 2)
	v.SetDefault("extract.breaker_threshold", 5)
	v.SetDefault("extract.breaker_cooldown_secs", 60)
	v.SetDefault("extract.timeout_secs", 90)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("scoring.weights.ltv", 0.30)
	v.SetDefault("scoring.weights.debt", 0.25)
	v.SetDefault("scoring.weights.legal", 0.25)
	v.SetDefault("scoring.weights.market", 0.10)
	v.SetDefault("scoring.weights.building", 0.10)
	v.SetDefault("valuation.jeonse_ratio", 0.7)
	v.SetDefault("valuation.estimate_confidence", 0.3)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
