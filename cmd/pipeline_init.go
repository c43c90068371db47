package main

import (
	"context"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/jeonse-risk/internal/config"
	"github.com/sells-group/jeonse-risk/internal/extract"
	"github.com/sells-group/jeonse-risk/internal/ocr"
	"github.com/sells-group/jeonse-risk/internal/pipeline"
	"github.com/sells-group/jeonse-risk/internal/resilience"
	"github.com/sells-group/jeonse-risk/internal/risk"
	"github.com/sells-group/jeonse-risk/internal/store"
	"github.com/sells-group/jeonse-risk/internal/valuation"
	anthropicpkg "github.com/sells-group/jeonse-risk/pkg/anthropic"
	"github.com/sells-group/jeonse-risk/pkg/gemini"
)

// appEnv holds the analyzer and everything the assess/batch/serve commands
// share.
type appEnv struct {
	Analyzer *pipeline.Analyzer
	Engine   *risk.Engine
	OCR      ocr.Extractor
	Store    store.Store // nil unless requested
	Registry *prometheus.Registry
	closers  []func() error
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	for _, c := range e.closers {
		if err := c(); err != nil {
			zap.L().Warn("close resource", zap.Error(err))
		}
	}
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initApp validates config for mode and builds the analyzer. When
// withStore is set the store is opened and migrated. Callers should defer
// env.Close().
func initApp(ctx context.Context, mode string, withStore bool) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	env := &appEnv{Registry: prometheus.NewRegistry()}
	env.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	engine, err := buildEngine(cfg)
	if err != nil {
		return nil, err
	}
	env.Engine = engine

	chain, closers, err := buildChain(ctx, cfg)
	if err != nil {
		return nil, err
	}
	env.closers = append(env.closers, closers...)

	opts := []pipeline.Option{
		pipeline.WithEstimate(cfg.Valuation.JeonseRatio, cfg.Valuation.EstimateConfidence),
		pipeline.WithMetrics(pipeline.NewMetrics(env.Registry)),
	}
	if cfg.Valuation.File != "" {
		p, err := valuation.LoadFile(cfg.Valuation.File)
		if err != nil {
			env.Close()
			return nil, err
		}
		zap.L().Info("loaded valuations", zap.String("file", cfg.Valuation.File), zap.Int("addresses", p.Len()))
		opts = append(opts, pipeline.WithValuation(p))
	}
	env.Analyzer = pipeline.NewAnalyzer(chain, engine, opts...)

	ext, err := ocr.NewExtractor(cfg.OCR)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.OCR = ext

	if withStore {
		st, err := initStore(ctx, cfg.Store)
		if err != nil {
			env.Close()
			return nil, err
		}
		env.Store = st
		if err := st.Migrate(ctx); err != nil {
			env.Close()
			return nil, eris.Wrap(err, "migrate store")
		}
	}
	return env, nil
}

func initStore(ctx context.Context, sc config.StoreConfig) (store.Store, error) {
	switch sc.Driver {
	case "sqlite", "":
		dsn := sc.DatabaseURL
		if dsn == "" {
			dsn = "jeonse.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, sc.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", sc.Driver)
	}
}

// buildEngine loads the region table and weights from config.
func buildEngine(c *config.Config) (*risk.Engine, error) {
	regions := risk.DefaultRegions()
	if c.Scoring.RegionsFile != "" {
		r, err := risk.LoadRegions(c.Scoring.RegionsFile)
		if err != nil {
			return nil, err
		}
		regions = r
	}
	w := risk.Weights{
		LTV:      c.Scoring.Weights.LTV,
		Debt:     c.Scoring.Weights.Debt,
		Legal:    c.Scoring.Weights.Legal,
		Market:   c.Scoring.Weights.Market,
		Building: c.Scoring.Weights.Building,
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return risk.NewEngine(regions, risk.WithWeights(w)), nil
}

// buildChain assembles the extraction backends in configured order. An LLM
// backend without credentials is left out of the chain.
func buildChain(ctx context.Context, c *config.Config) (*extract.Chain, []func() error, error) {
	catalog := extract.DefaultCatalog()
	var backends []extract.Extractor
	var closers []func() error

	for _, name := range c.Extract.Backends {
		switch name {
		case extract.BackendPattern:
			backends = append(backends, extract.NewPatternExtractor(catalog))
		case extract.BackendTable:
			backends = append(backends, extract.NewTableExtractor(catalog))
		case extract.BackendLLM:
			completer, closer, err := buildCompleter(ctx, c)
			if err != nil {
				return nil, nil, err
			}
			if closer != nil {
				closers = append(closers, closer)
			}
			if completer == nil {
				zap.L().Warn("llm backend disabled", zap.String("provider", c.Extract.LLMProvider))
				continue
			}
			backends = append(backends, extract.NewLLMExtractor(completer,
				extract.WithRateLimit(c.Extract.RateLimit, c.Extract.RateBurst),
				extract.WithBreaker(resilience.NewBreaker("llm",
					c.Extract.BreakerThreshold,
					time.Duration(c.Extract.BreakerCooldownSecs)*time.Second,
				)),
			))
		default:
			return nil, nil, eris.Errorf("extract: unknown backend %q", name)
		}
	}

	chain := extract.NewChain(backends...)
	zap.L().Debug("extraction chain ready", zap.Strings("backends", chain.Backends()))
	return chain, closers, nil
}

// buildCompleter returns nil when the provider is disabled or has no key.
func buildCompleter(ctx context.Context, c *config.Config) (extract.Completer, func() error, error) {
	switch c.Extract.LLMProvider {
	case "anthropic":
		if c.Anthropic.Key == "" {
			return nil, nil, nil
		}
		var opts []option.RequestOption
		if c.Extract.TimeoutSecs > 0 {
			opts = append(opts, option.WithRequestTimeout(time.Duration(c.Extract.TimeoutSecs)*time.Second))
		}
		return &extract.AnthropicCompleter{
			Client:    anthropicpkg.NewClient(c.Anthropic.Key, opts...),
			Model:     c.Anthropic.Model,
			MaxTokens: c.Extract.MaxTokens,
		}, nil, nil
	case "gemini":
		if c.Gemini.Key == "" {
			return nil, nil, nil
		}
		client, err := gemini.NewClient(ctx, c.Gemini.Key, c.Gemini.Model)
		if err != nil {
			return nil, nil, err
		}
		return &extract.GeminiCompleter{Client: client}, client.Close, nil
	default:
		return nil, nil, nil
	}
}
