package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/andrewpaige1/mindmap-api/config"
	"github.com/andrewpaige1/mindmap-api/extract"
	"github.com/andrewpaige1/mindmap-api/llm"
	"github.com/andrewpaige1/mindmap-api/logger"
	"github.com/andrewpaige1/mindmap-api/mindmap"
)

const redisKeyPrefix = "mindmap:llm:"

// pipeline is everything needed to turn uploads and text into mind maps.
type pipeline struct {
	generator *mindmap.Generator
	extractor *extract.Extractor
	closers   []func() error
}

func (p *pipeline) Close() {
	for _, c := range p.closers {
		_ = c()
	}
}

func buildPipeline(ctx context.Context, cfg config.Config, log *logger.Logger) (*pipeline, error) {
	p := &pipeline{}

	var gemini *llm.Gemini
	if cfg.GeminiAPIKey != "" {
		g, err := llm.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		gemini = g
	}

	provider, err := baseProvider(cfg, gemini, log)
	if err != nil {
		return nil, err
	}
	if cfg.LLMProvider != "none" {
		var mws []llm.Middleware
		store, closeStore, err := cacheStore(cfg, log)
		if err != nil {
			return nil, err
		}
		if store != nil {
			mws = append(mws, llm.Cache(store))
		}
		if closeStore != nil {
			p.closers = append(p.closers, closeStore)
		}
		mws = append(mws, llm.Retry(cfg.LLMMaxAttempts, cfg.RetryDelay(), 2), llm.Timeout(cfg.LLMTimeout()))
		provider = llm.Chain(provider, mws...)
	}
	p.generator = mindmap.NewGenerator(provider, log)

	var ocr extract.OCR
	if gemini != nil {
		ocr = extract.NewGeminiOCR(gemini.Client(), gemini.Model())
	}
	p.extractor = extract.New(ocr)

	log.Info("mind map pipeline ready", "provider", provider.Name(), "ocr", ocr != nil)
	return p, nil
}

// baseProvider picks the configured model. A missing API key leaves the
// service usable in fallback mode instead of refusing to start.
func baseProvider(cfg config.Config, gemini *llm.Gemini, log *logger.Logger) (llm.Provider, error) {
	switch cfg.LLMProvider {
	case "openai":
		client, err := llm.NewOpenAI(llm.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
			Timeout: cfg.LLMTimeout(),
		})
		if err != nil {
			log.Warn("openai not configured, every map will use the local fallback", "error", err)
			return llm.Offline(), nil
		}
		return client, nil
	case "gemini":
		if gemini == nil {
			log.Warn("gemini not configured, every map will use the local fallback", "env", "GEMINI_API_KEY")
			return llm.Offline(), nil
		}
		return gemini, nil
	case "none":
		return llm.Offline(), nil
	}
	return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
}

// cacheStore returns an in-process LRU, fronting redis when REDIS_URL is set.
func cacheStore(cfg config.Config, log *logger.Logger) (llm.Store, func() error, error) {
	if cfg.CacheSize <= 0 {
		return nil, nil, nil
	}
	local := llm.NewLRUStore(cfg.CacheSize, cfg.CacheTTL())
	if cfg.RedisURL == "" {
		return local, nil, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	log.Info("completion cache backed by redis", "addr", opts.Addr)
	return llm.Tiered{local, llm.NewRedisStore(rdb, redisKeyPrefix, cfg.CacheTTL())}, rdb.Close, nil
}
