package mindmap

import (
	"context"

	"github.com/andrewpaige1/mindmap-api/llm"
	"github.com/andrewpaige1/mindmap-api/logger"
	"github.com/andrewpaige1/mindmap-api/models"
)

// Result is a generated mind map and where it came from.
type Result struct {
	MindMap *models.MindMap
	Source  string // models.SourceLLM or models.SourceFallback
}

// Generator turns text into a mind map, asking provider first and falling
// back to GenerateFallback when the answer is missing or unusable. It holds no
// per-request state and is safe for concurrent use.
type Generator struct {
	provider llm.Provider
	log      *logger.Logger
}

func NewGenerator(provider llm.Provider, log *logger.Logger) *Generator {
	if log == nil {
		log = logger.NewNop()
	}
	return &Generator{provider: provider, log: log}
}

// Generate always returns a mind map.
func (g *Generator) Generate(ctx context.Context, text string) Result {
	log := g.log.With("text_len", len(text))

	if g.provider == nil {
		return g.fallback(log, text, "no_provider", nil)
	}

	prompt := BuildPrompt(text)
	log.Debug("requesting mind map", "provider", g.provider.Name(), "prompt_len", len(prompt))

	completion, err := g.provider.Complete(ctx, prompt)
	if err != nil {
		return g.fallback(log, text, "provider_error", err)
	}

	candidate, ok := ExtractJSON(completion)
	if !ok {
		return g.fallback(log, text, "no_json", nil)
	}
	m, ok := Parse(candidate)
	if !ok {
		return g.fallback(log, text, "decode_error", nil)
	}

	log.Debug("parsed mind map", "stats", m.Stats())
	return Result{MindMap: m, Source: models.SourceLLM}
}

func (g *Generator) fallback(log *logger.Logger, text, reason string, err error) Result {
	if err != nil {
		log.Warn("falling back to local mind map", "reason", reason, "error", err)
	} else {
		log.Warn("falling back to local mind map", "reason", reason)
	}
	return Result{MindMap: GenerateFallback(text), Source: models.SourceFallback}
}
