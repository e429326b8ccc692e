package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nikhilbhutani/docqa/internal/config"
	"github.com/nikhilbhutani/docqa/internal/metrics"
)

// Gateway fronts the configured provider with a fixed model and a per-call
// deadline. It does not retry.
type Gateway struct {
	provider Provider
	model    string
	timeout  time.Duration
}

func NewGateway(cfg config.LLMConfig) *Gateway {
	g := &Gateway{
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}

	switch cfg.Provider {
	case "openai":
		if cfg.OpenAIKey != "" {
			g.provider = NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIBaseURL)
		}
	case "anthropic":
		if cfg.AnthropicKey != "" {
			g.provider = NewAnthropicProvider(cfg.AnthropicKey)
		}
	case "ollama":
		if cfg.OllamaURL != "" {
			g.provider = NewOllamaProvider(cfg.OllamaURL)
		}
	}

	if g.provider == nil {
		slog.Warn("generation provider not configured", "provider", cfg.Provider)
	}
	return g
}

// NewGatewayWithProvider wraps an already built provider.
func NewGatewayWithProvider(p Provider, model string, timeout time.Duration) *Gateway {
	return &Gateway{provider: p, model: model, timeout: timeout}
}

func (g *Gateway) Model() string { return g.model }

func (g *Gateway) Name() string {
	if g.provider == nil {
		return ""
	}
	return g.provider.Name()
}

// Ready reports ErrNotConfigured when no provider could be built.
func (g *Gateway) Ready() error {
	if g.provider == nil {
		return ErrNotConfigured
	}
	return nil
}

func (g *Gateway) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if g.provider == nil {
		return nil, ErrNotConfigured
	}
	if req.Model == "" {
		req.Model = g.model
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.provider.Complete(ctx, req)
	metrics.GenerationDuration.WithLabelValues(g.provider.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		if Kind(err) == nil && ctx.Err() != nil {
			err = classify(g.provider.Name(), 0, fmt.Errorf("%w: %w", ctx.Err(), err))
		}
		return nil, err
	}

	metrics.GenerationCost.WithLabelValues(resp.Provider, req.Model).Add(resp.CostUSD)
	slog.Debug("generation complete",
		"provider", resp.Provider,
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"latency_ms", resp.LatencyMs,
	)
	return resp, nil
}
