package llm

import (
	"context"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// Provider abstracts a hosted completion endpoint (OpenAI, Anthropic, Ollama).
// Implementations translate transport failures into the upstream error kinds
// declared in errors.go and never retry.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	Name() string
}

// Message represents a single chat message.
type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// Schema describes the JSON object the model must return.
type Schema struct {
	Name       string
	Definition jsonschema.Definition
}

// CompletionRequest is the input for a single completion call.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
	Schema      *Schema
}

// CompletionResponse is the output from a completion call.
type CompletionResponse struct {
	ID           string  `json:"id"`
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	Content      string  `json:"content"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalTokens  int     `json:"total_tokens"`
	CostUSD      float64 `json:"cost_usd"`
	LatencyMs    int64   `json:"latency_ms"`
}

func splitSystem(msgs []Message) (system string, rest []Message) {
	for _, m := range msgs {
		if m.Role == "system" {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}
