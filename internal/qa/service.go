package qa

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/nikhilbhutani/docqa/internal/document"
	"github.com/nikhilbhutani/docqa/internal/llm"
	"github.com/nikhilbhutani/docqa/internal/metrics"
	"github.com/nikhilbhutani/docqa/internal/models"
	"github.com/nikhilbhutani/docqa/pkg/tokenizer"
)

// Generator is the completion call the service depends on. *llm.Gateway
// satisfies it.
type Generator interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error)
}

type Options struct {
	Model             string
	Temperature       float64
	MaxTokens         int
	ContextMaxChars   int
	MaxQuestionLength int
}

type Service struct {
	store *document.Store
	gen   Generator
	opts  Options
}

func NewService(store *document.Store, gen Generator, opts Options) *Service {
	return &Service{store: store, gen: gen, opts: opts}
}

// Ask answers question from the content of one document. The whole document,
// cut to ContextMaxChars, is the context.
func (s *Service) Ask(ctx context.Context, documentID, question string) (*models.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, models.NewValidationError("question_text", "must not be empty")
	}
	if s.opts.MaxQuestionLength > 0 && tokenizer.CountChars(question) > s.opts.MaxQuestionLength {
		return nil, models.NewValidationError("question_text", "must be at most %d characters", s.opts.MaxQuestionLength)
	}

	doc, err := s.store.Get(documentID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	content := doc.Content
	if cut, truncated := tokenizer.Truncate(content, s.opts.ContextMaxChars); truncated {
		slog.Warn("document truncated for generation",
			"document_id", doc.ID,
			"chars", doc.CharacterCount,
			"max_chars", s.opts.ContextMaxChars,
		)
		content = cut + truncationMarker
	}

	userPrompt := buildUserPrompt(doc.Title, content, question)
	slog.Info("answering question",
		"document_id", doc.ID,
		"title", doc.Title,
		"question", preview(question, 80),
		"est_tokens", tokenizer.CountTokens(systemPrompt)+tokenizer.CountTokens(userPrompt),
	)

	resp, err := s.gen.Complete(ctx, llm.CompletionRequest{
		Model: s.opts.Model,
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: s.opts.Temperature,
		MaxTokens:   s.opts.MaxTokens,
		Schema:      answerSchema,
	})
	if err != nil {
		metrics.GenerationFailures.WithLabelValues(failureKind(err)).Inc()
		return nil, err
	}

	parsed, err := parseAnswer(resp.Content)
	if err != nil {
		metrics.GenerationFailures.WithLabelValues("format").Inc()
		slog.Error("unparseable model output",
			"document_id", doc.ID,
			"error", err,
			"output", preview(resp.Content, 500),
		)
		return nil, err
	}

	quotes, dropped := groundQuotes(doc.Content, parsed.Quotes)
	if dropped > 0 {
		metrics.QuotesDropped.Add(float64(dropped))
		slog.Warn("dropped quotes not found in document", "document_id", doc.ID, "dropped", dropped)
	}

	model := resp.Model
	if model == "" {
		model = s.opts.Model
	}

	answer := &models.Answer{
		AnswerText:       parsed.Text,
		Confidence:       parsed.Confidence,
		SourceQuotes:     quotes,
		NotFound:         parsed.Confidence == models.ConfidenceNotFound,
		DocumentID:       doc.ID,
		DocumentTitle:    doc.Title,
		Question:         question,
		ModelUsed:        model,
		ProcessingTimeMs: float64(time.Since(start).Microseconds()) / 1000,
	}

	metrics.QuestionsAnswered.WithLabelValues(string(answer.Confidence)).Inc()
	slog.Info("answer generated",
		"document_id", doc.ID,
		"confidence", answer.Confidence,
		"quotes", len(quotes),
		"latency_ms", resp.LatencyMs,
	)
	return answer, nil
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, llm.ErrUpstreamRateLimited):
		return "rate_limited"
	case errors.Is(err, llm.ErrUpstreamAuth):
		return "auth"
	case errors.Is(err, llm.ErrUpstreamRejected):
		return "rejected"
	default:
		return "unavailable"
	}
}

func preview(s string, n int) string {
	out, cut := tokenizer.Truncate(s, n)
	if cut {
		return out + "..."
	}
	return out
}
