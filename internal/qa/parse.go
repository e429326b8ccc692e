package qa

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nikhilbhutani/docqa/internal/models"
)

// ErrGenerationFormat means the model output did not decode into an answer.
var ErrGenerationFormat = errors.New("model output does not match the answer format")

// notFoundAnswer stands in for an empty answer when the model reports that the
// document does not contain one. It matches the text the system prompt asks for.
const notFoundAnswer = "This information is not present in the provided document."

type rawAnswer struct {
	Answer       *string   `json:"answer"`
	Confidence   *string   `json:"confidence"`
	SourceQuotes *[]string `json:"source_quotes"`
	NotFound     bool      `json:"not_found"`
}

type parsedAnswer struct {
	Text       string
	Confidence models.Confidence
	Quotes     []string
}

// parseAnswer decodes the model output strictly. Markdown code fences are
// tolerated; anything else outside one JSON object is not.
func parseAnswer(content string) (*parsedAnswer, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	dec := json.NewDecoder(bytes.NewReader([]byte(content)))
	var raw rawAnswer
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFormat, err)
	}
	if err := dec.Decode(&json.RawMessage{}); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after JSON object", ErrGenerationFormat)
	}

	if raw.Answer == nil {
		return nil, fmt.Errorf("%w: missing answer", ErrGenerationFormat)
	}
	if raw.Confidence == nil {
		return nil, fmt.Errorf("%w: missing confidence", ErrGenerationFormat)
	}
	conf, ok := models.ParseConfidence(*raw.Confidence)
	if !ok {
		return nil, fmt.Errorf("%w: unknown confidence %q", ErrGenerationFormat, *raw.Confidence)
	}
	if raw.SourceQuotes == nil {
		return nil, fmt.Errorf("%w: missing source_quotes", ErrGenerationFormat)
	}

	if raw.NotFound {
		conf = models.ConfidenceNotFound
	}

	text := strings.TrimSpace(*raw.Answer)
	if text == "" {
		if conf != models.ConfidenceNotFound {
			return nil, fmt.Errorf("%w: empty answer", ErrGenerationFormat)
		}
		text = notFoundAnswer
	}

	quotes := make([]string, 0, len(*raw.SourceQuotes))
	for _, q := range *raw.SourceQuotes {
		if q = strings.TrimSpace(q); q != "" {
			quotes = append(quotes, q)
		}
	}

	return &parsedAnswer{
		Text:       text,
		Confidence: conf,
		Quotes:     quotes,
	}, nil
}

// groundQuotes keeps the quotes that occur in content, comparing with
// whitespace collapsed and surrounding quote marks removed. The kept quote is
// the exact span from content.
func groundQuotes(content string, quotes []string) (kept []string, dropped int) {
	norm, offsets := normalizeWithOffsets(content)
	kept = make([]string, 0, len(quotes))
	for _, q := range quotes {
		nq, _ := normalizeWithOffsets(strings.Trim(q, "\"'“”‘’"))
		if nq == "" {
			dropped++
			continue
		}
		i := strings.Index(norm, nq)
		if i < 0 {
			dropped++
			continue
		}
		start := offsets[i]
		end := min(offsets[i+len(nq)-1]+1, len(content))
		kept = append(kept, content[start:end])
	}
	return kept, dropped
}

// normalizeWithOffsets collapses whitespace runs to one space and trims the
// ends. offsets[i] is the byte position in s of byte i of the result.
func normalizeWithOffsets(s string) (string, []int) {
	var (
		buf     strings.Builder
		offsets = make([]int, 0, len(s))
		space   bool
	)
	for i, r := range s {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' || r == '\f' || r == '\v' {
			space = buf.Len() > 0
			continue
		}
		if space {
			buf.WriteByte(' ')
			offsets = append(offsets, i)
			space = false
		}
		n := buf.Len()
		buf.WriteRune(r)
		for j := 0; j < buf.Len()-n; j++ {
			offsets = append(offsets, i+j)
		}
	}
	return buf.String(), offsets
}
