package qa

import (
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/nikhilbhutani/docqa/internal/llm"
)

const truncationMarker = "\n\n[... Document truncated for processing ...]"

const systemPrompt = `You are a precise document analyst. You answer questions ONLY from
the document provided. Accuracy matters more than helpfulness: saying
"not found" is better than guessing.

RULES:
1. Use only information explicitly stated in the document.
2. If the answer is not in the document, say so plainly.
3. Support the answer with short quotes copied word for word from the document.
4. If the question is ambiguous, answer what the document supports and mention the ambiguity.
5. Never use outside knowledge.

Return ONLY a JSON object with this shape:
{
  "answer": "your answer based on the document",
  "confidence": "high" | "medium" | "low" | "not_found",
  "source_quotes": ["exact quote from the document", "..."],
  "not_found": false
}

When the document does not contain the answer:
{
  "answer": "This information is not present in the provided document.",
  "confidence": "not_found",
  "source_quotes": [],
  "not_found": true
}

Confidence:
- high: the answer is stated directly and clearly in the document
- medium: the answer needs some interpretation or inference
- low: the document only partly addresses the question
- not_found: the document does not contain the answer`

// answerSchema is the structured output requested from the model.
var answerSchema = &llm.Schema{
	Name: "document_answer",
	Definition: jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"answer": {
				Type:        jsonschema.String,
				Description: "Answer grounded in the document",
			},
			"confidence": {
				Type: jsonschema.String,
				Enum: []string{"high", "medium", "low", "not_found"},
			},
			"source_quotes": {
				Type:  jsonschema.Array,
				Items: &jsonschema.Definition{Type: jsonschema.String},
			},
			"not_found": {
				Type: jsonschema.Boolean,
			},
		},
		Required:             []string{"answer", "confidence", "source_quotes", "not_found"},
		AdditionalProperties: false,
	},
}

// buildUserPrompt delimits the document and the question so the model can
// tell them apart.
func buildUserPrompt(title, content, question string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== DOCUMENT TITLE: %s ===\n\n", title)
	sb.WriteString(content)
	sb.WriteString("\n\n=== END OF DOCUMENT ===\n\n")
	sb.WriteString("=== QUESTION ===\n")
	sb.WriteString(question)
	sb.WriteString("\n=== END OF QUESTION ===\n\n")
	sb.WriteString("Answer the question using ONLY the document above.")
	return sb.String()
}
