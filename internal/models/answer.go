package models

import "strings"

// Confidence labels how well an answer is supported by the document.
type Confidence string

const (
	ConfidenceHigh     Confidence = "high"
	ConfidenceMedium   Confidence = "medium"
	ConfidenceLow      Confidence = "low"
	ConfidenceNotFound Confidence = "not_found"
)

// Confidences lists every valid label, strongest first.
var Confidences = []Confidence{ConfidenceHigh, ConfidenceMedium, ConfidenceLow, ConfidenceNotFound}

// ParseConfidence normalises a label. ok is false for anything outside the
// enumeration.
func ParseConfidence(s string) (Confidence, bool) {
	c := Confidence(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_"))
	for _, v := range Confidences {
		if c == v {
			return c, true
		}
	}
	return "", false
}

// Answer is the grounded response to one question. It is built per request
// and never stored.
type Answer struct {
	AnswerText       string     `json:"answer_text"`
	Confidence       Confidence `json:"confidence"`
	SourceQuotes     []string   `json:"source_quotes"`
	NotFound         bool       `json:"not_found"`
	DocumentID       string     `json:"document_id"`
	DocumentTitle    string     `json:"document_title"`
	Question         string     `json:"question"`
	ModelUsed        string     `json:"model_used"`
	ProcessingTimeMs float64    `json:"processing_time_ms"`
}
