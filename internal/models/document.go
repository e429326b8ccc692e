package models

import "time"

// Document is a stored unit of text. ID and CreatedAt are fixed at creation
// and Content is never updated.
type Document struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	WordCount      int       `json:"word_count"`
	CharacterCount int       `json:"character_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// DocumentSummary is the list view of a Document; it never carries content.
type DocumentSummary struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	WordCount      int       `json:"word_count"`
	CharacterCount int       `json:"character_count"`
	CreatedAt      time.Time `json:"created_at"`
}

func (d *Document) Summary() DocumentSummary {
	return DocumentSummary{
		ID:             d.ID,
		Title:          d.Title,
		WordCount:      d.WordCount,
		CharacterCount: d.CharacterCount,
		CreatedAt:      d.CreatedAt,
	}
}
