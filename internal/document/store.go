package document

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/docqa/internal/metrics"
	"github.com/nikhilbhutani/docqa/internal/models"
	"github.com/nikhilbhutani/docqa/pkg/tokenizer"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrStoreFull = errors.New("document store is full")
)

const MaxTitleLength = 200

// Store keeps documents in memory for the lifetime of the process. A single
// RWMutex guards the map and the insertion order.
type Store struct {
	mu        sync.RWMutex
	docs      map[string]*models.Document
	order     []string
	maxDocs   int
	maxLength int
	now       func() time.Time
}

type StoreOption func(*Store)

// WithLimits caps the number of stored documents and the content length in
// characters. Zero leaves a limit unset.
func WithLimits(maxDocs, maxLength int) StoreOption {
	return func(s *Store) {
		s.maxDocs = maxDocs
		s.maxLength = maxLength
	}
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		docs: make(map[string]*models.Document),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	slog.Info("document store initialized", "max_documents", s.maxDocs, "max_length", s.maxLength)
	return s
}

func (s *Store) Create(title, content string) (*models.Document, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, models.NewValidationError("title", "must not be empty")
	}
	if tokenizer.CountChars(title) > MaxTitleLength {
		return nil, models.NewValidationError("title", "must be at most %d characters", MaxTitleLength)
	}
	if strings.TrimSpace(content) == "" {
		return nil, models.NewValidationError("content", "must not be empty")
	}
	chars := tokenizer.CountChars(content)
	if s.maxLength > 0 && chars > s.maxLength {
		return nil, models.NewValidationError("content", "must be at most %d characters", s.maxLength)
	}

	doc := &models.Document{
		ID:             uuid.NewString(),
		Title:          title,
		Content:        content,
		WordCount:      tokenizer.CountWords(content),
		CharacterCount: chars,
		CreatedAt:      s.now().UTC(),
	}

	s.mu.Lock()
	if s.maxDocs > 0 && len(s.docs) >= s.maxDocs {
		s.mu.Unlock()
		return nil, ErrStoreFull
	}
	s.docs[doc.ID] = doc
	s.order = append(s.order, doc.ID)
	metrics.DocumentsStored.Set(float64(len(s.docs)))
	s.mu.Unlock()

	slog.Info("document stored", "document_id", doc.ID, "title", doc.Title, "chars", chars)

	out := *doc
	return &out, nil
}

// Get returns a copy of the document so callers cannot mutate stored state.
func (s *Store) Get(id string) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *d
	return &out, nil
}

// List returns summaries in insertion order.
func (s *Store) List() []models.DocumentSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.DocumentSummary, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.docs[id].Summary())
	}
	return out
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	d, ok := s.docs[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.docs, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	metrics.DocumentsStored.Set(float64(len(s.docs)))
	s.mu.Unlock()

	slog.Info("document deleted", "document_id", id, "title", d.Title)
	return nil
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
