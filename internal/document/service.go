package document

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/nikhilbhutani/docqa/internal/models"
)

// Service turns uploaded files into stored documents.
type Service struct {
	store     *Store
	extractor TextExtractor
	maxBytes  int64
}

func NewService(store *Store, maxBytes int64) *Service {
	return &Service{
		store:     store,
		extractor: NewTextExtractor(),
		maxBytes:  maxBytes,
	}
}

type UploadRequest struct {
	Title       string
	Filename    string
	ContentType string
	Data        io.Reader
}

func (s *Service) Upload(ctx context.Context, req UploadRequest) (*models.Document, error) {
	r := req.Data
	if s.maxBytes > 0 {
		r = io.LimitReader(req.Data, s.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, models.NewValidationError("file", "must be at most %d bytes", s.maxBytes)
	}

	text, err := s.extractor.Extract(ctx, bytes.NewReader(data), int64(len(data)), req.Filename, req.ContentType)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text.Content) == "" {
		return nil, models.NewValidationError("file", "no extractable text")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(req.Filename), filepath.Ext(req.Filename))
	}

	slog.Debug("upload extracted", "filename", req.Filename, "type", text.Type, "pages", text.Pages, "bytes", len(data))
	return s.store.Create(title, text.Content)
}
