package document

import (
	"context"
	"fmt"
	"io"

	"github.com/nikhilbhutani/docqa/pkg/textextract"
)

type TextExtractor interface {
	Extract(ctx context.Context, data io.ReaderAt, size int64, filename, contentType string) (*textextract.ExtractedText, error)
	SupportedTypes() []string
}

type extractor struct{}

func NewTextExtractor() TextExtractor {
	return &extractor{}
}

func (e *extractor) Extract(ctx context.Context, data io.ReaderAt, size int64, filename, contentType string) (*textextract.ExtractedText, error) {
	kind, err := textextract.DetectType(filename, contentType)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := textextract.Extract(data, size, kind)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	return result, nil
}

func (e *extractor) SupportedTypes() []string {
	return textextract.SupportedTypes()
}
