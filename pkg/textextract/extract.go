package textextract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedType is returned for file types Extract cannot read.
var ErrUnsupportedType = errors.New("unsupported file type")

// ErrUnreadable is returned when a file of a supported type is corrupt or
// not in the format its name claims.
var ErrUnreadable = errors.New("file content is unreadable")

type ExtractedText struct {
	Content string
	Pages   int
	Type    string
}

// DetectType maps a file name or MIME type onto one of the supported kinds
// ("pdf", "docx", "txt"). The file extension is tried first.
func DetectType(filename, contentType string) (string, error) {
	for _, candidate := range []string{filepath.Ext(filename), contentType} {
		switch strings.ToLower(strings.TrimSpace(strings.Split(candidate, ";")[0])) {
		case ".pdf", "application/pdf":
			return "pdf", nil
		case ".docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
			return "docx", nil
		case ".txt", ".md", "text/plain", "text/markdown":
			return "txt", nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedType, filename)
}

func Extract(data io.ReaderAt, size int64, fileType string) (*ExtractedText, error) {
	switch fileType {
	case "pdf":
		return extractPDF(data, size)
	case "docx":
		return extractDOCX(data, size)
	case "txt":
		return extractTXT(data, size)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, fileType)
	}
}

func SupportedTypes() []string {
	return []string{".pdf", ".docx", ".txt", ".md"}
}

func extractPDF(data io.ReaderAt, size int64) (result *ExtractedText, err error) {
	// The pdf package panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("%w: parse PDF: %v", ErrUnreadable, r)
		}
	}()

	reader, err := pdf.NewReader(data, size)
	if err != nil {
		return nil, fmt.Errorf("%w: open PDF: %w", ErrUnreadable, err)
	}

	var buf strings.Builder
	numPages := reader.NumPage()

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		buf.WriteString(text)
		buf.WriteString("\n")
	}

	return &ExtractedText{
		Content: strings.TrimSpace(buf.String()),
		Pages:   numPages,
		Type:    "pdf",
	}, nil
}

func extractDOCX(data io.ReaderAt, size int64) (*ExtractedText, error) {
	reader, err := zip.NewReader(data, size)
	if err != nil {
		return nil, fmt.Errorf("%w: open DOCX: %w", ErrUnreadable, err)
	}

	for _, f := range reader.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open document.xml: %w", ErrUnreadable, err)
		}
		defer rc.Close()

		text, err := docxText(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: read document.xml: %w", ErrUnreadable, err)
		}
		return &ExtractedText{Content: text, Pages: 1, Type: "docx"}, nil
	}

	return nil, fmt.Errorf("%w: open DOCX: word/document.xml not found", ErrUnreadable)
}

// docxText collects <w:t> runs and ends a line at every </w:p>.
func docxText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		buf    strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				buf.WriteByte('\t')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				buf.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				buf.Write(t)
			}
		}
	}
	return strings.TrimSpace(buf.String()), nil
}

func extractTXT(data io.ReaderAt, size int64) (*ExtractedText, error) {
	buf := make([]byte, size)
	_, err := data.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read TXT: %w", err)
	}
	if !utf8.Valid(buf) {
		return nil, fmt.Errorf("%w: read TXT: content is not valid UTF-8", ErrUnreadable)
	}

	return &ExtractedText{
		Content: string(bytes.TrimSpace(buf)),
		Pages:   1,
		Type:    "txt",
	}, nil
}
