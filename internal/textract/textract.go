// Package textract turns uploaded report documents into plain text before extraction.
package textract

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var (
	// ErrUnsupportedContentType is returned when no extractor can read the document.
	ErrUnsupportedContentType = errors.New("unsupported content type")
	// ErrEmptyText is returned when a document decodes to nothing but whitespace.
	ErrEmptyText = errors.New("document contains no text")
)

// Document is an uploaded source file.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// MediaType returns the lower-cased media type without parameters. A missing or generic
// content type is guessed from the file extension, then from the bytes.
func (d Document) MediaType() string {
	if mt, _, err := mime.ParseMediaType(d.ContentType); err == nil && mt != "application/octet-stream" {
		return strings.ToLower(mt)
	}
	if ext := strings.ToLower(filepath.Ext(d.Filename)); ext != "" {
		if byExt, ok := extensionTypes[ext]; ok {
			return byExt
		}
		if mt := mime.TypeByExtension(ext); mt != "" {
			base, _, _ := mime.ParseMediaType(mt)
			return strings.ToLower(base)
		}
	}
	base, _, _ := mime.ParseMediaType(http.DetectContentType(d.Data))
	return strings.ToLower(base)
}

var extensionTypes = map[string]string{
	".txt": "text/plain",
	".csv": "text/csv",
	".tsv": "text/tab-separated-values",
	".pdf": "application/pdf",
}

// Extractor converts a document into best-effort plain text.
type Extractor interface {
	ExtractText(ctx context.Context, doc Document) (string, error)
}

// PlainText reads text documents directly.
type PlainText struct{}

// Supports reports whether the media type is text the engine can read as is.
func (PlainText) Supports(mediaType string) bool {
	return strings.HasPrefix(mediaType, "text/")
}

// ExtractText validates the encoding and returns the document body.
func (p PlainText) ExtractText(ctx context.Context, doc Document) (string, error) {
	if !p.Supports(doc.MediaType()) {
		return "", ErrUnsupportedContentType
	}
	if !utf8.Valid(doc.Data) {
		return "", ErrUnsupportedContentType
	}
	text := string(doc.Data)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	return text, nil
}

// Chain tries plain text first and hands everything else to the remote service, when one is
// configured.
type Chain struct {
	plain  PlainText
	remote Extractor
}

// NewChain creates a chain. remote may be nil.
func NewChain(remote Extractor) *Chain {
	return &Chain{remote: remote}
}

// ExtractText dispatches on media type.
func (c *Chain) ExtractText(ctx context.Context, doc Document) (string, error) {
	if c.plain.Supports(doc.MediaType()) {
		return c.plain.ExtractText(ctx, doc)
	}
	if c.remote == nil {
		return "", ErrUnsupportedContentType
	}
	return c.remote.ExtractText(ctx, doc)
}
