package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/helixml/segalloc/domain/document"
	"github.com/helixml/segalloc/domain/repository"
	"github.com/helixml/segalloc/domain/textgrid"
)

// DefaultMaxUploadBytes bounds uploads when no limit is configured.
const DefaultMaxUploadBytes = 10 << 20

// Documents manages the stored annotation file library.
type Documents struct {
	store    document.Store
	maxBytes int64
	logger   *slog.Logger
}

// NewDocuments creates a Documents service. A non-positive maxBytes selects
// DefaultMaxUploadBytes.
func NewDocuments(store document.Store, maxBytes int64, logger *slog.Logger) *Documents {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Documents{store: store, maxBytes: maxBytes, logger: logger}
}

// MaxBytes returns the upload size limit.
func (s *Documents) MaxBytes() int64 { return s.maxBytes }

// Upload decodes and validates data as a TextGrid file and stores it.
// Identical content is stored once; uploading it again returns the first copy.
func (s *Documents) Upload(ctx context.Context, name string, data []byte) (document.Document, error) {
	if len(data) == 0 {
		return document.Document{}, ErrEmptyContent
	}
	if int64(len(data)) > s.maxBytes {
		return document.Document{}, fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, len(data), s.maxBytes)
	}

	text, err := textgrid.Decode(data)
	if err != nil {
		return document.Document{}, err
	}
	names, err := textgrid.NewParser(textgrid.WithLogger(s.logger)).TierNames(text)
	if err != nil {
		return document.Document{}, err
	}

	saved, err := s.store.Save(ctx, document.NewDocument(name, text, names))
	if err != nil {
		return document.Document{}, fmt.Errorf("save document: %w", err)
	}
	s.logger.Info("document stored",
		slog.Int64("document_id", saved.ID()),
		slog.String("name", saved.Name()),
		slog.Int("tiers", len(names)),
	)
	return saved, nil
}

// Get returns the document with id.
func (s *Documents) Get(ctx context.Context, id int64) (document.Document, error) {
	return s.store.FindOne(ctx, repository.WithID(id))
}

// Find returns the documents matching options.
func (s *Documents) Find(ctx context.Context, options ...repository.Option) ([]document.Document, error) {
	return s.store.Find(ctx, options...)
}

// Count returns the number of documents matching options.
func (s *Documents) Count(ctx context.Context, options ...repository.Option) (int64, error) {
	return s.store.Count(ctx, options...)
}

// Delete removes the document with id.
func (s *Documents) Delete(ctx context.Context, id int64) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, doc); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	s.logger.Info("document deleted", slog.Int64("document_id", id))
	return nil
}
