package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/helixml/segalloc/domain/document"
	"github.com/helixml/segalloc/internal/database"
	"gorm.io/gorm"
)

// DocumentStore implements document.Store using GORM.
type DocumentStore struct {
	database.Repository[document.Document, DocumentModel]
}

// NewDocumentStore creates a DocumentStore.
func NewDocumentStore(db database.Database) DocumentStore {
	return DocumentStore{
		Repository: database.NewRepository[document.Document, DocumentModel](db, DocumentMapper{}, "document"),
	}
}

// Save creates or updates a document. A new document whose content hash is
// already stored returns the stored copy instead of a duplicate.
func (s DocumentStore) Save(ctx context.Context, d document.Document) (document.Document, error) {
	model := s.Mapper().ToModel(d)
	now := time.Now().UTC()

	saved, err := database.WithTransactionResult(ctx, s.Database(), func(tx *gorm.DB) (DocumentModel, error) {
		if model.ID != 0 {
			model.UpdatedAt = now
			if err := tx.Save(&model).Error; err != nil {
				return DocumentModel{}, fmt.Errorf("update document: %w", err)
			}
			return model, nil
		}

		var existing DocumentModel
		err := tx.Where("hash = ?", model.Hash).First(&existing).Error
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return DocumentModel{}, fmt.Errorf("find document by hash: %w", err)
		}

		model.CreatedAt = now
		model.UpdatedAt = now
		if err := tx.Create(&model).Error; err != nil {
			return DocumentModel{}, fmt.Errorf("create document: %w", err)
		}
		return model, nil
	})
	if err != nil {
		return document.Document{}, err
	}
	return s.Mapper().ToDomain(saved), nil
}

// Delete removes a document.
func (s DocumentStore) Delete(ctx context.Context, d document.Document) error {
	model := s.Mapper().ToModel(d)
	if err := s.DB(ctx).Delete(&model).Error; err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
