package repository

import (
	"fmt"

	"gorm.io/gorm"

	"docuchat/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(doc *model.Document) error {
	if err := r.db.Create(doc).Error; err != nil {
		return fmt.Errorf("create document failed: %w", err)
	}
	return nil
}

// ListByOwner returns every document uploaded by owner, sorted by filename so
// callers see a stable order.
func (r *DocumentRepository) ListByOwner(owner string) ([]model.Document, error) {
	var docs []model.Document
	if err := r.db.Where("owner = ?", owner).Order("filename ASC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list documents by owner failed: %w", err)
	}
	return docs, nil
}
