package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"docuchat/internal/model"
)

type InteractionRepository struct {
	db *gorm.DB
}

func NewInteractionRepository(db *gorm.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

func (r *InteractionRepository) Create(interaction *model.Interaction) error {
	if err := r.db.Create(interaction).Error; err != nil {
		return fmt.Errorf("create interaction failed: %w", err)
	}
	return nil
}

// LatestByKey returns the most recent interaction for the exact
// (username, normalized question) pair, or nil when none exists. The table is
// append-only, so duplicate keys are possible; newest entry wins.
func (r *InteractionRepository) LatestByKey(username, question string) (*model.Interaction, error) {
	var interaction model.Interaction
	err := r.db.
		Where("username = ? AND question = ?", username, question).
		Order("created_at DESC, id DESC").
		First(&interaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query interaction by key failed: %w", err)
	}
	return &interaction, nil
}

// ListByUsername returns the user's interaction history, newest first.
func (r *InteractionRepository) ListByUsername(username string, limit int) ([]model.Interaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	var interactions []model.Interaction
	err := r.db.
		Where("username = ?", username).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&interactions).Error
	if err != nil {
		return nil, fmt.Errorf("list interactions failed: %w", err)
	}
	return interactions, nil
}
