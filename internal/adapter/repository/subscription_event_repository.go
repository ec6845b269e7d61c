package repository

import (
	"context"

	"github.com/jithinio/brillo-sub004/internal/domain/model"
	"github.com/jithinio/brillo-sub004/internal/domain/repository"
	"gorm.io/gorm"
)

type subscriptionEventRepository struct {
	db *gorm.DB
}

func NewSubscriptionEventRepository(db *gorm.DB) repository.SubscriptionEventRepository {
	return &subscriptionEventRepository{db: db}
}

// Create returns driver errors unwrapped so callers can inspect the SQLSTATE.
func (r *subscriptionEventRepository) Create(ctx context.Context, event *model.SubscriptionEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}
