package repository

import (
	"context"

	"github.com/jithinio/brillo-sub004/internal/domain/model"
)

type SubscriptionEventRepository interface {
	Create(ctx context.Context, event *model.SubscriptionEvent) error
}
