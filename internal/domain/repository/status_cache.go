package repository

import (
	"context"

	"github.com/jithinio/brillo-sub004/internal/domain/entity"
)

// StatusCache caches the subscription state of a user. Implementations
// expire entries after their configured TTL; misses and backend failures
// both report ok=false.
type StatusCache interface {
	Get(ctx context.Context, userID string) (*entity.SubscriptionState, bool)
	Set(ctx context.Context, state *entity.SubscriptionState)
	Invalidate(ctx context.Context, userID string)
}
