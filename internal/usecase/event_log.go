package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jithinio/brillo-sub004/internal/domain/entity"
	"github.com/jithinio/brillo-sub004/internal/domain/model"
	"github.com/jithinio/brillo-sub004/internal/domain/repository"
	"go.uber.org/zap"
)

const (
	defaultEventLogTimeout = 5 * time.Second

	pgUndefinedTable           = "42P01"
	pgIntegrityConstraintClass = "23"
)

// EventLog appends subscription_events rows. Recording never fails the caller.
type EventLog struct {
	repo    repository.SubscriptionEventRepository
	logger  *zap.Logger
	timeout time.Duration
}

func NewEventLog(repo repository.SubscriptionEventRepository, logger *zap.Logger) *EventLog {
	return &EventLog{
		repo:    repo,
		logger:  logger,
		timeout: defaultEventLogTimeout,
	}
}

// Record writes entry outside the caller's cancellation. A missing table or
// a constraint violation is ignored; other failures are logged.
func (l *EventLog) Record(ctx context.Context, entry *entity.EventEntry) {
	if l == nil || entry == nil || entry.UserID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
	defer cancel()

	event := &model.SubscriptionEvent{
		ID:             uuid.New(),
		UserID:         entry.UserID,
		EventType:      string(entry.EventType),
		FromPlanID:     optional(string(entry.FromPlan)),
		ToPlanID:       optional(string(entry.ToPlan)),
		SubscriptionID: optional(entry.SubscriptionID),
		CustomerID:     optional(entry.CustomerID),
		Provider:       optional(string(entry.Provider)),
		Metadata:       model.JSONB(entry.Metadata),
	}
	if event.Metadata == nil {
		event.Metadata = model.JSONB{}
	}

	err := l.repo.Create(ctx, event)
	if err == nil {
		return
	}

	fields := []zap.Field{
		zap.String("user_id", entry.UserID),
		zap.String("event_type", string(entry.EventType)),
		zap.Error(err),
	}
	if IsIgnorableEventError(err) {
		l.logger.Debug("Subscription event not recorded", fields...)
		return
	}
	l.logger.Error("Failed to record subscription event", fields...)
}

// IsIgnorableEventError reports errors expected during partial deployments:
// the events table does not exist yet, or a constraint rejected the row.
func IsIgnorableEventError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgUndefinedTable || strings.HasPrefix(pgErr.Code, pgIntegrityConstraintClass)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
