package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jithinio/brillo-sub004/internal/domain/entity"
	"github.com/jithinio/brillo-sub004/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestEventLog_Record(t *testing.T) {
	events := &memoryEvents{}
	log := usecase.NewEventLog(events, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	log.Record(ctx, &entity.EventEntry{
		UserID:    testUserID,
		EventType: entity.EventSynced,
		FromPlan:  entity.PlanFree,
		ToPlan:    entity.PlanProMonthly,
		Provider:  entity.ProviderStripe,
	})

	require.Equal(t, 1, events.count())
	e := events.events[0]
	assert.Equal(t, "synced", e.EventType)
	assert.Equal(t, "free", *e.FromPlanID)
	assert.Equal(t, "pro_monthly", *e.ToPlanID)
	assert.Nil(t, e.SubscriptionID)
	assert.NotNil(t, e.Metadata)
}

func TestEventLog_SwallowsErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantError bool
	}{
		{"missing table", &pgconn.PgError{Code: "42P01"}, false},
		{"foreign key", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"}), false},
		{"unique", &pgconn.PgError{Code: "23505"}, false},
		{"connection", errors.New("connection refused"), true},
		{"syntax", &pgconn.PgError{Code: "42601"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.DebugLevel)
			log := usecase.NewEventLog(&memoryEvents{failWith: tt.err}, zap.New(core))

			assert.NotPanics(t, func() {
				log.Record(context.Background(), &entity.EventEntry{UserID: testUserID, EventType: entity.EventSynced})
			})
			assert.Equal(t, tt.wantError, logs.FilterLevelExact(zap.ErrorLevel).Len() == 1)
			assert.Equal(t, !tt.wantError, usecase.IsIgnorableEventError(tt.err))
		})
	}
}

func TestEventLog_SkipsEntriesWithoutUser(t *testing.T) {
	events := &memoryEvents{}
	usecase.NewEventLog(events, zap.NewNop()).Record(context.Background(), &entity.EventEntry{EventType: entity.EventSynced})
	assert.Zero(t, events.count())
}
