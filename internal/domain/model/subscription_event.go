package model

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionEvent is an append-only audit row of a reconciliation outcome.
type SubscriptionEvent struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         string    `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	EventType      string    `gorm:"column:event_type;size:64;not null;index" json:"event_type"`
	FromPlanID     *string   `gorm:"column:from_plan_id;size:32" json:"from_plan_id,omitempty"`
	ToPlanID       *string   `gorm:"column:to_plan_id;size:32" json:"to_plan_id,omitempty"`
	SubscriptionID *string   `gorm:"column:subscription_id" json:"subscription_id,omitempty"`
	CustomerID     *string   `gorm:"column:customer_id" json:"customer_id,omitempty"`
	Provider       *string   `gorm:"column:provider;size:16" json:"provider,omitempty"`
	Metadata       JSONB     `gorm:"type:jsonb;default:'{}'" json:"metadata"`
	CreatedAt      time.Time `gorm:"default:now();index" json:"created_at"`
}

// TableName specifies the table name for GORM
func (SubscriptionEvent) TableName() string {
	return "subscription_events"
}
