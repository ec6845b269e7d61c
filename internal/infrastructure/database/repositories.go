package database

import (
	"github.com/jithinio/brillo-sub004/internal/adapter/repository"
	domainRepo "github.com/jithinio/brillo-sub004/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	Profile           domainRepo.ProfileRepository
	SubscriptionEvent domainRepo.SubscriptionEventRepository
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		Profile:           repository.NewProfileRepository(db, logger),
		SubscriptionEvent: repository.NewSubscriptionEventRepository(db),
	}
}
