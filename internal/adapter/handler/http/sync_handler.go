package http

import (
	"net/http"

	"github.com/jithinio/brillo-sub004/internal/domain/entity"
	"github.com/jithinio/brillo-sub004/internal/middleware/auth"
	"github.com/jithinio/brillo-sub004/internal/usecase"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type SyncHandler struct {
	logger      *zap.Logger
	syncService SyncService
}

func NewSyncHandler(logger *zap.Logger, syncService SyncService) *SyncHandler {
	return &SyncHandler{
		logger:      logger,
		syncService: syncService,
	}
}

// SyncRequest is the body of POST /subscription/sync
type SyncRequest struct {
	UserID   string `json:"userId" validate:"required,uuid"`
	Recovery bool   `json:"recovery"`
	Provider string `json:"provider" validate:"omitempty,oneof=stripe polar"`
}

// Sync handles the internal sync endpoint. The caller names the user.
func (h *SyncHandler) Sync(c echo.Context) error {
	var req SyncRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	h.logger.Info("Subscription sync requested",
		zap.String("user_id", req.UserID),
		zap.String("provider", req.Provider),
		zap.Bool("recovery", req.Recovery))

	return h.sync(c, usecase.SyncRequest{
		UserID:   req.UserID,
		Recovery: req.Recovery,
		Provider: entity.ProviderName(req.Provider),
	})
}

// SyncStripe handles POST /stripe/sync for the authenticated user
func (h *SyncHandler) SyncStripe(c echo.Context) error {
	return h.syncAuthenticated(c, entity.ProviderStripe)
}

// SyncPolar handles POST /polar/sync for the authenticated user
func (h *SyncHandler) SyncPolar(c echo.Context) error {
	return h.syncAuthenticated(c, entity.ProviderPolar)
}

func (h *SyncHandler) syncAuthenticated(c echo.Context, name entity.ProviderName) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	return h.sync(c, usecase.SyncRequest{
		UserID:   user.UserID,
		Provider: name,
	})
}

func (h *SyncHandler) sync(c echo.Context, req usecase.SyncRequest) error {
	resp, err := h.syncService.Sync(c.Request().Context(), req)
	if err != nil {
		return toAppError(err, "Failed to sync subscription")
	}

	if resp.Warning != "" {
		h.logger.Warn("Subscription sync finished with warning",
			zap.String("user_id", req.UserID),
			zap.String("warning", resp.Warning))
	}
	return c.JSON(http.StatusOK, resp)
}

// GetStatus handles GET /subscription/status
func (h *SyncHandler) GetStatus(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	state, err := h.syncService.Status(c.Request().Context(), user.UserID)
	if err != nil {
		return toAppError(err, "Failed to load subscription status")
	}
	return c.JSON(http.StatusOK, state)
}
