package http

import (
	"errors"

	domainErrors "github.com/jithinio/brillo-sub004/internal/domain/errors"
	apperrors "github.com/jithinio/brillo-sub004/pkg/errors"
)

// toAppError maps usecase errors onto coded errors for the echo error handler.
func toAppError(err error, fallback string) error {
	switch {
	case errors.Is(err, domainErrors.ErrProfileNotFound):
		return apperrors.NotFound("Profile not found", err)
	case errors.Is(err, domainErrors.ErrProviderNotConfigured),
		errors.Is(err, domainErrors.ErrUnknownProvider):
		return apperrors.Unavailable("Payment provider not configured", err)
	case errors.Is(err, domainErrors.ErrCustomerNotFound):
		return apperrors.NotFound("Customer not found", err)
	default:
		return apperrors.NewAppError(apperrors.ErrInternal, fallback, err)
	}
}
