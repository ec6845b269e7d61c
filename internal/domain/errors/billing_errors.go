package errors

import "errors"

var (
	// ErrProfileNotFound indicates that no profile exists for the user
	ErrProfileNotFound = errors.New("profile not found")

	// ErrProviderNotConfigured indicates that the billing provider has no API credentials
	ErrProviderNotConfigured = errors.New("payment provider not configured")

	// ErrUnknownProvider indicates that the requested billing provider is not supported
	ErrUnknownProvider = errors.New("unknown payment provider")

	// ErrSearchUnavailable indicates that the provider's customer search is
	// temporarily or regionally unavailable
	ErrSearchUnavailable = errors.New("customer search temporarily unavailable")

	// ErrCustomerNotFound indicates that the provider has no such customer
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrSubscriptionNotFound indicates that the provider has no such subscription
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrWebhookSecretMissing indicates that webhook verification is not configured
	ErrWebhookSecretMissing = errors.New("webhook secret not configured")

	// ErrInvalidSignature indicates that a webhook signature did not verify
	ErrInvalidSignature = errors.New("invalid webhook signature")
)
