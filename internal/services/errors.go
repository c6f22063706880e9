package services

import "errors"

var (
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidInput           = errors.New("invalid input")
	ErrNotFound               = errors.New("not found")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrOnboardingIncomplete   = errors.New("onboarding is not complete")
	ErrQuotaExceeded          = errors.New("daily free scan limit reached")
	ErrNotFood                = errors.New("image does not look like food")
	ErrStorageUnavailable     = errors.New("storage is not configured")
	ErrClassifierUnavailable  = errors.New("food analysis is unavailable")
	ErrRateLimited            = errors.New("rate limit exceeded, please try again")
	ErrUpstreamPayment        = errors.New("ai gateway requires payment")
	ErrPaymentsUnavailable    = errors.New("payments are not configured")
	ErrUnknownPlan            = errors.New("unknown subscription plan")
	ErrInvalidSignature       = errors.New("invalid payment signature")
)
