package auth

import "devplan/internal/pkg/apperr"

var (
	// Unknown email and wrong password share one error so the response does
	// not reveal which accounts exist.
	ErrInvalidCredentials  = apperr.Unauthorized("invalid email or password")
	ErrAccountInactive     = apperr.Forbidden("account is inactive")
	ErrInvalidRefreshToken = apperr.Unauthorized("invalid refresh token")
	ErrRefreshTokenExpired = apperr.Unauthorized("refresh token expired")
	ErrUnauthorized        = apperr.Unauthorized("authentication required")
	ErrForbidden           = apperr.Forbidden("cannot end sessions of another user")
	ErrTooManyAttempts     = apperr.New(apperr.CodeTooManyRequests, "too many login attempts, try again later")
)
