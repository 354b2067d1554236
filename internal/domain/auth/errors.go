package auth

import "errors"

var (
	ErrInvalidCredentials         = errors.New("invalid email or password")
	ErrAccountInactive            = errors.New("account is inactive")
	ErrInvalidToken               = errors.New("invalid or expired token")
	ErrTokenExpired               = errors.New("token has expired")
	ErrRefreshTokenRevoked        = errors.New("refresh token has been revoked")
	ErrRefreshTokenCookieNotFound = errors.New("refresh token cookie not found")
	ErrUserNotFound               = errors.New("user not found")
	ErrGoogleAccountNotRegistered = errors.New("google account is not registered")
	ErrStateMismatch              = errors.New("oauth state mismatch")
)
