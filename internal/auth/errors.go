package auth

import "errors"

var (
	// ErrInvalidCredentials is the only login failure surfaced to clients.
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenSubjectMismatch  = errors.New("token subject mismatch")
	// ErrIdentityNotFound means a token names an identity the store no longer knows.
	ErrIdentityNotFound = errors.New("identity not found")
	ErrSecretTooShort   = errors.New("signing secret must be at least 32 bytes")
	// ErrPasswordTooLong is returned by Hash for inputs bcrypt would truncate or refuse.
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)
