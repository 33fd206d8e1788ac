package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/huertacl/catalog-service/internal/domain"
)

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Rejection explains internally why a login failed. It unwraps to ErrInvalidCredentials so
// callers outside this package only ever see the opaque error.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string { return ErrInvalidCredentials.Error() }

func (r *Rejection) Unwrap() error { return ErrInvalidCredentials }

// Reason reports the internal rejection reason carried by err, if any.
func Reason(err error) string {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej.Reason
	}
	return ""
}

const (
	ReasonUnknownIdentity = "unknown_identity"
	ReasonBadPassword     = "bad_password"
	ReasonLookupFailed    = "lookup_failed"
)

// Authenticator verifies email/password pairs and mints tokens.
type Authenticator struct {
	users  UserLookup
	hasher *Hasher
	tokens *TokenManager

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthenticator wires the login procedure.
func NewAuthenticator(users UserLookup, hasher *Hasher, tokens *TokenManager) *Authenticator {
	return &Authenticator{users: users, hasher: hasher, tokens: tokens}
}

// Authenticate looks up email exactly as given, verifies password and issues a token.
// Every failure is a *Rejection wrapping ErrInvalidCredentials.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		// Burn the same bcrypt time as a real comparison.
		a.hasher.Verify(password, a.placeholderHash())
		if isNotFound(err) {
			return nil, &Rejection{Reason: ReasonUnknownIdentity}
		}
		return nil, &Rejection{Reason: ReasonLookupFailed}
	}

	if !a.hasher.Verify(password, user.Secret()) {
		return nil, &Rejection{Reason: ReasonBadPassword}
	}

	token, exp, err := a.tokens.IssueFor(user)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: exp, User: user}, nil
}

func (a *Authenticator) placeholderHash() string {
	a.dummyOnce.Do(func() {
		a.dummyHash, _ = a.hasher.Hash("placeholder-password-for-timing")
	})
	return a.dummyHash
}
