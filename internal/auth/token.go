package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/huertacl/catalog-service/internal/domain"
)

// DefaultTokenTTL is the validity window of a session token.
const DefaultTokenTTL = 10 * time.Hour

// minSecretLength is 256 bits, the HS256 block of key material.
const minSecretLength = 32

// ValidationResult is the outcome of a full token check.
type ValidationResult int

const (
	// TokenValid means the signature verifies, the token is unexpired and the subject matches.
	TokenValid ValidationResult = iota
	// TokenExpired means the signature verifies but now is at or past exp.
	TokenExpired
	// TokenSignatureInvalid means the token decodes but its signature does not verify.
	TokenSignatureInvalid
	// TokenSubjectMismatch means the token is genuine but names a different subject.
	TokenSubjectMismatch
	// TokenMalformed means the token cannot be decoded at all.
	TokenMalformed
)

func (r ValidationResult) String() string {
	switch r {
	case TokenValid:
		return "valid"
	case TokenExpired:
		return "expired"
	case TokenSignatureInvalid:
		return "signature_invalid"
	case TokenSubjectMismatch:
		return "subject_mismatch"
	default:
		return "malformed"
	}
}

// Err maps a non-valid result to its error kind; nil for TokenValid.
func (r ValidationResult) Err() error {
	switch r {
	case TokenValid:
		return nil
	case TokenExpired:
		return ErrTokenExpired
	case TokenSignatureInvalid:
		return ErrTokenSignatureInvalid
	case TokenSubjectMismatch:
		return ErrTokenSubjectMismatch
	default:
		return ErrTokenMalformed
	}
}

// Claims describes JWT payload.
type Claims struct {
	Role        string   `json:"role"`
	Authorities []string `json:"authorities"`
	jwt.RegisteredClaims
}

// TokenManager handles issuing and validating JWT tokens.
// The secret is fixed at construction and never mutated afterwards.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// TokenOption customizes a TokenManager.
type TokenOption func(*TokenManager)

// WithClock overrides the time source used for iat, exp and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(tm *TokenManager) {
		if now != nil {
			tm.now = now
		}
	}
}

// NewTokenManager builds a new manager. ttl <= 0 selects DefaultTokenTTL.
func NewTokenManager(secret string, ttl time.Duration, opts ...TokenOption) (*TokenManager, error) {
	if len(secret) < minSecretLength {
		return nil, ErrSecretTooShort
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	tm := &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(tm)
	}
	tm.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(tm.now),
	)
	return tm, nil
}

// TTL returns the validity window applied to issued tokens.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// Issue builds and signs a token for subject carrying role and authorities.
func (tm *TokenManager) Issue(subject, role string, authorities []string) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, errors.New("token subject required")
	}
	canonical := string(domain.CanonicalRole(role))
	if canonical == "" {
		canonical = string(domain.RoleUser)
	}
	auths := make([]string, 0, len(authorities))
	for _, a := range authorities {
		auths = append(auths, string(domain.CanonicalRole(a)))
	}
	if len(auths) == 0 {
		auths = append(auths, canonical)
	}

	issuedAt := tm.now().Truncate(jwt.TimePrecision)
	expiresAt := issuedAt.Add(tm.ttl)
	claims := &Claims{
		Role:        canonical,
		Authorities: auths,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// IssueFor issues a token for a stored credential.
func (tm *TokenManager) IssueFor(c Credential) (string, time.Time, error) {
	role, authorities := roleClaims(c)
	return tm.Issue(c.Identity(), role, authorities)
}

// ExtractSubject reads the subject without checking signature or expiry.
// Callers must resolve the identity and then call Validate.
func (tm *TokenManager) ExtractSubject(tokenStr string) (string, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	if claims.Subject == "" {
		return "", ErrTokenMalformed
	}
	return claims.Subject, nil
}

// Validate checks signature, expiry and that the token was issued for expectedSubject.
func (tm *TokenManager) Validate(tokenStr, expectedSubject string) ValidationResult {
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, &Claims{}); err != nil {
		return TokenMalformed
	}

	claims := &Claims{}
	_, err := tm.parser.ParseWithClaims(tokenStr, claims, tm.keyFunc)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return TokenSignatureInvalid
	case errors.Is(err, jwt.ErrTokenMalformed):
		// the structure decoded leniently above, so a strict decode failure means tampering
		return TokenSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return TokenExpired
	default:
		return TokenMalformed
	}

	if claims.Subject != expectedSubject {
		return TokenSubjectMismatch
	}
	return TokenValid
}

func (tm *TokenManager) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method != jwt.SigningMethodHS256 {
		return nil, errors.New("unexpected signing method")
	}
	return tm.secret, nil
}
