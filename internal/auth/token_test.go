package auth

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huertacl/catalog-service/internal/domain"
)

const testSecret = "test-secret-key-0123456789abcdef-0123456789"

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func newTestTokenManager(t *testing.T) (*TokenManager, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	tm, err := NewTokenManager(testSecret, 0, WithClock(clock.Now))
	require.NoError(t, err)
	return tm, clock
}

func decodeClaims(t *testing.T, token string) *Claims {
	t.Helper()
	claims := &Claims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	return claims
}

func TestNewTokenManager_RejectsShortSecret(t *testing.T) {
	_, err := NewTokenManager("too-short", time.Hour)
	assert.ErrorIs(t, err, ErrSecretTooShort)
}

func TestIssue_Claims(t *testing.T) {
	tm, clock := newTestTokenManager(t)

	token, exp, err := tm.Issue("a@x.com", "role_admin", []string{"ADMIN", "usuario"})
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)
	assert.Equal(t, clock.t.Add(10*time.Hour), exp)

	claims := decodeClaims(t, token)
	assert.Equal(t, "a@x.com", claims.Subject)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, []string{"ADMIN", "USUARIO"}, claims.Authorities)
	assert.Equal(t, clock.t, claims.IssuedAt.Time.UTC())
	assert.Equal(t, clock.t.Add(DefaultTokenTTL), claims.ExpiresAt.Time.UTC())
}

func TestIssue_DefaultsAuthoritiesToRole(t *testing.T) {
	tm, _ := newTestTokenManager(t)

	token, _, err := tm.Issue("a@x.com", "", nil)
	require.NoError(t, err)

	claims := decodeClaims(t, token)
	assert.Equal(t, "USUARIO", claims.Role)
	assert.Equal(t, []string{"USUARIO"}, claims.Authorities)
}

func TestIssue_RequiresSubject(t *testing.T) {
	tm, _ := newTestTokenManager(t)

	_, _, err := tm.Issue("", "ADMIN", nil)
	assert.Error(t, err)
}

func TestIssueFor_UsesCredentialRoles(t *testing.T) {
	tm, _ := newTestTokenManager(t)
	user := &domain.User{Email: "admin@x.com", Role: domain.RoleAdmin}

	token, _, err := tm.IssueFor(user)
	require.NoError(t, err)

	claims := decodeClaims(t, token)
	assert.Equal(t, "admin@x.com", claims.Subject)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, []string{"ADMIN"}, claims.Authorities)
}

func TestValidate_FreshTokenIsValid(t *testing.T) {
	tm, _ := newTestTokenManager(t)

	token, _, err := tm.Issue("a@x.com", "USUARIO", nil)
	require.NoError(t, err)

	assert.Equal(t, TokenValid, tm.Validate(token, "a@x.com"))
}

func TestValidate_Expiry(t *testing.T) {
	tm, clock := newTestTokenManager(t)
	issued := clock.t

	token, _, err := tm.Issue("a@x.com", "USUARIO", nil)
	require.NoError(t, err)

	tests := []struct {
		name string
		at   time.Time
		want ValidationResult
	}{
		{"one second before expiry", issued.Add(DefaultTokenTTL - time.Second), TokenValid},
		{"exactly at expiry", issued.Add(DefaultTokenTTL), TokenExpired},
		{"after expiry", issued.Add(DefaultTokenTTL + time.Minute), TokenExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock.t = tt.at
			assert.Equal(t, tt.want, tm.Validate(token, "a@x.com"))
		})
	}
}

func TestValidate_AlteredSignature(t *testing.T) {
	tm, _ := newTestTokenManager(t)

	token, _, err := tm.Issue("a@x.com", "USUARIO", nil)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	for _, i := range []int{0, len(sig) / 2, len(sig) - 1} {
		tampered := make([]byte, len(sig))
		copy(tampered, sig)
		if tampered[i] == 'A' {
			tampered[i] = 'B'
		} else {
			tampered[i] = 'A'
		}
		forged := parts[0] + "." + parts[1] + "." + string(tampered)
		assert.Equal(t, TokenSignatureInvalid, tm.Validate(forged, "a@x.com"), "byte %d", i)
	}
}

func TestValidate_ForgedExpiry(t *testing.T) {
	tm, clock := newTestTokenManager(t)

	token, _, err := tm.Issue("admin@x.com", "ADMIN", nil)
	require.NoError(t, err)

	forged := rewriteClaims(t, token, func(claims map[string]any) {
		claims["exp"] = clock.t.Add(365 * 24 * time.Hour).Unix()
	})

	assert.Equal(t, TokenSignatureInvalid, tm.Validate(forged, "admin@x.com"))
}

func TestValidate_ForgedRole(t *testing.T) {
	tm, _ := newTestTokenManager(t)

	token, _, err := tm.Issue("a@x.com", "USUARIO", nil)
	require.NoError(t, err)

	forged := rewriteClaims(t, token, func(claims map[string]any) {
		claims["role"] = "ADMIN"
		claims["authorities"] = []string{"ADMIN"}
	})

	assert.Equal(t, TokenSignatureInvalid, tm.Validate(forged, "a@x.com"))
}

func TestValidate_OtherSecret(t *testing.T) {
	tm, _ := newTestTokenManager(t)
	other, err := NewTokenManager(strings.Repeat("z", 40), 0)
	require.NoError(t, err)

	token, _, err := other.Issue("a@x.com", "ADMIN", nil)
	require.NoError(t, err)

	assert.Equal(t, TokenSignatureInvalid, tm.Validate(token, "a@x.com"))
}

func TestValidate_RejectsNoneAlgorithm(t *testing.T) {
	tm, clock := newTestTokenManager(t)

	claims := &Claims{
		Role: "ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "a@x.com",
			IssuedAt:  jwt.NewNumericDate(clock.t),
			ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	assert.NotEqual(t, TokenValid, tm.Validate(token, "a@x.com"))
}

func TestValidate_SubjectMismatch(t *testing.T) {
	tm, _ := newTestTokenManager(t)

	token, _, err := tm.Issue("a@x.com", "USUARIO", nil)
	require.NoError(t, err)

	assert.Equal(t, TokenSubjectMismatch, tm.Validate(token, "b@x.com"))
	assert.Equal(t, TokenSubjectMismatch, tm.Validate(token, "A@x.com"))
}

func TestValidate_Malformed(t *testing.T) {
	tm, _ := newTestTokenManager(t)

	for _, raw := range []string{"", "abc", "a.b", "a.b.c", "!!!.???.###"} {
		assert.Equal(t, TokenMalformed, tm.Validate(raw, "a@x.com"), raw)
	}
}

func TestExtractSubject(t *testing.T) {
	tm, clock := newTestTokenManager(t)

	token, _, err := tm.Issue("a@x.com", "USUARIO", nil)
	require.NoError(t, err)

	// subject extraction ignores expiry and signature
	clock.t = clock.t.Add(48 * time.Hour)
	subject, err := tm.ExtractSubject(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", subject)

	_, err = tm.ExtractSubject("not-a-token")
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestValidationResult_Err(t *testing.T) {
	assert.NoError(t, TokenValid.Err())
	assert.ErrorIs(t, TokenExpired.Err(), ErrTokenExpired)
	assert.ErrorIs(t, TokenSignatureInvalid.Err(), ErrTokenSignatureInvalid)
	assert.ErrorIs(t, TokenSubjectMismatch.Err(), ErrTokenSubjectMismatch)
	assert.ErrorIs(t, TokenMalformed.Err(), ErrTokenMalformed)
	assert.Equal(t, "signature_invalid", TokenSignatureInvalid.String())
}

// rewriteClaims edits the payload segment and keeps the original signature.
func rewriteClaims(t *testing.T, token string, edit func(map[string]any)) string {
	t.Helper()
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	claims := map[string]any{}
	require.NoError(t, json.Unmarshal(payload, &claims))

	edit(claims)

	updated, err := json.Marshal(claims)
	require.NoError(t, err)
	return parts[0] + "." + base64.RawURLEncoding.EncodeToString(updated) + "." + parts[2]
}
