package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/huertacl/catalog-service/internal/domain"
)

// Credential is a stored identity the auth core can check a password or token against.
type Credential interface {
	Identity() string
	Secret() string
	Roles() []domain.Role
}

// UserLookup resolves credential records by their identity key.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// roleClaims returns the primary role and the full authority list of c.
func roleClaims(c Credential) (string, []string) {
	roles := c.Roles()
	authorities := make([]string, 0, len(roles))
	for _, r := range roles {
		authorities = append(authorities, string(domain.CanonicalRole(string(r))))
	}
	if len(authorities) == 0 {
		return string(domain.RoleUser), []string{string(domain.RoleUser)}
	}
	return authorities[0], authorities
}

// isNotFound reports whether a lookup error means the identity does not exist.
func isNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, ErrIdentityNotFound)
}
