package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/huertacl/catalog-service/internal/domain"
	apperrors "github.com/huertacl/catalog-service/pkg/util/errorutil"
)

// RequireAuthenticated rejects requests without an authenticated context.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireRole ensures the principal holds one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := roleSet(allowed)

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !holdsAny(principal, allowedSet) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireRoleOrSelf lets through holders of an allowed role and the user whose
// id matches the route parameter param.
func RequireRoleOrSelf(param string, allowed ...domain.Role) fiber.Handler {
	allowedSet := roleSet(allowed)

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if holdsAny(principal, allowedSet) {
			return c.Next()
		}
		id, err := c.ParamsInt(param)
		if err == nil && principal.User != nil && int64(id) == principal.User.ID {
			return c.Next()
		}
		return apperrors.NewForbidden("insufficient role")
	}
}

func roleSet(roles []domain.Role) map[domain.Role]struct{} {
	set := make(map[domain.Role]struct{}, len(roles))
	for _, role := range roles {
		set[domain.CanonicalRole(string(role))] = struct{}{}
	}
	return set
}

func holdsAny(principal *Principal, allowed map[domain.Role]struct{}) bool {
	if principal.User == nil {
		return false
	}
	for _, role := range principal.User.Roles() {
		if _, ok := allowed[role]; ok {
			return true
		}
	}
	return false
}
