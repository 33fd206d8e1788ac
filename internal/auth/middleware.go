package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/huertacl/catalog-service/internal/domain"
	"github.com/huertacl/catalog-service/internal/observability"
)

const principalKey = "auth_principal"

const bearerScheme = "Bearer"

// Principal is the authenticated context of one request.
type Principal struct {
	User *domain.User
}

// HasRole reports whether the principal holds role.
func (p *Principal) HasRole(role domain.Role) bool {
	return p != nil && p.User != nil && p.User.HasRole(role)
}

// Gate validates bearer tokens and attaches a principal. It never rejects a request;
// route-level checks in roles.go decide what an unauthenticated caller may reach.
type Gate struct {
	tokens  *TokenManager
	users   UserLookup
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewGate constructs the middleware.
func NewGate(tokens *TokenManager, users UserLookup, logger *zap.Logger, metrics *observability.Metrics) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{tokens: tokens, users: users, logger: logger, metrics: metrics}
}

// Handle runs the gate for one request.
func (g *Gate) Handle(c *fiber.Ctx) error {
	if _, ok := PrincipalFromContext(c); ok {
		return c.Next()
	}

	raw, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return c.Next()
	}

	subject, err := g.tokens.ExtractSubject(raw)
	if err != nil {
		g.reject(TokenMalformed.String(), err)
		return c.Next()
	}

	user, err := g.users.GetByEmail(c.UserContext(), subject)
	if err != nil {
		if isNotFound(err) {
			g.reject("identity_not_found", ErrIdentityNotFound)
		} else {
			g.reject("lookup_failed", err)
		}
		return c.Next()
	}

	if result := g.tokens.Validate(raw, user.Identity()); result != TokenValid {
		g.reject(result.String(), result.Err())
		return c.Next()
	}

	g.metrics.RecordTokenCheck(TokenValid.String())
	c.Locals(principalKey, &Principal{User: user})
	return c.Next()
}

func (g *Gate) reject(result string, err error) {
	g.metrics.RecordTokenCheck(result)
	g.logger.Debug("bearer token ignored", zap.String("result", result), zap.Error(err))
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], bearerScheme) {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
