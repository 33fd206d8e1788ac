package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/huertacl/catalog-service/internal/api/dto"
	"github.com/huertacl/catalog-service/internal/auth"
	"github.com/huertacl/catalog-service/internal/domain"
	apperrors "github.com/huertacl/catalog-service/pkg/util/errorutil"
)

// bindJSON parses the body into req and runs struct validation.
func bindJSON(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if errs := dto.ValidateStruct(req); len(errs) > 0 {
		details := make(map[string]any, len(errs))
		for field, msg := range errs {
			details[field] = msg
		}
		return apperrors.NewValidationError("validation failed", details)
	}
	return nil
}

func paramID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", map[string]any{"id": c.Params("id")})
	}
	return id, nil
}

// actor returns the authenticated user, or nil on public routes.
func actor(c *fiber.Ctx) *domain.User {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil
	}
	return principal.User
}
