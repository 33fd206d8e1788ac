package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/huertacl/catalog-service/internal/auth"
	"github.com/huertacl/catalog-service/internal/domain"
	"github.com/huertacl/catalog-service/internal/repository"
	apperrors "github.com/huertacl/catalog-service/pkg/util/errorutil"
)

// UserService manages stored user accounts.
type UserService struct {
	users  repository.UserRepository
	hasher *auth.Hasher
	logger *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, hasher *auth.Hasher, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, hasher: hasher, logger: logger}
}

// UpdateUserInput holds optional profile changes. Nil fields are left untouched.
type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	BirthDate *time.Time
	Email     *string
	Password  *string
	Phone     *string
	Commune   *string
	Role      *domain.Role
}

// List returns every user ordered by id.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return users, nil
}

// Get loads one user.
func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err, id)
	}
	return user, nil
}

// Update applies in to user id on behalf of actor. Only admins may change a role.
func (s *UserService) Update(ctx context.Context, actor *domain.User, id int64, in UpdateUserInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, userLookupError(err, id)
	}

	if in.Role != nil {
		role := domain.CanonicalRole(string(*in.Role))
		if role != domain.RoleAdmin && role != domain.RoleUser {
			return nil, apperrors.NewValidationError("invalid role", map[string]any{"rol": string(*in.Role)})
		}
		if role != user.Role {
			if actor == nil || !actor.HasRole(domain.RoleAdmin) {
				return nil, apperrors.NewForbidden("only administrators can change roles")
			}
			user.Role = role
		}
	}

	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email != user.Email {
			exists, err := s.users.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, apperrors.NewInternalError(err)
			}
			if exists {
				return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
			}
			user.Email = email
		}
	}

	if in.Password != nil && *in.Password != "" {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, passwordHashError(err)
		}
		user.PasswordHash = hash
	}

	applyString(&user.FirstName, in.FirstName)
	applyString(&user.LastName, in.LastName)
	applyString(&user.Phone, in.Phone)
	applyString(&user.Commune, in.Commune)
	if in.BirthDate != nil {
		user.BirthDate = *in.BirthDate
	}

	if err := s.users.Update(ctx, user); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": user.Email})
		}
		return nil, userLookupError(err, id)
	}
	return user, nil
}

// Delete removes user id.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return userLookupError(err, id)
	}
	s.logger.Info("user deleted", zap.Int64("user_id", id))
	return nil
}

func userLookupError(err error, id int64) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("user", map[string]any{"id": id})
	}
	return apperrors.NewInternalError(err)
}

// passwordHashError maps hasher failures; an over-long password is the caller's fault.
func passwordHashError(err error) error {
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return apperrors.NewValidationError("invalid payload", map[string]any{
			"contrasena": "The field 'contrasena' must be at most 72 bytes long.",
		})
	}
	return apperrors.NewInternalError(err)
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
