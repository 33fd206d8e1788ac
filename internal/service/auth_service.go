package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/huertacl/catalog-service/internal/auth"
	"github.com/huertacl/catalog-service/internal/domain"
	"github.com/huertacl/catalog-service/internal/events"
	"github.com/huertacl/catalog-service/internal/observability"
	"github.com/huertacl/catalog-service/internal/repository"
	apperrors "github.com/huertacl/catalog-service/pkg/util/errorutil"
)

// AuthService coordinates registration, login and the admin bootstrap.
type AuthService struct {
	users         repository.UserRepository
	hasher        *auth.Hasher
	tokens        *auth.TokenManager
	authenticator *auth.Authenticator
	dispatcher    events.Dispatcher
	metrics       *observability.Metrics
	logger        *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Hasher     *auth.Hasher
	Tokens     *auth.TokenManager
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:         deps.UserRepo,
		hasher:        deps.Hasher,
		tokens:        deps.Tokens,
		authenticator: auth.NewAuthenticator(deps.UserRepo, deps.Hasher, deps.Tokens),
		dispatcher:    deps.Dispatcher,
		metrics:       deps.Metrics,
		logger:        logger,
	}
}

// RegisterInput carries the self-registration form.
type RegisterInput struct {
	FirstName string
	LastName  string
	BirthDate time.Time
	Email     string
	Password  string
	Phone     string
	Commune   string
}

// Register creates an end-user account. The role is always USUARIO.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := strings.TrimSpace(in.Email)
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if exists {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, passwordHashError(err)
	}

	user := &domain.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		BirthDate:    in.BirthDate,
		Email:        email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(in.Phone),
		Commune:      strings.TrimSpace(in.Commune),
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
		}
		return nil, apperrors.NewInternalError(err)
	}

	publish(ctx, s.dispatcher, s.logger, events.New(events.EventUserRegistered, events.ActorFor(user), nil))
	return user, nil
}

// Login authenticates email/password. Every failure is the same INVALID_CREDENTIALS error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*auth.Session, error) {
	session, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		reason := auth.Reason(err)
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			reason = "token_issue_failed"
			s.logger.Error("login failed unexpectedly", zap.Error(err))
		}
		s.metrics.RecordLogin("failure")
		publish(ctx, s.dispatcher, s.logger, events.New(events.EventLoginFailed,
			events.Actor{Email: email}, events.LoginFailedPayload{Reason: reason}))
		return nil, apperrors.NewInvalidCredentials()
	}

	s.metrics.RecordLogin("success")
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventLoginSucceeded, events.ActorFor(session.User), nil))
	return session, nil
}

// EnsureAdmin creates an ADMIN account for email unless one already exists.
// It reports whether a record was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return false, nil
	}
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, err
	}
	admin := &domain.User{
		FirstName:    "Admin",
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return false, err
	}
	s.logger.Info("bootstrap admin created", zap.String("email", email), zap.Int64("user_id", admin.ID))
	return true, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
