package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/deskflow/helpdesk-api/internal/auth"
	"github.com/deskflow/helpdesk-api/internal/domain"
	"github.com/deskflow/helpdesk-api/internal/repository"
	"github.com/deskflow/helpdesk-api/internal/validation"
	apperrors "github.com/deskflow/helpdesk-api/pkg/util/errorutil"
)

// PasswordHasher is the opaque password capability.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hashed string) bool
}

// TokenIssuer is the opaque token capability.
type TokenIssuer interface {
	Issue(userID int64) (domain.Token, error)
	Verify(token string) (int64, error)
}

// AuthService coordinates registration, login and token resolution.
type AuthService struct {
	users        repository.UserRepository
	hasher       PasswordHasher
	tokens       TokenIssuer
	validator    *validation.Validator
	isAdminEmail func(string) bool
	logger       *zap.Logger
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	UserRepo  repository.UserRepository
	Hasher    PasswordHasher
	Tokens    TokenIssuer
	Validator *validation.Validator
	// IsAdminEmail decides which new accounts are created with role ADMIN.
	IsAdminEmail func(email string) bool
	Logger       *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	isAdmin := deps.IsAdminEmail
	if isAdmin == nil {
		isAdmin = func(string) bool { return false }
	}
	validator := deps.Validator
	if validator == nil {
		validator = validation.New()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:        deps.UserRepo,
		hasher:       deps.Hasher,
		tokens:       deps.Tokens,
		validator:    validator,
		isAdminEmail: isAdmin,
		logger:       logger,
	}
}

// Signup creates a new account and signs it in.
func (s *AuthService) Signup(ctx context.Context, params validation.SignupParams) (*domain.AuthPayload, error) {
	input, err := s.validator.Signup(params)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("user already exists", map[string]any{"field": "email"})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInternalError(err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	role := domain.UserRoleUser
	if s.isAdminEmail(input.Email) {
		role = domain.UserRoleAdmin
	}
	user := &domain.User{
		Email:        input.Email,
		PasswordHash: hash,
		Name:         input.Name,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.NewConflict("user already exists", map[string]any{"field": "email"})
		}
		return nil, apperrors.NewInternalError(err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("user signed up", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return &domain.AuthPayload{Token: token, User: user}, nil
}

// Signin verifies credentials and issues a token. Unknown email and wrong password
// fail identically.
func (s *AuthService) Signin(ctx context.Context, params validation.SigninParams) (*domain.AuthPayload, error) {
	input, err := s.validator.Signin(params)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.NewInternalError(err)
	}
	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &domain.AuthPayload{Token: token, User: user}, nil
}

// Me returns the caller's account.
func (s *AuthService) Me(ctx context.Context, actor *domain.Actor) (*domain.User, error) {
	if err := auth.RequireActor(actor); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("user not found")
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// Authenticate resolves a bearer token to its user. It is called once per request.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("user not found")
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}
