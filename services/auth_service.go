package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leonelm2/PotreroMobile/models"
	"github.com/leonelm2/PotreroMobile/repositories"
	"github.com/leonelm2/PotreroMobile/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid username/email or password")
	ErrPasswordTooShort   = fmt.Errorf("password must be at least %d characters", utils.MinPasswordLength)
)

type TokenIssuer interface {
	Issue(user *models.User) (string, error)
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	Me(ctx context.Context, actor models.Actor) (*models.User, error)
	// EnsureAdmin creates the bootstrap administrator unless it already exists.
	EnsureAdmin(ctx context.Context, input RegisterInput) (*models.User, error)
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Login    string
	Password string
}

type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type authService struct {
	userRepo repositories.UserRepository
	tokens   TokenIssuer
	logger   *slog.Logger
}

func NewAuthService(userRepo repositories.UserRepository, tokens TokenIssuer, logger *slog.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   loggerOrDiscard(logger),
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	user, err := s.createUser(ctx, input, models.RoleCoach)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user registered", slog.Int("user_id", user.ID))
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	login := strings.TrimSpace(input.Login)
	if login == "" || input.Password == "" {
		return nil, validationError("username or email and password are required")
	}

	user, err := s.userRepo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrUnauthorized, ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	ok, err := utils.CheckPasswordHash(input.Password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, ErrInvalidCredentials)
	}

	return s.issue(user)
}

func (s *authService) Me(ctx context.Context, actor models.Actor) (*models.User, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, repositoryError("failed to get user", err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) EnsureAdmin(ctx context.Context, input RegisterInput) (*models.User, error) {
	existing, err := s.userRepo.GetByLogin(ctx, strings.TrimSpace(input.Username))
	switch {
	case err == nil:
		if existing.Role != models.RoleAdmin {
			s.logger.WarnContext(ctx, "bootstrap admin username belongs to a non-admin user", slog.Int("user_id", existing.ID))
		}
		existing.PasswordHash = ""
		return existing, nil
	case !errors.Is(err, repositories.ErrUserNotFound):
		return nil, fmt.Errorf("failed to look up admin user: %w", err)
	}

	user, err := s.createUser(ctx, input, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "bootstrap admin created", slog.Int("user_id", user.ID), slog.String("username", user.Username))
	return user, nil
}

func (s *authService) createUser(ctx context.Context, input RegisterInput, role models.UserRole) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if username == "" || email == "" {
		return nil, validationError("username and email are required")
	}
	if !strings.Contains(email, "@") {
		return nil, validationError("email %q is not valid", email)
	}
	if len(input.Password) < utils.MinPasswordLength {
		return nil, validationError("%s", ErrPasswordTooShort)
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:     username,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, repositoryError("failed to create user", err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return &AuthResult{User: user, Token: token}, nil
}
