package auth

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fieldserve/helpdesk-service/internal/config"
	"github.com/fieldserve/helpdesk-service/internal/domain"
	"github.com/fieldserve/helpdesk-service/internal/repository"
	apperrors "github.com/fieldserve/helpdesk-service/pkg/util"
)

// Service coordinates registration and login flows.
type Service struct {
	users      repository.UserRepository
	tokenMgr   *TokenManager
	bcryptCost int
}

// NewService builds the service.
func NewService(cfg config.AuthConfig, users repository.UserRepository) *Service {
	return &Service{
		users:      users,
		tokenMgr:   NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
	}
}

// TokenManager exposes the underlying manager for middleware wiring.
func (s *Service) TokenManager() *TokenManager {
	return s.tokenMgr
}

// RegisterContact creates a customer-contact account.
func (s *Service) RegisterContact(ctx context.Context, name, email, password, customerID string) (*domain.User, string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewValidationError("email already registered", nil)
	} else if err != pgx.ErrNoRows {
		return nil, "", time.Time{}, err
	}

	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleCustomerContact,
		CustomerID:   &customerID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Login authenticates any user by email and password.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if err := ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}
