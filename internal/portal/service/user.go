package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/halcyonstudio/portal/internal/portal/domain"
	"github.com/halcyonstudio/portal/internal/portal/store"
	"github.com/halcyonstudio/portal/pkg/cryptox"
	"github.com/halcyonstudio/portal/pkg/idx"
	"github.com/halcyonstudio/portal/pkg/jwtx"
	"github.com/halcyonstudio/portal/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidUser        = errors.New("invalid user")
)

// UserService handles staff authentication and account creation.
type UserService struct {
	Store  store.Store
	Signer jwtx.Signer
	Issuer string

	// SessionTTL overrides jwtx.DefaultSessionTTL when positive.
	SessionTTL time.Duration
}

func (s *UserService) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return jwtx.DefaultSessionTTL
}

// Login verifies staff credentials and returns a signed session token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	log := slogx.FromContext(ctx)

	if email == "" || password == "" {
		return domain.User{}, "", ErrInvalidCredentials
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("login attempt for unknown email")
			return domain.User{}, "", ErrInvalidCredentials
		}
		log.Error("failed to fetch user", slog.Any("error", err))
		return domain.User{}, "", err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			log.Warn("login attempt with wrong password",
				slog.String("user_id", user.ID.String()),
			)
			return domain.User{}, "", ErrInvalidCredentials
		}
		log.Error("failed to verify password", slog.Any("error", err))
		return domain.User{}, "", err
	}

	claims := jwtx.NewClaims(
		user.ID.String(), user.Email,
		domain.ScopesForRole(user.Role),
		s.Issuer, s.sessionTTL(), time.Now(),
	)
	token, err := s.Signer.Sign(claims)
	if err != nil {
		log.Error("failed to sign session token", slog.Any("error", err))
		return domain.User{}, "", err
	}

	log.Info("staff login",
		slog.String("user_id", user.ID.String()),
		slog.String("role", user.Role),
	)
	return user, token, nil
}

// CreateUser adds a staff account with a hashed password.
func (s *UserService) CreateUser(ctx context.Context, email, name, password, role string) (domain.User, error) {
	if email == "" || password == "" {
		return domain.User{}, ErrInvalidUser
	}
	if role != domain.RoleAdmin && role != domain.RoleStaff {
		role = domain.RoleStaff
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           idx.New(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Bootstrap creates the first admin account when the users table is empty.
// It is a no-op otherwise, so restarting the service is always safe.
func (s *UserService) Bootstrap(ctx context.Context, email, password string) error {
	log := slogx.FromContext(ctx)

	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}
	if email == "" || password == "" {
		log.Warn("users table is empty but bootstrap credentials are not configured")
		return nil
	}

	user, err := s.CreateUser(ctx, email, "Administrator", password, domain.RoleAdmin)
	if err != nil {
		return err
	}

	log.Info("bootstrap admin created", slog.String("user_id", user.ID.String()))
	return nil
}
