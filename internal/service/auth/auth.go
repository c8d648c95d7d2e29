// Package auth manages the shop's admin accounts and the signed session token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mamadbah2/shopms/internal/domain/models"
	"github.com/mamadbah2/shopms/internal/repository"
)

const (
	DefaultUsername = "admin"
	DefaultPassword = "admin123"
)

// Status reports whether an admin account exists.
type Status struct {
	AdminExists bool    `json:"adminExists"`
	Username    *string `json:"username"`
}

// Credentials are returned once by Setup.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Claims is the JWT payload.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Service issues and verifies admin sessions.
type Service struct {
	users  repository.UserStore
	secret []byte
	ttl    time.Duration
	cost   int
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires the auth service. ttl is the lifetime of issued tokens.
func NewService(users repository.UserStore, secret string, ttl time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		cost:   bcrypt.DefaultCost,
		logger: logger,
		now:    time.Now,
	}
}

// TTL returns the lifetime of issued tokens.
func (s *Service) TTL() time.Duration { return s.ttl }

// Status looks up the first admin account.
func (s *Service) Status(ctx context.Context) (Status, error) {
	admin, err := s.users.FindAdmin(ctx)
	if errors.Is(err, models.ErrNotFound) {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, wrap("find admin", err)
	}
	return Status{AdminExists: true, Username: &admin.Username}, nil
}

// Setup creates the default admin account when none exists yet.
func (s *Service) Setup(ctx context.Context) (Credentials, error) {
	_, err := s.users.FindAdmin(ctx)
	if err == nil {
		return Credentials{}, &models.ConflictError{Message: "Admin user already exists"}
	}
	if !errors.Is(err, models.ErrNotFound) {
		return Credentials{}, wrap("find admin", err)
	}

	if _, err := s.create(ctx, DefaultUsername, DefaultPassword); err != nil {
		return Credentials{}, err
	}
	s.logger.Warn("default admin account created; change its password")
	return Credentials{Username: DefaultUsername, Password: DefaultPassword}, nil
}

// CreateAdmin adds another admin account.
func (s *Service) CreateAdmin(ctx context.Context, username, password string) (models.AdminUser, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.AdminUser{}, models.NewValidationError("username", "Username and password are required")
	}
	user, err := s.create(ctx, username, password)
	if err != nil {
		return models.AdminUser{}, err
	}
	s.logger.Info("admin account created", zap.String("username", user.Username))
	return user, nil
}

// Login checks the password and returns a signed token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, models.ErrNotFound) {
		return "", fmt.Errorf("invalid credentials: %w", models.ErrUnauthorized)
	}
	if err != nil {
		return "", wrap("find user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("failed login attempt", zap.String("username", user.Username))
		return "", fmt.Errorf("invalid credentials: %w", models.ErrUnauthorized)
	}
	return s.Issue(user)
}

// ChangePassword replaces the password of username after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, username, current, next string) error {
	if next == "" {
		return models.NewValidationError("newPassword", "New password is required")
	}
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return wrap("find user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return fmt.Errorf("current password is incorrect: %w", models.ErrUnauthorized)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return wrap("update password", err)
	}
	s.logger.Info("password changed", zap.String("username", user.Username))
	return nil
}

// Issue signs an HS256 token for user.
func (s *Service) Issue(user models.AdminUser) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and returns its claims.
func (s *Service) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("invalid or expired token: %w", models.ErrUnauthorized)
	}
	return claims, nil
}

func (s *Service) create(ctx context.Context, username, password string) (models.AdminUser, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return models.AdminUser{}, fmt.Errorf("failed to hash password: %w", err)
	}
	user, err := s.users.Create(ctx, models.AdminUser{
		Username:     username,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return models.AdminUser{}, wrap("create user", err)
	}
	return user, nil
}

func wrap(op string, err error) error {
	for _, domain := range []error{models.ErrNotFound, models.ErrConflict, models.ErrStorage} {
		if errors.Is(err, domain) {
			return err
		}
	}
	return models.NewStorageError(op, err)
}
