package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/cartforge/cartforge/internal/config"
	"github.com/cartforge/cartforge/internal/domain"
	"github.com/cartforge/cartforge/internal/domain/user"
	"github.com/cartforge/cartforge/internal/port/database"
)

// AuthService handles registration, login and access token validation.
// Tokens carry identity and role claims; memberships are re-read from the
// store on every validation so revoked access takes effect immediately.
type AuthService struct {
	store database.Store
	cfg   config.Auth
}

// NewAuthService creates a new AuthService.
func NewAuthService(store database.Store, cfg config.Auth) *AuthService {
	return &AuthService{store: store, cfg: cfg}
}

// Register creates a new user with a bcrypt password hash.
func (s *AuthService) Register(ctx context.Context, req user.CreateRequest) (*user.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &user.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		Roles:        req.Roles,
		Memberships:  req.Memberships,
		Enabled:      true,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and issues a signed access token. Unknown email
// and bad password return the same error to avoid account probing.
func (s *AuthService) Login(ctx context.Context, req user.LoginRequest) (*user.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	u, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", domain.ErrForbidden)
		}
		return nil, err
	}
	if !u.Enabled {
		return nil, fmt.Errorf("%w: account disabled", domain.ErrForbidden)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", domain.ErrForbidden)
	}

	token, err := s.issueToken(u)
	if err != nil {
		return nil, err
	}

	return &user.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int(s.cfg.AccessTokenExpiry.Seconds()),
		User:        *u,
	}, nil
}

func (s *AuthService) issueToken(u *user.User) (string, error) {
	now := time.Now().UTC()

	tenants := make([]string, 0, len(u.Memberships))
	for _, m := range u.Memberships {
		tenants = append(tenants, m.Tenant.String())
	}

	claims := jwt.MapClaims{
		"sub":              u.ID,
		"email":            u.Email,
		"iat":              now.Unix(),
		"exp":              now.Add(s.cfg.AccessTokenExpiry).Unix(),
		s.cfg.RolesClaim:   u.Roles,
		s.cfg.TenantsClaim: tenants,
	}
	// The first membership doubles as the primary tenant for API consumers
	// that expect a single-tenant claim.
	if len(tenants) > 0 {
		claims[s.cfg.TenantClaim] = tenants[0]
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateAccessToken parses and verifies a token and resolves the current
// user record behind it.
func (s *AuthService) ValidateAccessToken(ctx context.Context, tokenString string) (*user.User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token", domain.ErrForbidden)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", domain.ErrForbidden)
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("%w: token missing subject", domain.ErrForbidden)
	}

	u, err := s.store.GetUser(ctx, sub)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown subject", domain.ErrForbidden)
		}
		return nil, err
	}
	if !u.Enabled {
		return nil, fmt.Errorf("%w: account disabled", domain.ErrForbidden)
	}
	return u, nil
}
