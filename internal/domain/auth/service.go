package auth

import (
	"context"
	"strings"
	"time"

	"elms/internal/domain/apperr"
)

var (
	ErrInvalidCredentials = apperr.New(apperr.KindValidation, "invalid_credentials", "invalid credentials")
	ErrCredentialsMissing = apperr.Validation("credentials_required", "email and password are required")
)

type Service struct {
	Store  StoreAPI
	Secret string
	TTL    time.Duration
	Now    func() time.Time
}

func NewService(store StoreAPI, secret string, ttl time.Duration) *Service {
	return &Service{Store: store, Secret: secret, TTL: ttl, Now: time.Now}
}

// Login verifies credentials and issues a bearer token. A non-empty role must
// match the stored role.
func (s *Service) Login(ctx context.Context, email, password, role string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return LoginResult{}, ErrCredentialsMissing
	}

	user, err := s.Store.FindUserByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, err
	}
	if role = strings.TrimSpace(strings.ToLower(role)); role != "" && role != user.Role {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := GenerateToken(s.Secret, Claims{UserID: user.ID, RoleName: user.Role}, s.TTL)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{
		Token:     token,
		UserID:    user.ID,
		Role:      user.Role,
		Name:      strings.TrimSpace(user.FirstName + " " + user.LastName),
		ExpiresAt: s.Now().Add(s.TTL),
	}, nil
}
