package service

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/mkarpinski/blog-api/internal/apperror"
	"github.com/mkarpinski/blog-api/internal/auth"
	"github.com/mkarpinski/blog-api/internal/model"
	"github.com/mkarpinski/blog-api/internal/repository"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 32
	MinPasswordLength = 8
)

// AuthService handles registration, login, token refresh, and logout.
// Logout puts the token's jti on the persisted denylist, so a stolen token
// stops working the moment its owner logs out.
type AuthService struct {
	users     repository.UserRepository
	revoked   repository.TokenRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	revoked repository.TokenRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		revoked:   revoked,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// TokenPair bundles the two tokens issued on login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Register creates a new active account. Taken usernames and emails surface
// as conflicts from the repository.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return nil, apperror.ValidationFailed("username", "username must be 3 to 32 characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperror.ValidationFailed("email", "invalid email address")
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password", "password must be at least 8 characters")
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("id", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// Login verifies the credentials and issues an access/refresh token pair.
// Unknown username, wrong password, and deactivated account all produce the
// same unauthenticated error, so the response never confirms an account
// exists.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, apperror.Unauthenticated("invalid username or password")
	}
	if !user.Active {
		return nil, apperror.Unauthenticated("invalid username or password")
	}
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, err
	}

	pair, err := s.issuePair(user.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user logged in", slog.String("id", user.ID))
	return pair, nil
}

// Refresh exchanges a valid, unrevoked refresh token for a fresh access
// token. The refresh token itself stays valid until logout or expiry.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	id, err := s.tokens.Validate(refreshToken, auth.TokenUseRefresh)
	if err != nil {
		return "", err
	}

	revoked, err := s.revoked.IsRevoked(ctx, id.JTI)
	if err != nil {
		return "", err
	}
	if revoked {
		return "", apperror.Unauthenticated("token has been revoked")
	}

	access, err := s.tokens.Generate(id.UserID, auth.TokenUseAccess)
	if err != nil {
		return "", err
	}
	return access, nil
}

// Logout revokes the identity's token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, id *auth.Identity) error {
	if err := s.revoked.Revoke(ctx, id.JTI, id.ExpiresAt); err != nil {
		return err
	}
	s.logger.Info("token revoked",
		slog.String("user", id.UserID),
		slog.String("use", string(id.Use)),
	)
	return nil
}

// RevokeToken validates a raw token string of the given kind and revokes
// it. Used by the refresh-token logout endpoint, where the token arrives in
// the request body rather than the Authorization header.
func (s *AuthService) RevokeToken(ctx context.Context, tokenStr string, use auth.TokenUse) error {
	id, err := s.tokens.Validate(tokenStr, use)
	if err != nil {
		return err
	}
	return s.Logout(ctx, id)
}

// GetUser returns the account for the given internal ID.
func (s *AuthService) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *AuthService) issuePair(userID string) (*TokenPair, error) {
	access, err := s.tokens.Generate(userID, auth.TokenUseAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.Generate(userID, auth.TokenUseRefresh)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
