package services

import (
	"context"
	"errors"

	"github.com/ye11ow-banana/main-be/models"
	"github.com/ye11ow-banana/main-be/repositories"
	"github.com/ye11ow-banana/main-be/utils"
)

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// AuthService issues and checks JWT bearer tokens. The token subject is the
// username.
type AuthService struct {
	users  repositories.UserStore
	tokens *utils.JWTIssuer
}

func NewAuthService(users repositories.UserStore, tokens *utils.JWTIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// SignIn accepts a username or an e-mail as login.
func (s *AuthService) SignIn(ctx context.Context, login, password string) (*TokenPair, error) {
	user, err := s.users.GetByUsernameOrEmail(ctx, login)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrAuthentication
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPasswordHash(password, user.HashedPassword) {
		return nil, ErrAuthentication
	}

	access, err := s.tokens.AccessToken(user.Username)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.RefreshToken(user.Username)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "Bearer"}, nil
}

// Refresh trades a refresh token for a new access token. The refresh token
// itself is returned unchanged.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	user, err := s.userFromToken(ctx, refreshToken, true)
	if err != nil {
		return nil, err
	}
	access, err := s.tokens.AccessToken(user.Username)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refreshToken, TokenType: "Bearer"}, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	return s.userFromToken(ctx, accessToken, false)
}

func (s *AuthService) userFromToken(ctx context.Context, token string, refresh bool) (*models.User, error) {
	username, err := s.tokens.Subject(token, refresh)
	if err != nil {
		return nil, ErrAuthentication
	}
	user, err := s.users.GetByUsernameOrEmail(ctx, username)
	if errors.Is(err, repositories.ErrNotFound) || (err == nil && user.Username != username) {
		return nil, ErrAuthentication
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
