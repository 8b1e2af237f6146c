package services

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/ye11ow-banana/main-be/logger"
	"github.com/ye11ow-banana/main-be/models"
	"github.com/ye11ow-banana/main-be/repositories"
	"github.com/ye11ow-banana/main-be/utils"
)

type UserView struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	AvatarURL  *string   `json:"avatar_url"`
	IsVerified bool      `json:"is_verified"`
}

func NewUserView(u models.User) UserView {
	return UserView{ID: u.ID, Username: u.Username, Email: u.Email, AvatarURL: u.AvatarURL, IsVerified: u.IsVerified}
}

type SignUpInput struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type codeSender interface {
	SendVerificationCode(ctx context.Context, to string, code int) error
}

type UserService struct {
	log     *logger.Logger
	users   repositories.UserStore
	codes   codeSender
	codeTTL time.Duration
	now     func() time.Time
}

func NewUserService(log *logger.Logger, users repositories.UserStore, codes codeSender, codeTTL time.Duration) *UserService {
	return &UserService{log: log, users: users, codes: codes, codeTTL: codeTTL, now: time.Now}
}

func (s *UserService) SignUp(ctx context.Context, in SignUpInput) (*UserView, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	switch {
	case utf8.RuneCountInString(username) < 3 || utf8.RuneCountInString(username) > 50:
		return nil, &ValidationError{Field: "username", Value: username, Reason: "must be 3 to 50 characters"}
	case strings.Contains(username, "@"):
		return nil, &ValidationError{Field: "username", Value: username, Reason: "must not contain '@'"}
	case utf8.RuneCountInString(in.Password) < 8:
		return nil, &ValidationError{Field: "password", Reason: "must be at least 8 characters"}
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, &ValidationError{Field: "email", Value: email, Reason: "invalid e-mail address"}
	}

	hashed, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{Username: username, Email: email, HashedPassword: hashed}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrUserTaken
		}
		return nil, err
	}
	s.log.Info("user signed up", "user_id", user.ID, "username", username)
	v := NewUserView(*user)
	return &v, nil
}

func (s *UserService) VerifiedUsers(ctx context.Context) ([]UserView, error) {
	users, err := s.users.ListVerified(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserView, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserView(u))
	}
	return out, nil
}

// SendVerificationCode replaces the user's pending code with a fresh
// 6-digit one and e-mails it.
func (s *UserService) SendVerificationCode(ctx context.Context, user *models.User) error {
	if user.IsVerified {
		return ErrAlreadyVerified
	}
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return err
	}
	code := int(n.Int64()) + 100000
	if err := s.users.UpsertVerificationCode(ctx, user.ID, code, s.now().Add(s.codeTTL)); err != nil {
		return err
	}
	return s.codes.SendVerificationCode(ctx, user.Email, code)
}

func (s *UserService) Verify(ctx context.Context, user *models.User, code int) error {
	if user.IsVerified {
		return ErrAlreadyVerified
	}
	vc, err := s.users.GetVerificationCode(ctx, user.ID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrWrongCode
	}
	if err != nil {
		return err
	}
	if vc.Code != code || vc.IsExpired(s.now()) {
		return ErrWrongCode
	}
	if err := s.users.Verify(ctx, user.ID, vc.ID); err != nil {
		return err
	}
	s.log.Info("user verified", "user_id", user.ID)
	return nil
}
