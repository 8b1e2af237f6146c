package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ye11ow-banana/main-be/logger"
	"github.com/ye11ow-banana/main-be/middlewares"
	"github.com/ye11ow-banana/main-be/models"
	"github.com/ye11ow-banana/main-be/services"
)

const maxAvatarBytes = 5 << 20

type authenticator interface {
	SignIn(ctx context.Context, login, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

type accounts interface {
	SignUp(ctx context.Context, in services.SignUpInput) (*services.UserView, error)
	VerifiedUsers(ctx context.Context) ([]services.UserView, error)
	SendVerificationCode(ctx context.Context, user *models.User) error
	Verify(ctx context.Context, user *models.User, code int) error
}

type avatars interface {
	Upload(ctx context.Context, user *models.User, data []byte) (*services.UserView, error)
	Delete(ctx context.Context, user *models.User) (*services.UserView, error)
}

type AuthController struct {
	log      *logger.Logger
	auth     authenticator
	accounts accounts
	avatars  avatars
}

func NewAuthController(log *logger.Logger, auth authenticator, accounts accounts, avatars avatars) *AuthController {
	return &AuthController{log: log, auth: auth, accounts: accounts, avatars: avatars}
}

func (ac *AuthController) SignUp(c *gin.Context) {
	var in services.SignUpInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	user, err := ac.accounts.SignUp(c.Request.Context(), in)
	if err != nil {
		respondError(c, ac.log, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

type signInRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (ac *AuthController) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	pair, err := ac.auth.SignIn(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		respondError(c, ac.log, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (ac *AuthController) RefreshToken(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	pair, err := ac.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, ac.log, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (ac *AuthController) Me(c *gin.Context) {
	c.JSON(http.StatusOK, services.NewUserView(*middlewares.CurrentUser(c)))
}

func (ac *AuthController) Users(c *gin.Context) {
	users, err := ac.accounts.VerifiedUsers(c.Request.Context())
	if err != nil {
		respondError(c, ac.log, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (ac *AuthController) SendVerificationCode(c *gin.Context) {
	if err := ac.accounts.SendVerificationCode(c.Request.Context(), middlewares.CurrentUser(c)); err != nil {
		respondError(c, ac.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "verification code sent"})
}

type verifyRequest struct {
	Code int `json:"code" binding:"required"`
}

func (ac *AuthController) VerifyEmail(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := ac.accounts.Verify(c.Request.Context(), middlewares.CurrentUser(c), req.Code); err != nil {
		respondError(c, ac.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "email verified"})
}

func (ac *AuthController) UploadAvatar(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, err)
		return
	}
	if fh.Size > maxAvatarBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "avatar is too large"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	data, err := io.ReadAll(f)
	_ = f.Close()
	if err != nil {
		badRequest(c, err)
		return
	}

	user, err := ac.avatars.Upload(c.Request.Context(), middlewares.CurrentUser(c), data)
	if err != nil {
		respondError(c, ac.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (ac *AuthController) DeleteAvatar(c *gin.Context) {
	user, err := ac.avatars.Delete(c.Request.Context(), middlewares.CurrentUser(c))
	if err != nil {
		respondError(c, ac.log, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
