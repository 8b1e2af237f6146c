package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ye11ow-banana/main-be/logger"
	"github.com/ye11ow-banana/main-be/models"
	"github.com/ye11ow-banana/main-be/services"
)

const userKey = "user"

type tokenAuthenticator interface {
	CurrentUser(ctx context.Context, accessToken string) (*models.User, error)
}

// AuthMiddleware resolves the bearer token to a user and stores it on the
// gin context. Browsers cannot set headers on websocket upgrades, so
// "?token=" is accepted there.
func AuthMiddleware(log *logger.Logger, auth tokenAuthenticator, allowQueryToken bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" && allowQueryToken {
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		user, err := auth.CurrentUser(c.Request.Context(), token)
		if errors.Is(err, services.ErrAuthentication) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if err != nil {
			log.Error("resolve token user failed", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

func bearerToken(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// CurrentUser returns the user set by AuthMiddleware.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}
