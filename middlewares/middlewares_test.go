package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ye11ow-banana/main-be/logger"
	"github.com/ye11ow-banana/main-be/models"
	"github.com/ye11ow-banana/main-be/services"
)

type fakeAuth struct {
	user *models.User
	err  error
}

func (f fakeAuth) CurrentUser(_ context.Context, token string) (*models.User, error) {
	if token != "good" {
		return nil, services.ErrAuthentication
	}
	return f.user, f.err
}

func newAuthRouter(auth tokenAuthenticator, allowQuery bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(logger.Nop(), auth, allowQuery))
	r.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).Username)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	user := &models.User{ID: uuid.New(), Username: "mykhailo"}
	cases := []struct {
		name       string
		header     string
		query      string
		allowQuery bool
		err        error
		want       int
	}{
		{name: "bearer", header: "Bearer good", want: http.StatusOK},
		{name: "lowercase scheme", header: "bearer good", want: http.StatusOK},
		{name: "missing", want: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer bad", want: http.StatusUnauthorized},
		{name: "query allowed", query: "?token=good", allowQuery: true, want: http.StatusOK},
		{name: "query refused", query: "?token=good", want: http.StatusUnauthorized},
		{name: "store failure", header: "Bearer good", err: errors.New("db down"), want: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newAuthRouter(fakeAuth{user: user, err: tc.err}, tc.allowQuery)
			req := httptest.NewRequest(http.MethodGet, "/me"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("status: want=%d got=%d", tc.want, rec.Code)
			}
			if tc.want == http.StatusOK && rec.Body.String() != "mykhailo" {
				t.Fatalf("body: %q", rec.Body.String())
			}
		})
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.OPTIONS("/calorie/days", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodOptions, "/calorie/days", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allow-origin: %q", got)
	}
}
