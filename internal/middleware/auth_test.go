package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const secret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter() *gin.Engine {
	r := gin.New()
	r.GET("/admin", AuthMiddleware(secret), func(c *gin.Context) {
		userID := c.GetInt("userID")
		c.JSON(http.StatusOK, gin.H{"userID": userID})
	})
	return r
}

func signToken(t *testing.T, signingSecret string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": 7,
		"iat": time.Now().Unix(),
		"exp": exp.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingSecret))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestAuthMiddlewareAcceptsBearerToken(t *testing.T) {
	r := protectedRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, secret, time.Now().Add(time.Hour)))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", w.Code, w.Body.String())
	}
}

func TestAuthMiddlewareAcceptsQueryToken(t *testing.T) {
	r := protectedRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin?token="+signToken(t, secret, time.Now().Add(time.Hour)), nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", w.Code, w.Body.String())
	}
}

func TestAuthMiddlewareRejects(t *testing.T) {
	cases := []struct {
		name   string
		header string
	}{
		{"missing token", ""},
		{"malformed header", "Bearer"},
		{"wrong secret", "Bearer " + signToken(t, "other-secret", time.Now().Add(time.Hour))},
		{"expired", "Bearer " + signToken(t, secret, time.Now().Add(-time.Hour))},
	}

	r := protectedRouter()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
		})
	}
}
