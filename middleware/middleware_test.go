package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"harvestmap/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type staticVerifier map[string]string

func (v staticVerifier) Verify(_ context.Context, credential string) (string, error) {
	if uid, ok := v[credential]; ok {
		return uid, nil
	}
	return "", apperrors.Unauthenticated("Invalid token", nil)
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	verifier := staticVerifier{"token-1": "seller-1"}
	r.GET("/whoami", AuthMiddleware(verifier), func(c *gin.Context) {
		c.String(http.StatusOK, Principal(c))
	})
	r.POST("/add_listing/:uid", AuthMiddleware(verifier), RequireSelf("uid"), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter()

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "valid", header: "Bearer token-1", status: http.StatusOK},
		{name: "missing", header: "", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Token token-1", status: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer nope", status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "seller-1", w.Body.String())
			}
		})
	}
}

func TestRequireSelf(t *testing.T) {
	r := newRouter()

	for uid, status := range map[string]int{"seller-1": http.StatusCreated, "seller-2": http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodPost, "/add_listing/"+uid, nil)
		req.Header.Set("Authorization", "Bearer token-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, status, w.Code, uid)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimitMiddleware(2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("203.0.113.7"))
	assert.Equal(t, http.StatusOK, do("203.0.113.7"))
	assert.Equal(t, http.StatusTooManyRequests, do("203.0.113.7"))
	assert.Equal(t, http.StatusOK, do("203.0.113.8"), "limits are per client")
}

func TestGetClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded", headers: map[string]string{"X-Forwarded-For": " 198.51.100.2 , 10.0.0.1"}, remote: "10.0.0.1:1234", want: "198.51.100.2"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "198.51.100.3"}, remote: "10.0.0.1:1234", want: "198.51.100.3"},
		{name: "garbage header", headers: map[string]string{"X-Forwarded-For": "unknown"}, remote: "192.0.2.9:5555", want: "192.0.2.9"},
		{name: "remote addr", remote: "192.0.2.10:80", want: "192.0.2.10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				c.Request.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(c))
		})
	}
}
