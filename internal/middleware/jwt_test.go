package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lusia-studio/grades-api/internal/models"
	appErrors "github.com/lusia-studio/grades-api/pkg/errors"
)

type staticValidator struct {
	token  string
	claims *models.JWTClaims
}

func (v staticValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != v.token {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return v.claims, nil
}

func newProtectedRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		claims, _ := c.Get(ContextUserKey)
		c.JSON(http.StatusOK, gin.H{"user": claims.(*models.JWTClaims).UserID})
	})
	r.GET("/protected", handlers...)
	return r
}

func TestJWTMiddleware(t *testing.T) {
	validator := staticValidator{token: "good", claims: &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent}}
	router := newProtectedRouter(JWT(validator))

	cases := []struct {
		name   string
		header string
		status int
	}{
		{name: "missing header", header: "", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good", status: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", status: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer bad", status: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer good", status: http.StatusOK},
		{name: "case insensitive scheme", header: "bearer good", status: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			require.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.JSONEq(t, `{"user":"student-1"}`, w.Body.String())
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	student := staticValidator{token: "student", claims: &models.JWTClaims{UserID: "s-1", Role: models.RoleStudent}}
	teacher := staticValidator{token: "teacher", claims: &models.JWTClaims{UserID: "t-1", Role: models.RoleTeacher}}

	req := func() *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/protected", nil)
		r.Header.Set("Authorization", "Bearer student")
		return r
	}

	w := httptest.NewRecorder()
	newProtectedRouter(JWT(student), RequireRoles(models.RoleStudent)).ServeHTTP(w, req())
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r := req()
	r.Header.Set("Authorization", "Bearer teacher")
	newProtectedRouter(JWT(teacher), RequireRoles(models.RoleStudent)).ServeHTTP(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	newProtectedRouter(RequireRoles(models.RoleStudent)).ServeHTTP(w, req())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
