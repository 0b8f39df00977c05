package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coursehub_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-with-enough-characters!!"

type teacherSet map[string]bool

func (s teacherSet) IsTeacher(userID string) bool { return s[userID] }

func init() {
	gin.SetMode(gin.TestMode)
}

func token(t *testing.T, userID, secret string, ttl time.Duration) string {
	t.Helper()
	tok, err := util.GenerateJWT(userID, userID+"@example.com", secret, ttl)
	require.NoError(t, err)
	return tok
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		c.String(http.StatusOK, util.GetUserID(c))
	})
	r.GET("/", handlers...)
	return r
}

func do(r http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter(AuthMiddleware(testSecret))

	tests := []struct {
		name          string
		authorization string
		wantStatus    int
		wantBody      string
	}{
		{name: "missing header", wantStatus: http.StatusUnauthorized},
		{name: "not bearer", authorization: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", authorization: "Bearer not-a-jwt", wantStatus: http.StatusUnauthorized},
		{name: "wrong secret", authorization: "Bearer " + token(t, "u1", "another-secret-another-secret-xx", time.Hour), wantStatus: http.StatusUnauthorized},
		{name: "expired", authorization: "Bearer " + token(t, "u1", testSecret, -time.Minute), wantStatus: http.StatusUnauthorized},
		{name: "valid", authorization: "Bearer " + token(t, "u1", testSecret, time.Hour), wantStatus: http.StatusOK, wantBody: "u1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.authorization)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	r := newRouter(OptionalAuthMiddleware(testSecret))

	w := do(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = do(r, "Bearer broken")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = do(r, "Bearer "+token(t, "u2", testSecret, time.Hour))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u2", w.Body.String())
}

func TestTeacherMiddleware(t *testing.T) {
	teachers := teacherSet{"teacher": true}

	anonymous := newRouter(TeacherMiddleware(teachers))
	assert.Equal(t, http.StatusUnauthorized, do(anonymous, "").Code)

	r := newRouter(AuthMiddleware(testSecret), TeacherMiddleware(teachers))
	assert.Equal(t, http.StatusForbidden, do(r, "Bearer "+token(t, "learner", testSecret, time.Hour)).Code)

	w := do(r, "Bearer "+token(t, "teacher", testSecret, time.Hour))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "teacher", w.Body.String())
}
