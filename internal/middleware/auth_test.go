package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/managers", RequireRole(testSecret, "manager"), func(c *gin.Context) {
		id, name, role := Identity(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "name": name, "role": role})
	})
	return r
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireRole(t *testing.T) {
	r := newRouter()

	manager, err := SignToken(testSecret, "gerente1@empresa.com", "Roberto Silva", "manager", time.Hour)
	require.NoError(t, err)
	requester, err := SignToken(testSecret, "cliente@empresa.com", "Carlos Silva", "requester", time.Hour)
	require.NoError(t, err)
	expired, err := SignToken(testSecret, "gerente1@empresa.com", "Roberto Silva", "manager", -time.Minute)
	require.NoError(t, err)
	foreign, err := SignToken([]byte("other"), "gerente1@empresa.com", "Roberto Silva", "manager", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"manager allowed", "Bearer " + manager, http.StatusOK},
		{"requester forbidden", "Bearer " + requester, http.StatusForbidden},
		{"missing header", "", http.StatusUnauthorized},
		{"bad format", "Token " + manager, http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong secret", "Bearer " + foreign, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/managers", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := do(r, req)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestRequireRole_SetsIdentity(t *testing.T) {
	r := newRouter()
	token, err := SignToken(testSecret, "gerente2@empresa.com", "Mariana Costa", "manager", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/managers", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	w := do(r, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"gerente2@empresa.com","name":"Mariana Costa","role":"manager"}`, w.Body.String())
}

func TestParseToken(t *testing.T) {
	token, err := SignToken(testSecret, "cliente@empresa.com", "Carlos Silva", "requester", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "cliente@empresa.com", claims.Subject)
	assert.Equal(t, "Carlos Silva", claims.Name)
	assert.Equal(t, "requester", claims.Role)

	_, err = ParseToken(testSecret, "garbage")
	assert.Error(t, err)
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestLogger(zerolog.New(&buf)))
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	do(r, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"status":404`)
	assert.Contains(t, buf.String(), `"path":"/missing"`)
}
