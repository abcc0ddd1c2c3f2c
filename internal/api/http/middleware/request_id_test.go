package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRequestIDRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rid": GetRequestID(c.Request.Context())})
	})
	return r
}

func TestRequestID_Generated(t *testing.T) {
	r := newRequestIDRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	rid := rr.Header().Get("X-Request-Id")
	assert.NotEmpty(t, rid)
	assert.Contains(t, rr.Body.String(), rid)
}

func TestRequestID_EchoesCallerValue(t *testing.T) {
	r := newRequestIDRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-Id", "caller-id-1")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, "caller-id-1", rr.Header().Get("X-Request-Id"))
	assert.Contains(t, rr.Body.String(), "caller-id-1")
}
