package solve

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSolveRouter(t *testing.T, client *Client) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api")
	Register(api, NewHandler(New(client, zap.NewNop()), zap.NewNop()))
	return r
}

func multipartImage(t *testing.T, fieldContentType string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="board.png"`)
	h.Set("Content-Type", fieldContentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestSolveHandler_MissingImage(t *testing.T) {
	r := newSolveRouter(t, NewClient(ClientOptions{APIKey: "k"}))

	req := httptest.NewRequest(http.MethodPost, "/api/solve", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "No 'image' file in form-data.")
}

func TestSolveHandler_NonImageUpload(t *testing.T) {
	r := newSolveRouter(t, NewClient(ClientOptions{APIKey: "k"}))

	body, contentType := multipartImage(t, "text/plain", []byte("not an image"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/solve", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid type")
}

func TestSolveHandler_EmptyImage(t *testing.T) {
	r := newSolveRouter(t, NewClient(ClientOptions{APIKey: "k"}))

	body, contentType := multipartImage(t, "image/png", nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/solve", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSolveHandler_MissingCredential(t *testing.T) {
	r := newSolveRouter(t, NewClient(ClientOptions{APIKey: ""}))

	body, contentType := multipartImage(t, "image/png", pngBytes, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/solve", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "OPENAI_API_KEY missing.")
}

func TestSolveHandler_Success(t *testing.T) {
	client := newUpstream(t, upstreamReply(`{"message":"Try factoring.","question_text":"x²-4=0"}`))
	r := newSolveRouter(t, client)

	body, contentType := multipartImage(t, "image/png", pngBytes, map[string]string{
		"boardId": "b-42",
		"history": `[]`,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/solve", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Try factoring.")
	assert.Contains(t, rr.Body.String(), "b-42")
}

func TestSolveHandler_LegacySessionID(t *testing.T) {
	client := newUpstream(t, upstreamReply(`{"message":"ok"}`))
	r := newSolveRouter(t, client)

	body, contentType := multipartImage(t, "image/png", pngBytes, map[string]string{
		"sessionId": "legacy-7",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/solve", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "legacy-7")
}

func TestSolveHandler_EmptyUpstreamContent(t *testing.T) {
	client := newUpstream(t, upstreamReply(""))
	r := newSolveRouter(t, client)

	body, contentType := multipartImage(t, "image/png", pngBytes, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/solve", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
}
