package boards

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := NewFileStore(filepath.Join(t.TempDir(), "solve_history.json"))
	h := NewHandler(NewResolver(store, nil), zap.NewNop())

	r := gin.New()
	api := r.Group("/api")
	Register(api, h)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestBoards_CreateListGet(t *testing.T) {
	r := newTestRouter(t)

	rr := doJSON(t, r, http.MethodPost, "/api/boards", gin.H{"title": "Algebra Practice"})
	require.Equal(t, http.StatusOK, rr.Code)

	var created struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "Algebra Practice", created.Title)

	rr = doJSON(t, r, http.MethodGet, "/api/boards", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Boards []Summary `json:"boards"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Boards, 1)
	assert.Equal(t, created.ID, list.Boards[0].ID)

	rr = doJSON(t, r, http.MethodGet, "/api/boards/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var full struct {
		Items []HistoryItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &full))
	assert.NotNil(t, full.Items)
}

func TestBoards_CreateBlankTitle(t *testing.T) {
	r := newTestRouter(t)

	rr := doJSON(t, r, http.MethodPost, "/api/boards", gin.H{"title": "   "})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Title is required.")
}

func TestBoards_GetMissing(t *testing.T) {
	r := newTestRouter(t)

	rr := doJSON(t, r, http.MethodGet, "/api/boards/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestBoards_RenameAndDelete(t *testing.T) {
	r := newTestRouter(t)

	rr := doJSON(t, r, http.MethodPost, "/api/boards", gin.H{"title": "Before"})
	require.Equal(t, http.StatusOK, rr.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	rr = doJSON(t, r, http.MethodPatch, "/api/boards/"+created.ID, gin.H{"title": "After"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "After")

	rr = doJSON(t, r, http.MethodPatch, "/api/boards/"+created.ID, gin.H{"title": ""})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, r, http.MethodPatch, "/api/boards/nope", gin.H{"title": "X"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doJSON(t, r, http.MethodDelete, "/api/boards/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = doJSON(t, r, http.MethodDelete, "/api/boards/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestBoards_DocRoundTrip(t *testing.T) {
	r := newTestRouter(t)

	// PUT upserts the board when it does not exist yet.
	rr := doJSON(t, r, http.MethodPut, "/api/boards/fresh-id/doc", gin.H{"doc": gin.H{"shapes": []string{"a"}}})
	require.Equal(t, http.StatusOK, rr.Code)
	var put struct {
		OK        bool  `json:"ok"`
		UpdatedAt int64 `json:"updatedAt"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &put))
	assert.True(t, put.OK)
	assert.Greater(t, put.UpdatedAt, int64(0))

	rr = doJSON(t, r, http.MethodGet, "/api/boards/fresh-id/doc", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var got struct {
		Doc       json.RawMessage `json:"doc"`
		UpdatedAt int64           `json:"updatedAt"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.JSONEq(t, `{"shapes":["a"]}`, string(got.Doc))
	assert.Equal(t, put.UpdatedAt, got.UpdatedAt)
}

func TestBoards_DocMissing(t *testing.T) {
	r := newTestRouter(t)

	rr := doJSON(t, r, http.MethodGet, "/api/boards/nope/doc", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"doc":null,"updatedAt":0}`, rr.Body.String())
}

func TestBoards_DocMissingKey(t *testing.T) {
	r := newTestRouter(t)

	rr := doJSON(t, r, http.MethodPut, "/api/boards/some-id/doc", gin.H{"other": 1})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Missing doc")
}
