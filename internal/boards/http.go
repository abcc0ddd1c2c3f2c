package boards

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ScopeFrom reads the request scope set by the auth middleware. Missing
// means anonymous.
func ScopeFrom(c *gin.Context) Scope {
	if v, ok := c.Get("board_scope"); ok {
		if s, ok := v.(Scope); ok {
			return s
		}
	}
	return Scope{}
}

type Handler struct {
	boards *Resolver
	log    *zap.Logger
}

func NewHandler(boards *Resolver, log *zap.Logger) *Handler {
	return &Handler{boards: boards, log: log}
}

func Register(rg *gin.RouterGroup, h *Handler) {
	rg.GET("/boards", h.list)
	rg.POST("/boards", h.create)
	rg.GET("/boards/:id", h.get)
	rg.PATCH("/boards/:id", h.rename)
	rg.DELETE("/boards/:id", h.delete)
	rg.GET("/boards/:id/doc", h.getDoc)
	rg.PUT("/boards/:id/doc", h.putDoc)
}

func (h *Handler) list(c *gin.Context) {
	scope := ScopeFrom(c)
	items, err := h.boards.ForScope(scope).List(c.Request.Context(), scope)
	if err != nil {
		h.log.Error("list boards failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list boards."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"boards": items})
}

type createBoardReq struct {
	Title string `json:"title"`
}

func (h *Handler) create(c *gin.Context) {
	var req createBoardReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid body."})
		return
	}
	scope := ScopeFrom(c)
	b, err := h.boards.ForScope(scope).Create(c.Request.Context(), scope, req.Title)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required."})
			return
		}
		h.log.Error("create board failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create board."})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":        b.ID,
		"title":     b.Title,
		"createdAt": b.CreatedAt,
		"updatedAt": b.UpdatedAt,
	})
}

func (h *Handler) get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	scope := ScopeFrom(c)
	b, err := h.boards.ForScope(scope).Get(c.Request.Context(), scope, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		h.log.Error("get board failed", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":        b.ID,
		"title":     b.Title,
		"createdAt": b.CreatedAt,
		"updatedAt": b.UpdatedAt,
		"items":     b.Items,
	})
}

func (h *Handler) rename(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	var req createBoardReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid body."})
		return
	}
	scope := ScopeFrom(c)
	b, err := h.boards.ForScope(scope).Rename(c.Request.Context(), scope, id, req.Title)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required."})
			return
		}
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		h.log.Error("rename board failed", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rename board."})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":        b.ID,
		"title":     b.Title,
		"createdAt": b.CreatedAt,
		"updatedAt": b.UpdatedAt,
	})
}

func (h *Handler) delete(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	scope := ScopeFrom(c)
	if err := h.boards.ForScope(scope).Delete(c.Request.Context(), scope, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		h.log.Error("delete board failed", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete board."})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) getDoc(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	scope := ScopeFrom(c)
	doc, updatedAt, err := h.boards.ForScope(scope).GetSnapshot(c.Request.Context(), scope, id)
	if err != nil {
		h.log.Error("get doc failed", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if doc == nil {
		c.JSON(http.StatusOK, gin.H{"doc": nil, "updatedAt": updatedAt})
		return
	}
	c.JSON(http.StatusOK, gin.H{"doc": doc, "updatedAt": updatedAt})
}

type putDocReq struct {
	Doc *json.RawMessage `json:"doc"`
}

func (h *Handler) putDoc(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	var req putDocReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Doc == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing doc"})
		return
	}
	scope := ScopeFrom(c)
	updatedAt, err := h.boards.ForScope(scope).PutSnapshot(c.Request.Context(), scope, id, *req.Doc)
	if err != nil {
		h.log.Error("put doc failed", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "updatedAt": updatedAt})
}
