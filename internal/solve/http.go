package solve

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	svc *Service
	log *zap.Logger
}

func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func Register(rg *gin.RouterGroup, h *Handler, extra ...gin.HandlerFunc) {
	handlers := append(extra, h.Solve)
	rg.POST("/solve", handlers...)
}

func (h *Handler) Solve(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No 'image' file in form-data."})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read 'image' file."})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read 'image' file."})
		return
	}

	boardID := c.PostForm("boardId")
	if boardID == "" {
		// backward compat with clients still sending sessionId
		boardID = c.PostForm("sessionId")
	}

	ans, err := h.svc.Solve(c.Request.Context(), Request{
		Image:    data,
		MimeType: file.Header.Get("Content-Type"),
		BoardID:  boardID,
		History:  c.PostForm("history"),
		Question: c.PostForm("question"),
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrConfig):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "OPENAI_API_KEY missing."})
		case errors.Is(err, ErrEmptyReply):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Model returned no content."})
		default:
			h.log.Error("solve failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, ans)
}
