package solve

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/curiosity-whiteboard/whiteboard-backend/internal/boards"
)

var (
	ErrValidation = errors.New("invalid solve input")
	// ErrConfig means the upstream credential is missing. Fatal for the
	// request, never retried.
	ErrConfig   = errors.New("OPENAI_API_KEY missing")
	ErrUpstream = errors.New("upstream failure")
	// ErrEmptyReply means the model answered with no content at all.
	ErrEmptyReply = errors.New("model returned no content")
)

// Request carries one board image plus lightweight conversation context.
// History is the caller's serialized prior exchanges and is passed to the
// model as-is, with no size enforcement.
type Request struct {
	Image    []byte
	MimeType string
	BoardID  string
	History  string
	Question string
}

// Answer is the normalized reply. Every text field defaults to the empty
// string when the model omits it; AnswerPlain, AnswerLatex and
// Explanation exist for legacy clients.
type Answer struct {
	Message      string `json:"message"`
	AnswerPlain  string `json:"answerPlain"`
	AnswerLatex  string `json:"answerLatex"`
	Explanation  string `json:"explanation"`
	QuestionText string `json:"questionText"`
	BoardID      string `json:"boardId"`
}

type Service struct {
	client *Client
	log    *zap.Logger
}

func New(client *Client, log *zap.Logger) *Service {
	return &Service{client: client, log: log}
}

// Solve validates the image, sends it to the model with the detected
// intent mode, and normalizes the structured reply. Persistence is the
// caller's responsibility.
func (s *Service) Solve(ctx context.Context, req Request) (*Answer, error) {
	if s.client == nil || s.client.APIKey == "" {
		return nil, ErrConfig
	}
	if len(req.Image) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrValidation)
	}
	if !strings.HasPrefix(req.MimeType, "image/") {
		return nil, fmt.Errorf("%w: invalid type: %s", ErrValidation, req.MimeType)
	}

	boardID := strings.TrimSpace(req.BoardID)
	if boardID == "" {
		boardID = boards.NewID()
	}

	history := strings.TrimSpace(req.History)
	if history == "" {
		history = "[]"
	}

	mode := DetectMode(req.Question)

	var text strings.Builder
	text.WriteString("Here is the prior history as JSON. Use it as context: ")
	text.WriteString(history)
	if q := strings.TrimSpace(req.Question); q != "" {
		text.WriteString("\nThe user also asked aloud: ")
		text.WriteString(q)
	}
	text.WriteString("\nDetected intent mode: ")
	text.WriteString(string(mode))
	text.WriteString("\nNow read the math in this image and respond using the rules above. " +
		"Important: write your response as natural text with inline math, not LaTeX/TeX. No backslashes or TeX commands. " +
		"Return ONLY JSON with the keys described above.")

	dataURL := "data:" + req.MimeType + ";base64," + base64.StdEncoding.EncodeToString(req.Image)

	raw, err := s.client.ChatJSON(ctx, systemPrompt, []any{
		textPart{Type: "text", Text: text.String()},
		newImagePart(dataURL),
	})
	if err != nil {
		s.log.Warn("solve upstream call failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyReply
	}

	ans := &Answer{BoardID: boardID}
	var parsed map[string]any
	if jsonErr := json.Unmarshal([]byte(raw), &parsed); jsonErr != nil {
		// Non-conforming reply: keep the raw text as the message rather
		// than failing the request.
		ans.Message = raw
		return ans, nil
	}

	ans.Message = strField(parsed, "message")
	ans.QuestionText = strField(parsed, "question_text")
	ans.AnswerPlain = strField(parsed, "answer_plain")
	ans.AnswerLatex = strField(parsed, "answer_latex")
	ans.Explanation = strField(parsed, "explanation")
	return ans, nil
}

func strField(m map[string]any, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
