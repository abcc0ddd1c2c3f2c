package solve

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client is a minimal chat-completions client for the hosted vision
// model. One attempt per invocation; a process-wide rate limiter keeps a
// burst of solve requests from stampeding the model quota.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string
	HTTP    *http.Client

	limiter *rate.Limiter
}

type ClientOptions struct {
	BaseURL        string
	APIKey         string
	Model          string
	RequestsPerSec float64
	Burst          int
}

func NewClient(opt ClientOptions) *Client {
	if opt.BaseURL == "" {
		opt.BaseURL = "https://api.openai.com/v1"
	}
	if opt.Model == "" {
		opt.Model = "gpt-4o"
	}
	if opt.RequestsPerSec <= 0 {
		opt.RequestsPerSec = 2
	}
	if opt.Burst <= 0 {
		opt.Burst = 4
	}
	return &Client{
		BaseURL: opt.BaseURL,
		APIKey:  opt.APIKey,
		Model:   opt.Model,
		HTTP:    &http.Client{Timeout: 60 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(opt.RequestsPerSec), opt.Burst),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type textPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type imagePart struct {
	Type     string `json:"type"`
	ImageURL struct {
		URL string `json:"url"`
	} `json:"image_url"`
}

func newImagePart(dataURL string) imagePart {
	p := imagePart{Type: "image_url"}
	p.ImageURL.URL = dataURL
	return p
}

type chatRequest struct {
	Model          string        `json:"model"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ChatJSON sends one completion request forcing a JSON object reply and
// returns the raw content of the first choice.
func (c *Client) ChatJSON(ctx context.Context, system string, userParts []any) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	req := chatRequest{
		Model:       c.Model,
		Temperature: 0.2,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: userParts},
		},
	}
	req.ResponseFormat.Type = "json_object"

	b, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("upstream decode: %w", err)
	}
	if resp.StatusCode >= 400 {
		if out.Error != nil && out.Error.Message != "" {
			return "", fmt.Errorf("upstream error: %s", out.Error.Message)
		}
		return "", fmt.Errorf("upstream error (status %d)", resp.StatusCode)
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return out.Choices[0].Message.Content, nil
}
