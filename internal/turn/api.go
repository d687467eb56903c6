package turn

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// API is the server surface the machine drives.
type API interface {
	Start(ctx context.Context, req StartRequest) (*StartResponse, error)
	SubmitAnswer(ctx context.Context, sessionID string, questionID uint, text string, responseTime float64) (*SubmitResponse, error)
	End(ctx context.Context, sessionID, reason string) error
}

type StartRequest struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	Position     string `json:"position"`
	Language     string `json:"language"`
	ConsentGiven bool   `json:"consentGiven"`
}

type Question struct {
	ID    uint   `json:"id"`
	Order int    `json:"order"`
	Text  string `json:"text"`
}

type Progress struct {
	Current    int `json:"current"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

type Summary struct {
	TotalDuration     int     `json:"totalDuration"`
	QuestionsAnswered int     `json:"questionsAnswered"`
	CompletionRate    float64 `json:"completionRate"`
}

type StartResponse struct {
	SessionID    string    `json:"sessionId"`
	ApplicantID  string    `json:"applicantId"`
	Message      string    `json:"message"`
	NextQuestion *Question `json:"nextQuestion"`
	Progress     *Progress `json:"progress"`
}

type SubmitResponse struct {
	Message      string    `json:"message"`
	NextQuestion *Question `json:"nextQuestion"`
	IsComplete   bool      `json:"isComplete"`
	Progress     *Progress `json:"progress"`
	Summary      *Summary  `json:"summary"`
}

// envelope mirrors the server's response body.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// Client talks to the interview server over JSON/HTTP.
type Client struct {
	baseURL  string
	language string
	http     *http.Client
}

func NewClient(baseURL, language string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: language,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s%s?lang=%s", c.baseURL, path, c.language)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		if env.Error != "" {
			return fmt.Errorf("%s: %s", env.Error, env.Message)
		}
		return fmt.Errorf("server error: %s", env.Message)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
	}
	return nil
}

func (c *Client) Start(ctx context.Context, req StartRequest) (*StartResponse, error) {
	var out StartResponse
	if err := c.post(ctx, "/start", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SubmitAnswer(ctx context.Context, sessionID string, questionID uint, text string, responseTime float64) (*SubmitResponse, error) {
	body := map[string]any{
		"sessionId":    sessionID,
		"questionId":   questionID,
		"text":         text,
		"responseTime": responseTime,
	}
	var out SubmitResponse
	if err := c.post(ctx, "/answer", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) End(ctx context.Context, sessionID, reason string) error {
	body := map[string]any{"sessionId": sessionID, "reason": reason}
	return c.post(ctx, "/end", body, nil)
}
