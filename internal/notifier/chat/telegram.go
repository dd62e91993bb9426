// Package chat delivers chat jobs through the Telegram Bot API.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pratik-mahalle/petalert/internal/domain/notification"
	"github.com/pratik-mahalle/petalert/internal/notifier"
)

// DefaultAPIBaseURL is the public Bot API endpoint
const DefaultAPIBaseURL = "https://api.telegram.org"

// TelegramSender implements notifier.Sender
type TelegramSender struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewTelegramSender creates a sender for the bot identified by token
func NewTelegramSender(baseURL, token string, timeout time.Duration) *TelegramSender {
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TelegramSender{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

func (s *TelegramSender) Send(ctx context.Context, job *notification.Job) error {
	if job.Chat == nil || job.Chat.ChatID == "" {
		return notifier.Permanent(fmt.Errorf("job %s has no chat recipient", job.EventID))
	}
	if s.token == "" {
		return notifier.Transient(fmt.Errorf("chat bot token not configured"))
	}

	if job.Chat.PhotoURL != "" {
		status, err := s.call(ctx, "sendPhoto", map[string]string{
			"chat_id": job.Chat.ChatID,
			"photo":   job.Chat.PhotoURL,
			"caption": job.Chat.Message,
		})
		// 400 covers an expired or unreachable photo URL; fall back to text.
		if err == nil || status != http.StatusBadRequest {
			return err
		}
	}

	_, err := s.call(ctx, "sendMessage", map[string]string{
		"chat_id": job.Chat.ChatID,
		"text":    job.Chat.Message,
	})
	return err
}

// call invokes a Bot API method and returns the HTTP status, zero when the
// request never got an answer
func (s *TelegramSender) call(ctx context.Context, method string, body interface{}) (int, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return 0, notifier.Permanent(fmt.Errorf("failed to marshal chat payload: %w", err))
	}

	url := fmt.Sprintf("%s/bot%s/%s", s.baseURL, s.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return 0, notifier.Permanent(fmt.Errorf("failed to create chat request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, notifier.Transient(fmt.Errorf("chat request failed: %w", err))
	}
	defer resp.Body.Close()

	var result apiResponse
	_ = json.NewDecoder(resp.Body).Decode(&result)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && result.OK {
		return resp.StatusCode, nil
	}

	apiErr := fmt.Errorf("chat API %s returned %d: %s", method, resp.StatusCode, result.Description)
	return resp.StatusCode, classifyStatus(resp.StatusCode, apiErr)
}

// classifyStatus maps Bot API failures. Unknown chats, blocked bots and
// rejected tokens need a human; throttling and server errors pass.
func classifyStatus(status int, err error) error {
	switch {
	case status == http.StatusTooManyRequests, status >= 500:
		return notifier.Transient(err)
	case status == http.StatusBadRequest,
		status == http.StatusUnauthorized,
		status == http.StatusForbidden,
		status == http.StatusNotFound:
		return notifier.Permanent(err)
	default:
		return notifier.Transient(err)
	}
}
