package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"travel-backoffice/internal/config"
)

var ErrNotConfigured = errors.New("mail API key is not configured")

type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers transactional email and returns the provider message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

type Client struct {
	baseURL string
	apiKey  string
	from    string
	replyTo string
	client  *http.Client
	logger  *logrus.Logger
}

func NewClient(cfg *config.MailConfig, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		from:    cfg.From,
		replyTo: cfg.ReplyTo,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

func (c *Client) Send(ctx context.Context, msg Message) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}
	if len(msg.To) == 0 {
		return "", fmt.Errorf("email has no recipients")
	}

	payload := map[string]interface{}{
		"from":    c.from,
		"to":      msg.To,
		"subject": msg.Subject,
		"html":    msg.HTML,
	}
	if msg.Text != "" {
		payload["text"] = msg.Text
	}
	if c.replyTo != "" {
		payload["reply_to"] = c.replyTo
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WithFields(logrus.Fields{
			"status_code":   resp.StatusCode,
			"response_body": string(respBody),
		}).Error("Mail API rejected message")
		return "", fmt.Errorf("mail API: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("decode mail API response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{"message_id": out.ID, "to": msg.To}).Info("Email sent")
	return out.ID, nil
}
