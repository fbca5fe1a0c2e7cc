package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"travel-backoffice/internal/config"
)

// Customer is prefilled on the hosted payment page.
type Customer struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Contact string `json:"contact,omitempty"`
}

type LinkRequest struct {
	Amount      float64
	Currency    string
	ReferenceID string
	Description string
	Customer    Customer
	Notes       map[string]string
	ExpireBy    time.Time
}

// Link is a hosted payment link.
type Link struct {
	ID          string `json:"id"`
	ShortURL    string `json:"short_url"`
	Status      string `json:"status"`
	Amount      int64  `json:"amount"`
	AmountPaid  int64  `json:"amount_paid"`
	Currency    string `json:"currency"`
	ReferenceID string `json:"reference_id"`
}

// APIError is a non-2xx answer from the provider.
type APIError struct {
	Status      int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("payment provider: HTTP %d %s: %s", e.Status, e.Code, e.Description)
}

// LinkCreator is what the checkout flow needs from the provider.
type LinkCreator interface {
	CreateLink(ctx context.Context, req LinkRequest) (*Link, error)
	CancelLink(ctx context.Context, id string) error
}

type Client struct {
	baseURL     string
	keyID       string
	keySecret   string
	currency    string
	callbackURL string
	client      *http.Client
	logger      *logrus.Logger
}

func NewClient(cfg *config.PaymentsConfig, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		keyID:       cfg.KeyID,
		keySecret:   cfg.KeySecret,
		currency:    cfg.Currency,
		callbackURL: cfg.CallbackURL,
		client:      &http.Client{Timeout: cfg.Timeout},
		logger:      logger,
	}
}

// MinorUnits converts an amount to the smallest currency unit.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func (c *Client) CreateLink(ctx context.Context, req LinkRequest) (*Link, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("payment link amount must be positive")
	}
	currency := req.Currency
	if currency == "" {
		currency = c.currency
	}

	body := map[string]interface{}{
		"amount":       MinorUnits(req.Amount),
		"currency":     currency,
		"reference_id": req.ReferenceID,
		"description":  req.Description,
		"customer":     req.Customer,
		"notify":       map[string]bool{"sms": false, "email": false},
	}
	if len(req.Notes) > 0 {
		body["notes"] = req.Notes
	}
	if !req.ExpireBy.IsZero() {
		body["expire_by"] = req.ExpireBy.Unix()
	}
	if c.callbackURL != "" {
		body["callback_url"] = c.callbackURL
		body["callback_method"] = "get"
	}

	var link Link
	if err := c.do(ctx, http.MethodPost, "/v1/payment_links", body, &link); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"link_id":      link.ID,
		"reference_id": req.ReferenceID,
		"amount":       req.Amount,
	}).Info("Payment link created")
	return &link, nil
}

func (c *Client) CancelLink(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodPost, "/v1/payment_links/"+url.PathEscape(id)+"/cancel", nil, nil); err != nil {
		return err
	}
	c.logger.WithField("link_id", id).Info("Payment link cancelled")
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Error struct {
				Code        string `json:"code"`
				Description string `json:"description"`
			} `json:"error"`
		}
		if json.Unmarshal(respBody, &payload) == nil && payload.Error.Description != "" {
			apiErr.Code = payload.Error.Code
			apiErr.Description = payload.Error.Description
		} else {
			apiErr.Description = strings.TrimSpace(string(respBody))
		}
		c.logger.WithFields(logrus.Fields{
			"path":        path,
			"status_code": resp.StatusCode,
			"code":        apiErr.Code,
		}).Error("Payment provider request failed")
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode provider response: %w", err)
	}
	return nil
}
