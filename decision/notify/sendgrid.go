package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	contractx "github.com/retailops/smartchain/decision/contract"
)

// Config configures the mail client. Recipient and sender identity are
// explicit here rather than read from hidden globals.
type Config struct {
	URL     string        `split_words:"true" default:"https://api.sendgrid.com/v3/mail/send"`
	APIKey  string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	To      string        `split_words:"true" default:"ops@example.com"`
	From    string        `split_words:"true" default:"noreply@example.com"`
	Timeout time.Duration `split_words:"true" default:"10s"`
}

// Client delivers operations emails through the SendGrid v3 mail API.
type Client struct {
	endpoint   string
	apiKey     string
	to         string
	from       string
	httpClient *http.Client
}

var _ contractx.Notifier = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.URL)
	if endpoint == "" {
		return nil, errors.New("sendgrid url is required")
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, err
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("sendgrid api key is required")
	}

	to := strings.TrimSpace(cfg.To)
	if to == "" {
		return nil, errors.New("recipient address is required")
	}
	from := strings.TrimSpace(cfg.From)
	if from == "" {
		return nil, errors.New("sender address is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		to:       to,
		from:     from,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func MustNew(cfg Config) *Client {
	client, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

type mailAddress struct {
	Email string `json:"email"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type personalization struct {
	To []mailAddress `json:"to"`
}

type mailRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             mailAddress       `json:"from"`
	Subject          string            `json:"subject"`
	Content          []mailContent     `json:"content"`
}

// Send delivers one markdown email to the configured operations recipient.
func (c *Client) Send(ctx context.Context, subject, body string) error {
	payload := mailRequest{
		Personalizations: []personalization{
			{To: []mailAddress{{Email: c.to}}},
		},
		From:    mailAddress{Email: c.from},
		Subject: subject,
		Content: []mailContent{
			{Type: "text/markdown", Value: body},
		},
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: marshal mail request: %v", contractx.ErrNotification, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("%w: %v", contractx.ErrNotification, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", contractx.ErrNotification, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: mail api returned status %d", contractx.ErrNotification, resp.StatusCode)
	}
	return nil
}
