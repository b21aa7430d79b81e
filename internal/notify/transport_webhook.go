package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// WebhookTransport posts messages as JSON to an HTTP mail relay.
type WebhookTransport struct {
	url        string
	from       string
	httpClient *http.Client
}

func NewWebhookTransport(url, from string) *WebhookTransport {
	return &WebhookTransport{
		url:  url,
		from: from,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type webhookPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

func (t *WebhookTransport) Name() string { return "webhook" }

func (t *WebhookTransport) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(webhookPayload{From: t.from, To: msg.To, Subject: msg.Subject, HTML: msg.HTML})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call mail relay: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("mail relay returned status %d: %s", resp.StatusCode, string(b))
	}
	return nil
}
