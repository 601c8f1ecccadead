package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Notifier delivers transactional mail (OTP codes, order confirmations).
type Notifier interface {
	SendEmail(ctx context.Context, recipient, subject, body string) error
}

// webhookNotifier posts messages to a mail-gateway webhook. With no
// endpoint configured it logs the message instead, which is what
// development environments run with.
type webhookNotifier struct {
	endpoint   string
	httpClient *http.Client
}

func NewWebhookNotifier(endpoint string) Notifier {
	return &webhookNotifier{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (n *webhookNotifier) SendEmail(ctx context.Context, recipient, subject, body string) error {
	if n.endpoint == "" {
		log.Printf("MAIL (no gateway configured) to=%s subject=%q", recipient, subject)
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"to":      recipient,
		"subject": subject,
		"body":    body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mail gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail gateway returned status %d", resp.StatusCode)
	}
	return nil
}
