package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const DefaultEmailBaseURL = "https://api.resend.com"

// EmailSender delivers notifications through a Resend-compatible HTTP email
// API.
type EmailSender struct {
	baseURL string
	apiKey  string
	from    string
	client  *http.Client
}

func NewEmailSender(baseURL, apiKey, from string) *EmailSender {
	if baseURL == "" {
		baseURL = DefaultEmailBaseURL
	}
	return &EmailSender{
		baseURL: baseURL,
		apiKey:  apiKey,
		from:    from,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type emailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (s *EmailSender) Deliver(ctx context.Context, address, subject, body string) error {
	payload, err := json.Marshal(emailRequest{
		From:    s.from,
		To:      []string{address},
		Subject: subject,
		HTML:    body,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/emails", bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("email provider returned status %d", resp.StatusCode)
	}

	return nil
}
