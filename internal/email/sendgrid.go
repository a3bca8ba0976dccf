package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const sendGridAPIURL = "https://api.sendgrid.com/v3/mail/send"

// SendGridSender talks to the SendGrid v3 mail API.
type SendGridSender struct {
	APIKey     string
	FromEmail  string
	FromName   string
	httpClient *http.Client

	// BaseURL overrides the API endpoint in tests.
	BaseURL string
}

func NewSendGridSender(apiKey, fromEmail, fromName string) *SendGridSender {
	return &SendGridSender{
		APIKey:     apiKey,
		FromEmail:  fromEmail,
		FromName:   fromName,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		BaseURL:    sendGridAPIURL,
	}
}

type sgAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sgRequest struct {
	Personalizations []struct {
		To []sgAddress `json:"to"`
	} `json:"personalizations"`
	From    sgAddress `json:"from"`
	Subject string    `json:"subject"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

func (s *SendGridSender) Send(ctx context.Context, toEmail, subject, html string) error {
	if toEmail == "" || subject == "" {
		return errors.New("toEmail and subject are required")
	}

	req := sgRequest{
		From:    sgAddress{Email: s.FromEmail, Name: s.FromName},
		Subject: subject,
	}
	req.Personalizations = append(req.Personalizations, struct {
		To []sgAddress `json:"to"`
	}{To: []sgAddress{{Email: toEmail}}})
	req.Content = append(req.Content, struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}{Type: "text/html", Value: html})

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal sendgrid request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sendgrid request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sendgrid request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return fmt.Errorf("sendgrid error: status %d, body %v", resp.StatusCode, errBody)
	}
	return nil
}
