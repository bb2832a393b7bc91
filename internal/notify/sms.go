package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const twilioAPI = "https://api.twilio.com"

// TwilioSender delivers SMS through the Twilio Messages API.
type TwilioSender struct {
	AccountSID string
	AuthToken  string
	From       string

	// BaseURL overrides the API endpoint, used by tests.
	BaseURL string
	Client  *http.Client
}

// NewTwilioSender returns a sender for the given Twilio account.
func NewTwilioSender(sid, token, from string) *TwilioSender {
	return &TwilioSender{AccountSID: sid, AuthToken: token, From: from}
}

func (t *TwilioSender) client() *http.Client {
	if t.Client != nil {
		return t.Client
	}
	return http.DefaultClient
}

func (t *TwilioSender) baseURL() string {
	if t.BaseURL != "" {
		return t.BaseURL
	}
	return twilioAPI
}

// Send posts one message and returns the Twilio SID. Twilio reports
// request-level problems with a non-2xx status and a JSON error body.
func (t *TwilioSender) Send(ctx context.Context, to, body string) (string, error) {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.baseURL(), t.AccountSID)
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", t.From)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(t.AccountSID, t.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
			Code    int    `json:"code"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return "", fmt.Errorf("twilio: %s (code %d)", apiErr.Message, apiErr.Code)
		}
		return "", fmt.Errorf("twilio: unexpected status %d", resp.StatusCode)
	}
	var out struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", err
	}
	return out.SID, nil
}
