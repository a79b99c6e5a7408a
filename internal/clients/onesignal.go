package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"splitpay-api/internal/domain"
)

const defaultOneSignalURL = "https://api.onesignal.com/notifications"

type OneSignalConfig struct {
	AppID   string
	APIKey  string
	URL     string
	Timeout time.Duration
}

// OneSignalClient sends push notifications addressed by external id, which
// is the user's userUUID.
type OneSignalClient struct {
	appID  string
	apiKey string
	url    string
	http   *http.Client
}

type pushPayload struct {
	AppID          string              `json:"app_id"`
	IncludeAliases map[string][]string `json:"include_aliases"`
	TargetChannel  string              `json:"target_channel"`
	Headings       map[string]string   `json:"headings"`
	Contents       map[string]string   `json:"contents"`
	Data           map[string]any      `json:"data,omitempty"`
}

// PushError carries the provider's response when it rejects a push.
type PushError struct {
	StatusCode int
	Body       string
}

func (e *PushError) Error() string {
	return fmt.Sprintf("onesignal responded %d: %s", e.StatusCode, e.Body)
}

func NewOneSignalClient(cfg OneSignalConfig) *OneSignalClient {
	if cfg.URL == "" {
		cfg.URL = defaultOneSignalURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &OneSignalClient{
		appID:  cfg.AppID,
		apiKey: cfg.APIKey,
		url:    cfg.URL,
		http:   &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *OneSignalClient) Enabled() bool {
	return c != nil && c.appID != ""
}

func (c *OneSignalClient) Push(ctx context.Context, n domain.Notification) (map[string]any, error) {
	body, err := json.Marshal(pushPayload{
		AppID:          c.appID,
		IncludeAliases: map[string][]string{"external_id": {n.RecipientUUID}},
		TargetChannel:  "push",
		Headings:       map[string]string{"en": n.Heading},
		Contents:       map[string]string{"en": n.Content},
		Data:           n.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Basic "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("onesignal request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read onesignal response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &PushError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	out := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("decode onesignal response: %w", err)
		}
	}
	return out, nil
}
