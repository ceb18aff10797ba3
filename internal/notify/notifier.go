package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Notifier delivers a text message to an external sink. Best effort, no
// ordering guarantee.
type Notifier interface {
	Push(ctx context.Context, text string) error
}

// Discord posts messages to a Discord webhook.
type Discord struct {
	webhookURL string
	HTTPClient *http.Client
}

func NewDiscord(webhookURL string) *Discord {
	return &Discord{
		webhookURL: webhookURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type discordMessage struct {
	Content string `json:"content"`
}

func (d *Discord) Push(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	payload, err := json.Marshal(discordMessage{Content: text})
	if err != nil {
		return fmt.Errorf("marshal discord message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("send discord message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("discord webhook status %s: %s", resp.Status, strings.TrimSpace(string(body)))
}

// LogOnly is the fallback sink when no webhook is configured: messages land
// in the process log and nothing leaves the host.
type LogOnly struct{}

func (LogOnly) Push(ctx context.Context, text string) error {
	log.Printf("notify (local): %s", text)
	return nil
}
