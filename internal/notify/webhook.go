package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// webhookPayload shapes msg for Discord ("content") or Slack-compatible
// ("text") endpoints.
func webhookPayload(url, msg string) ([]byte, error) {
	key := "text"
	if strings.Contains(url, "discord") {
		key = "content"
	}
	return json.Marshal(map[string]string{key: msg})
}

func (n *Notifier) postWebhook(ctx context.Context, msg string) error {
	body, err := webhookPayload(n.webhookURL, msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, n.webhookTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
