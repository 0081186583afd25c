package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

// Notifier delivers one downstream notification. Success means the consumer
// acknowledged the delivery.
type Notifier interface {
	Notify(ctx context.Context, payload map[string]interface{}) error
}

// HTTPNotifier posts notifications to a configured consumer endpoint.
// Any 2xx response is success, everything else is a failure.
type HTTPNotifier struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewHTTPNotifier creates a notifier for the given consumer URL
func NewHTTPNotifier(url string, timeout time.Duration, logger *zap.Logger) *HTTPNotifier {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (n *HTTPNotifier) Notify(ctx context.Context, payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notification delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification rejected with status %d", resp.StatusCode)
	}

	return nil
}
