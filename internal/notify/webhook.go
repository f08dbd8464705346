package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"tradelog/internal/logger"
)

// WebhookNotifier POSTs each change event to URL. Delivery failures are logged
// and never reach the caller.
type WebhookNotifier struct {
	URL     string
	HTTP    *http.Client
	Timeout time.Duration
	Logger  *zap.Logger
}

func (n *WebhookNotifier) Changed(ctx context.Context, collections ...string) {
	if n == nil || n.URL == "" || len(collections) == 0 {
		return
	}
	if err := n.send(ctx, newEvent(collections)); err != nil {
		logger.OrNop(n.Logger).Warn("change webhook failed", zap.String("url", n.URL), zap.Error(err))
	}
}

func (n *WebhookNotifier) send(ctx context.Context, ev Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	timeout := n.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := n.HTTP
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &httpError{StatusCode: resp.StatusCode}
	}
	return nil
}

type httpError struct {
	StatusCode int
}

func (e *httpError) Error() string {
	return "webhook http status " + http.StatusText(e.StatusCode)
}
