// Package webhook отправляет текстовые сообщения в чаты через входящие вебхуки.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client отправляет сообщения в вебхуки чатов.
type Client struct {
	httpClient *http.Client
}

// Payload: тело запроса к вебхуку.
type Payload struct {
	Text string `json:"text"`
}

// NewClient создаёт клиент с таймаутом запроса timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{httpClient: &http.Client{Timeout: timeout}}
}

func (c *Client) newRequest(ctx context.Context, url string, body any) (*http.Request, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// Send отправляет text на url. Ответ не из диапазона 2xx считается ошибкой.
func (c *Client) Send(ctx context.Context, url, text string) error {
	const op = "webhook.Send"

	req, err := c.newRequest(ctx, url, Payload{Text: text})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}
	return nil
}
