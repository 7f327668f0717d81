package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"helphive/models"
)

// Notifier is told about platform events after they commit. Implementations
// must not be relied on for correctness; the core calls them fire-and-forget
// from a goroutine and a failure never fails the request.
type Notifier interface {
	TaskCreated(task *models.Task) error
}

// Noop discards all events. Used when no webhook is configured.
type Noop struct{}

func (Noop) TaskCreated(*models.Task) error { return nil }

// Webhook posts events as JSON to a configured URL.
type Webhook struct {
	URL    string
	client *http.Client
}

func NewWebhook(url string) *Webhook {
	return &Webhook{
		URL:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (wh *Webhook) TaskCreated(task *models.Task) error {
	return wh.post(map[string]interface{}{
		"event": "task.created",
		"task":  task,
	})
}

func (wh *Webhook) post(payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := wh.client.Post(wh.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
