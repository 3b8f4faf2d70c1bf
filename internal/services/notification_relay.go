package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/chantierly/visadoc/pkg/logger"
)

// RelayService mirrors inbox notifications to an external webhook as generic
// JSON posts. Strictly best-effort: the inbox row is the source of truth and
// a failed post is only logged.
type RelayService struct {
	webhookURL string
	client     *http.Client
}

func NewRelayService(webhookURL string) *RelayService {
	return &RelayService{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether a webhook target is configured.
func (s *RelayService) Enabled() bool {
	return s.webhookURL != ""
}

// Process delivers one relay task. Safe to call with relaying disabled.
func (s *RelayService) Process(ctx context.Context, task *RelayTask) error {
	if !s.Enabled() {
		return nil
	}

	payload := map[string]interface{}{
		"notification_id": task.NotificationID,
		"user_id":         task.UserID,
		"type":            task.Type,
		"title":           task.Title,
		"message":         task.Message,
		"related_id":      task.RelatedID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("relay webhook returned status %d: %s", resp.StatusCode, string(respBody))
	}

	logger.Debug().Uint("notification_id", task.NotificationID).Msg("notification relayed")
	return nil
}
