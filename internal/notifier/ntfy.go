package notifier

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/orefwatch/orefwatch/internal/config"
)

type NtfyNotifier struct {
	name       string
	cfg        config.NtfyChannelConfig
	httpClient *http.Client
}

func NewNtfyNotifier(name string, cfg config.NtfyChannelConfig) (*NtfyNotifier, error) {
	return &NtfyNotifier{
		name:       name,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (nn *NtfyNotifier) Name() string {
	return nn.name
}

func (nn *NtfyNotifier) Send(data NotificationData, templates Templates) error {
	msg, err := renderTemplate("ntfy_message", templates.Alert, data)
	if err != nil {
		return fmt.Errorf("failed to render message for channel '%s': %w", nn.name, err)
	}

	url := strings.TrimRight(nn.cfg.ServerURL, "/") + "/" + nn.cfg.Topic
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(msg))
	if err != nil {
		return fmt.Errorf("failed to build ntfy request for channel '%s': %w", nn.name, err)
	}

	title := collapseLine(data.Title)
	if title != "" {
		req.Header.Set("Title", title)
	}
	if nn.cfg.Priority != "" {
		req.Header.Set("Priority", nn.cfg.Priority)
	}
	if nn.cfg.Tags != "" {
		req.Header.Set("Tags", nn.cfg.Tags)
	}

	resp, err := nn.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to publish to ntfy via channel '%s': %w", nn.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("ntfy returned %d for channel '%s': %s", resp.StatusCode, nn.name, string(respBody))
	}
	return nil
}
