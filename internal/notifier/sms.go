package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/orefwatch/orefwatch/internal/config"
)

type SMSNotifier struct {
	name       string
	cfg        config.SMSChannelConfig
	httpClient *http.Client
}

func NewSMSNotifier(name string, cfg config.SMSChannelConfig) (*SMSNotifier, error) {
	return &SMSNotifier{
		name:       name,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (sn *SMSNotifier) Name() string {
	return sn.name
}

// smsPayload is the request body for the 019-style bulk SMS gateway.
type smsPayload struct {
	SMS smsEnvelope `json:"sms"`
}

type smsEnvelope struct {
	User         smsUser         `json:"user"`
	Source       string          `json:"source"`
	Destinations smsDestinations `json:"destinations"`
	Message      string          `json:"message"`
}

type smsUser struct {
	Username string `json:"username"`
}

type smsDestinations struct {
	Phone []smsPhone `json:"phone"`
}

type smsPhone struct {
	Meta smsPhoneMeta `json:"$"`
}

type smsPhoneMeta struct {
	ID string `json:"id"`
}

func (sn *SMSNotifier) Send(data NotificationData, templates Templates) error {
	msg, err := renderTemplate("sms_message", templates.Alert, data)
	if err != nil {
		return fmt.Errorf("failed to render message for channel '%s': %w", sn.name, err)
	}

	phones := make([]smsPhone, 0, len(sn.cfg.Destinations))
	for _, dest := range sn.cfg.Destinations {
		phones = append(phones, smsPhone{Meta: smsPhoneMeta{ID: dest}})
	}

	payload := smsPayload{
		SMS: smsEnvelope{
			User:         smsUser{Username: sn.cfg.Username},
			Source:       sn.cfg.Sender,
			Destinations: smsDestinations{Phone: phones},
			Message:      msg,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal SMS payload for channel '%s': %w", sn.name, err)
	}

	req, err := http.NewRequest(http.MethodPost, sn.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build SMS request for channel '%s': %w", sn.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+sn.cfg.Token)

	resp, err := sn.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS via channel '%s': %w", sn.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("SMS gateway returned %d for channel '%s': %s", resp.StatusCode, sn.name, string(respBody))
	}
	return nil
}
