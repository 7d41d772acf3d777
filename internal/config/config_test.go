package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfigFile(t, `
monitored_areas: ["אשקלון"]
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultFeedURL, cfg.FeedURL)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
	assert.Equal(t, DefaultFetchTimeout, cfg.FetchTimeout)
	assert.Equal(t, DefaultPollInterval, cfg.PollInterval)
	assert.Equal(t, DefaultAlertPause, cfg.AlertPause)
	assert.Equal(t, DefaultHistorySize, cfg.HistorySize)
	assert.Equal(t, "Asia/Jerusalem", cfg.Location.String())
	assert.Equal(t, DefaultAlertTemplate, cfg.Templates.Alert)
}

func TestLoadConfigFull(t *testing.T) {
	path := writeConfigFile(t, `
feed_url: "https://example.com/alerts.json"
user_agent: "watcher/1.0"
fetch_timeout: "3s"
poll_interval: "2"
alert_pause: "1m"
monitored_areas: ["אשקלון", "tel aviv"]
area_aliases:
  "אשקלון": ["ashkelon"]
timezone: "UTC"
raw_dump_path: "/tmp/last_raw.json"
history_size: 5
listen_addr: ":8099"
notification_channels:
  - name: "console"
    type: "stdout"
templates:
  alert: "{{.Title}}"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/alerts.json", cfg.FeedURL)
	assert.Equal(t, "watcher/1.0", cfg.UserAgent)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, time.Minute, cfg.AlertPause)
	assert.Equal(t, []string{"אשקלון", "tel aviv"}, cfg.MonitoredAreas)
	assert.Equal(t, []string{"ashkelon"}, cfg.AreaAliases["אשקלון"])
	assert.Equal(t, "UTC", cfg.Location.String())
	assert.Equal(t, "/tmp/last_raw.json", cfg.RawDumpPath)
	assert.Equal(t, 5, cfg.HistorySize)
	assert.Equal(t, ":8099", cfg.ListenAddr)
	assert.Equal(t, "{{.Title}}", cfg.Templates.Alert)
	require.Len(t, cfg.NotificationChannels, 1)
	assert.Equal(t, "console", cfg.NotificationChannels[0].Name)
}

func TestLoadConfigErrors(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
	}{
		{name: "no_monitored_areas", yaml: `feed_url: "https://example.com"`},
		{name: "empty_monitored_areas", yaml: `monitored_areas: []`},
		{name: "bad_poll_interval", yaml: "monitored_areas: [\"x\"]\npoll_interval: \"soon\""},
		{name: "bad_timezone", yaml: "monitored_areas: [\"x\"]\ntimezone: \"Mars/Olympus\""},
		{name: "channel_missing_name", yaml: "monitored_areas: [\"x\"]\nnotification_channels:\n  - type: \"stdout\""},
		{name: "channel_unknown_type", yaml: "monitored_areas: [\"x\"]\nnotification_channels:\n  - name: \"c\"\n    type: \"pigeon\""},
		{name: "not_yaml", yaml: "{{{"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfigFile(t, tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestChannelSecretsFromEnv(t *testing.T) {
	t.Setenv("OREFWATCH_TELEGRAM_TOKEN_FAMILY_CHAT", "123:abc")

	path := writeConfigFile(t, `
monitored_areas: ["אשקלון"]
notification_channels:
  - name: "family-chat"
    type: "telegram"
    config:
      chat_id: 42
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	tc, err := GetTelegramChannelConfig(cfg.NotificationChannels[0])
	require.NoError(t, err)
	assert.Equal(t, "123:abc", tc.BotToken)
	assert.Equal(t, int64(42), tc.ChatID)
}

func TestGetEmailChannelConfig(t *testing.T) {
	nc := NotificationChannelConfig{
		Name: "ops",
		Type: "email",
		Config: map[string]interface{}{
			"smtp_host":     "smtp.example.com",
			"smtp_port":     465,
			"smtp_username": "user",
			"smtp_password": "pw",
			"smtp_from":     "Watcher <watch@example.com>",
			"smtp_to":       []interface{}{"a@example.com", "b@example.com"},
		},
	}
	ec, err := GetEmailChannelConfig(nc)
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com", ec.SMTPHost)
	assert.Equal(t, 465, ec.SMTPPort)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, ec.SMTPTo)

	delete(nc.Config, "smtp_to")
	_, err = GetEmailChannelConfig(nc)
	assert.Error(t, err)
}

func TestGetSMSChannelConfig(t *testing.T) {
	nc := NotificationChannelConfig{
		Name: "sms",
		Type: "sms",
		Config: map[string]interface{}{
			"api_url":      "https://gateway.example.com/api",
			"username":     "acct",
			"sender":       "OREF",
			"token":        "tok",
			"destinations": []interface{}{"0501234567"},
		},
	}
	sc, err := GetSMSChannelConfig(nc)
	require.NoError(t, err)
	assert.Equal(t, []string{"0501234567"}, sc.Destinations)

	delete(nc.Config, "token")
	_, err = GetSMSChannelConfig(nc)
	assert.Error(t, err)
}

func TestGetNtfyChannelConfigDefaultsServer(t *testing.T) {
	nc := NotificationChannelConfig{
		Name:   "push",
		Type:   "ntfy",
		Config: map[string]interface{}{"topic": "oref-alerts"},
	}
	pc, err := GetNtfyChannelConfig(nc)
	require.NoError(t, err)
	assert.Equal(t, "https://ntfy.sh", pc.ServerURL)
	assert.Equal(t, "oref-alerts", pc.Topic)

	delete(nc.Config, "topic")
	_, err = GetNtfyChannelConfig(nc)
	assert.Error(t, err)
}

func TestGetSoundChannelConfig(t *testing.T) {
	nc := NotificationChannelConfig{
		Name: "siren",
		Type: "sound",
		Config: map[string]interface{}{
			"command": "paplay",
			"args":    []interface{}{"/usr/share/sounds/alarm.ogg"},
		},
	}
	sc, err := GetSoundChannelConfig(nc)
	require.NoError(t, err)
	assert.Equal(t, "paplay", sc.Command)
	assert.Equal(t, []string{"/usr/share/sounds/alarm.ogg"}, sc.Args)
}
