package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/orefwatch/orefwatch/internal/util"
)

// Defaults mirror the public Home Front Command feed and the polling cadence
// the feed is known to tolerate.
const (
	DefaultFeedURL      = "https://www.oref.org.il/WarningMessages/alert/alerts.json"
	DefaultUserAgent    = "Mozilla/5.0"
	DefaultFetchTimeout = 10 * time.Second
	DefaultPollInterval = 5 * time.Second
	DefaultAlertPause   = 25 * time.Second
	DefaultTimezone     = "Asia/Jerusalem"
	DefaultHistorySize  = 100
)

// DefaultAlertTemplate is the message format the notification channels render
// unless the config overrides it. Hebrew, matching the feed's language.
const DefaultAlertTemplate = `התרעת פיקוד העורף: {{.Title}}
הנחיה: {{.Description}}
אזורים: {{join .Areas ", "}}
*נשלח בשעה {{.Time.Format "15:04"}}*`

type Config struct {
	FeedURL         string `yaml:"feed_url"`
	UserAgent       string `yaml:"user_agent"`
	FetchTimeoutStr string `yaml:"fetch_timeout"`
	PollIntervalStr string `yaml:"poll_interval"` // sleep after an uneventful cycle
	AlertPauseStr   string `yaml:"alert_pause"`   // sleep after a delivered alert

	MonitoredAreas []string            `yaml:"monitored_areas"`
	AreaAliases    map[string][]string `yaml:"area_aliases"`

	Timezone    string `yaml:"timezone"`
	RawDumpPath string `yaml:"raw_dump_path"` // last fetched body, for debugging; empty disables
	HistorySize int    `yaml:"history_size"`
	ListenAddr  string `yaml:"listen_addr"` // status/metrics HTTP server; empty disables
	Tray        bool   `yaml:"tray"`        // Windows system tray icon

	NotificationChannels []NotificationChannelConfig `yaml:"notification_channels"`
	Templates            TemplateConfig              `yaml:"templates"`

	// Derived at load time.
	FetchTimeout time.Duration  `yaml:"-"`
	PollInterval time.Duration  `yaml:"-"`
	AlertPause   time.Duration  `yaml:"-"`
	Location     *time.Location `yaml:"-"`
}

type NotificationChannelConfig struct {
	Name   string                 `yaml:"name"`
	Type   string                 `yaml:"type"` // "stdout", "email", "sms", "telegram", "ntfy", "sound"
	Config map[string]interface{} `yaml:"config"`
}

type EmailChannelConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string // populated from ENV
	SMTPFrom     string
	SMTPTo       []string
	SMTPUseTLS   bool // STARTTLS; port 465 uses implicit TLS regardless
}

type SMSChannelConfig struct {
	APIURL       string
	Username     string
	Sender       string
	Token        string // populated from ENV
	Destinations []string
}

type TelegramChannelConfig struct {
	BotToken string // populated from ENV
	ChatID   int64
}

type NtfyChannelConfig struct {
	ServerURL string
	Topic     string
	Priority  string
	Tags      string
}

type SoundChannelConfig struct {
	Command string
	Args    []string
}

type TemplateConfig struct {
	Alert string `yaml:"alert"`
}

func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML from %s: %w", filePath, err)
	}

	if strings.TrimSpace(cfg.FeedURL) == "" {
		cfg.FeedURL = DefaultFeedURL
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	cfg.FetchTimeout, err = intervalOrDefault(cfg.FetchTimeoutStr, DefaultFetchTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid fetch_timeout: %w", err)
	}
	cfg.PollInterval, err = intervalOrDefault(cfg.PollIntervalStr, DefaultPollInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid poll_interval: %w", err)
	}
	cfg.AlertPause, err = intervalOrDefault(cfg.AlertPauseStr, DefaultAlertPause)
	if err != nil {
		return nil, fmt.Errorf("invalid alert_pause: %w", err)
	}

	if len(cfg.MonitoredAreas) == 0 {
		return nil, fmt.Errorf("monitored_areas must list at least one area name")
	}

	tz := cfg.Timezone
	if strings.TrimSpace(tz) == "" {
		tz = DefaultTimezone
	}
	cfg.Location, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultHistorySize
	}

	for i := range cfg.NotificationChannels {
		nc := &cfg.NotificationChannels[i]
		if nc.Name == "" {
			return nil, fmt.Errorf("notification channel at index %d missing name", i)
		}
		if err := applyChannelSecrets(nc); err != nil {
			return nil, err
		}
	}

	if cfg.Templates.Alert == "" {
		cfg.Templates.Alert = DefaultAlertTemplate
	}

	return &cfg, nil
}

// applyChannelSecrets loads sensitive channel fields from environment
// variables so they never have to live in the config file. Naming
// convention: OREFWATCH_<FIELD>_<CHANNEL_NAME_UPPERCASE>, e.g.
// OREFWATCH_SMTP_PASSWORD_OPS_EMAIL, OREFWATCH_TELEGRAM_TOKEN_FAMILY.
func applyChannelSecrets(nc *NotificationChannelConfig) error {
	channelKey := strings.ToUpper(strings.ReplaceAll(nc.Name, "-", "_"))
	setFromEnv := func(configKey, envField string) {
		envKey := fmt.Sprintf("OREFWATCH_%s_%s", envField, channelKey)
		if v := os.Getenv(envKey); v != "" {
			if nc.Config == nil {
				nc.Config = make(map[string]interface{})
			}
			nc.Config[configKey] = v
		}
	}

	switch nc.Type {
	case "email":
		setFromEnv("smtp_password", "SMTP_PASSWORD")
	case "sms":
		setFromEnv("token", "SMS_TOKEN")
	case "telegram":
		setFromEnv("bot_token", "TELEGRAM_TOKEN")
	case "stdout", "ntfy", "sound":
		// no secrets
	default:
		return fmt.Errorf("notification channel '%s' has unknown type '%s'", nc.Name, nc.Type)
	}
	return nil
}

func intervalOrDefault(s string, def time.Duration) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	return util.ParseInterval(s)
}

func getString(nc NotificationChannelConfig, key string) (string, bool) {
	v, ok := nc.Config[key].(string)
	return v, ok && strings.TrimSpace(v) != ""
}

func getStringList(nc NotificationChannelConfig, key string) []string {
	raw, ok := nc.Config[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// GetEmailChannelConfig extracts a typed email config from the generic
// channel config map.
func GetEmailChannelConfig(nc NotificationChannelConfig) (*EmailChannelConfig, error) {
	if nc.Type != "email" {
		return nil, fmt.Errorf("not an email channel")
	}
	var ec EmailChannelConfig
	var ok bool
	if ec.SMTPHost, ok = getString(nc, "smtp_host"); !ok {
		return nil, fmt.Errorf("channel '%s': smtp_host missing or not a string", nc.Name)
	}
	if port, ok := nc.Config["smtp_port"].(int); ok {
		ec.SMTPPort = port
	} else {
		return nil, fmt.Errorf("channel '%s': smtp_port missing or not an int", nc.Name)
	}
	ec.SMTPUsername, _ = getString(nc, "smtp_username")
	ec.SMTPPassword, _ = getString(nc, "smtp_password")
	if ec.SMTPFrom, ok = getString(nc, "smtp_from"); !ok {
		return nil, fmt.Errorf("channel '%s': smtp_from missing or not a string", nc.Name)
	}
	ec.SMTPTo = getStringList(nc, "smtp_to")
	if len(ec.SMTPTo) == 0 {
		return nil, fmt.Errorf("channel '%s': smtp_to missing or not a list of strings", nc.Name)
	}
	if useTLS, ok := nc.Config["smtp_use_tls"].(bool); ok {
		ec.SMTPUseTLS = useTLS
	}
	return &ec, nil
}

// GetSMSChannelConfig extracts a typed SMS gateway config.
func GetSMSChannelConfig(nc NotificationChannelConfig) (*SMSChannelConfig, error) {
	if nc.Type != "sms" {
		return nil, fmt.Errorf("not an sms channel")
	}
	var sc SMSChannelConfig
	var ok bool
	if sc.APIURL, ok = getString(nc, "api_url"); !ok {
		return nil, fmt.Errorf("channel '%s': api_url missing or not a string", nc.Name)
	}
	if sc.Username, ok = getString(nc, "username"); !ok {
		return nil, fmt.Errorf("channel '%s': username missing or not a string", nc.Name)
	}
	sc.Sender, _ = getString(nc, "sender")
	sc.Token, _ = getString(nc, "token") // from ENV
	sc.Destinations = getStringList(nc, "destinations")
	if len(sc.Destinations) == 0 {
		return nil, fmt.Errorf("channel '%s': destinations missing or not a list of strings", nc.Name)
	}
	if sc.Token == "" {
		return nil, fmt.Errorf("channel '%s': token missing (set OREFWATCH_SMS_TOKEN_...)", nc.Name)
	}
	return &sc, nil
}

// GetTelegramChannelConfig extracts a typed Telegram config.
func GetTelegramChannelConfig(nc NotificationChannelConfig) (*TelegramChannelConfig, error) {
	if nc.Type != "telegram" {
		return nil, fmt.Errorf("not a telegram channel")
	}
	var tc TelegramChannelConfig
	tc.BotToken, _ = getString(nc, "bot_token") // from ENV
	switch id := nc.Config["chat_id"].(type) {
	case int:
		tc.ChatID = int64(id)
	case int64:
		tc.ChatID = id
	default:
		return nil, fmt.Errorf("channel '%s': chat_id missing or not an integer", nc.Name)
	}
	if tc.BotToken == "" {
		return nil, fmt.Errorf("channel '%s': bot_token missing (set OREFWATCH_TELEGRAM_TOKEN_...)", nc.Name)
	}
	return &tc, nil
}

// GetNtfyChannelConfig extracts a typed ntfy push config.
func GetNtfyChannelConfig(nc NotificationChannelConfig) (*NtfyChannelConfig, error) {
	if nc.Type != "ntfy" {
		return nil, fmt.Errorf("not an ntfy channel")
	}
	var pc NtfyChannelConfig
	pc.ServerURL, _ = getString(nc, "server_url")
	if pc.ServerURL == "" {
		pc.ServerURL = "https://ntfy.sh"
	}
	var ok bool
	if pc.Topic, ok = getString(nc, "topic"); !ok {
		return nil, fmt.Errorf("channel '%s': topic missing or not a string", nc.Name)
	}
	pc.Priority, _ = getString(nc, "priority")
	pc.Tags, _ = getString(nc, "tags")
	return &pc, nil
}

// GetSoundChannelConfig extracts a typed sound-player config.
func GetSoundChannelConfig(nc NotificationChannelConfig) (*SoundChannelConfig, error) {
	if nc.Type != "sound" {
		return nil, fmt.Errorf("not a sound channel")
	}
	var sc SoundChannelConfig
	var ok bool
	if sc.Command, ok = getString(nc, "command"); !ok {
		return nil, fmt.Errorf("channel '%s': command missing or not a string", nc.Name)
	}
	sc.Args = getStringList(nc, "args")
	return &sc, nil
}
