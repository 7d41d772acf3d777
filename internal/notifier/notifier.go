package notifier

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	gotexttemplate "text/template"
	"time"

	"github.com/orefwatch/orefwatch/internal/config"
)

// NotificationData is the data passed to message templates.
type NotificationData struct {
	Title       string
	Description string
	Areas       []string // relevant monitored areas, in feed order
	Time        time.Time
}

type Templates struct {
	Alert string
}

// Notifier is the interface for all notification channel types.
type Notifier interface {
	Send(data NotificationData, templates Templates) error
	Name() string // Returns the configured channel name
}

var templateFuncs = gotexttemplate.FuncMap{
	"join": strings.Join,
}

func renderTemplate(templateName string, templateStr string, data NotificationData) (string, error) {
	tmpl, err := gotexttemplate.New(templateName).Funcs(templateFuncs).Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse notification template '%s': %w", templateName, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute notification template '%s': %w", templateName, err)
	}
	return buf.String(), nil
}

// collapseLine flattens newlines and runs of whitespace into single spaces,
// for single-line contexts such as email subjects and push titles.
func collapseLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// InitializeNotifiers builds one notifier per configured channel.
// Misconfigured channels are skipped with a log line rather than aborting
// startup; a duplicate channel name is an error.
func InitializeNotifiers(cfgChannels []config.NotificationChannelConfig) (map[string]Notifier, error) {
	notifiers := make(map[string]Notifier)
	for _, ncCfg := range cfgChannels {
		var instance Notifier
		var err error
		switch ncCfg.Type {
		case "stdout":
			instance, err = NewStdoutNotifier(ncCfg.Name)
		case "email":
			emailCfg, convErr := config.GetEmailChannelConfig(ncCfg)
			if convErr != nil {
				log.Printf("Skipping email channel '%s' due to config error: %v", ncCfg.Name, convErr)
				continue
			}
			instance, err = NewEmailNotifier(ncCfg.Name, *emailCfg)
		case "sms":
			smsCfg, convErr := config.GetSMSChannelConfig(ncCfg)
			if convErr != nil {
				log.Printf("Skipping sms channel '%s' due to config error: %v", ncCfg.Name, convErr)
				continue
			}
			instance, err = NewSMSNotifier(ncCfg.Name, *smsCfg)
		case "telegram":
			telegramCfg, convErr := config.GetTelegramChannelConfig(ncCfg)
			if convErr != nil {
				log.Printf("Skipping telegram channel '%s' due to config error: %v", ncCfg.Name, convErr)
				continue
			}
			instance, err = NewTelegramNotifier(ncCfg.Name, *telegramCfg)
		case "ntfy":
			ntfyCfg, convErr := config.GetNtfyChannelConfig(ncCfg)
			if convErr != nil {
				log.Printf("Skipping ntfy channel '%s' due to config error: %v", ncCfg.Name, convErr)
				continue
			}
			instance, err = NewNtfyNotifier(ncCfg.Name, *ntfyCfg)
		case "sound":
			soundCfg, convErr := config.GetSoundChannelConfig(ncCfg)
			if convErr != nil {
				log.Printf("Skipping sound channel '%s' due to config error: %v", ncCfg.Name, convErr)
				continue
			}
			instance, err = NewSoundNotifier(ncCfg.Name, *soundCfg)
		default:
			log.Printf("Unsupported notification channel type '%s' for channel '%s'. Skipping.", ncCfg.Type, ncCfg.Name)
			continue
		}

		if err != nil {
			log.Printf("Failed to initialize notifier for channel '%s' (%s): %v. Skipping.", ncCfg.Name, ncCfg.Type, err)
			continue
		}
		if _, exists := notifiers[ncCfg.Name]; exists {
			return nil, fmt.Errorf("duplicate notification channel name defined: %s", ncCfg.Name)
		}
		notifiers[ncCfg.Name] = instance
		log.Printf("Successfully initialized notifier for channel: %s (type: %s)", ncCfg.Name, ncCfg.Type)
	}
	return notifiers, nil
}
