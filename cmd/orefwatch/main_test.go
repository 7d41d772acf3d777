package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orefwatch/orefwatch/internal/areas"
	"github.com/orefwatch/orefwatch/internal/config"
	"github.com/orefwatch/orefwatch/internal/feed"
	"github.com/orefwatch/orefwatch/internal/notifier"
	"github.com/orefwatch/orefwatch/internal/poller"
)

func writeTestConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))
	return path
}

func TestTestNotificationSubcommand(t *testing.T) {
	configFile := writeTestConfig(t, `
monitored_areas: ["אשקלון"]
notification_channels:
  - name: "test-stdout"
    type: "stdout"
`)

	// Both forms succeed with a stdout channel; failure paths call
	// log.Fatalf and are covered by the notifier package tests instead.
	assert.NotPanics(t, func() { testNotification(configFile, "") })
	assert.NotPanics(t, func() { testNotification(configFile, "test-stdout") })
}

// End-to-end wiring: config -> feed client -> poller -> notifier, against a
// fake feed server.
func TestFeedToNotifierWiring(t *testing.T) {
	feedSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("\xEF\xBB\xBF" + `{"title":"ירי רקטות","desc":"היכנסו למרחב המוגן","data":["אשקלון","חיפה"]}`))
	}))
	defer feedSrv.Close()

	configFile := writeTestConfig(t, `
feed_url: "`+feedSrv.URL+`"
monitored_areas: ["אשקלון"]
notification_channels:
  - name: "console"
    type: "stdout"
`)

	cfg, err := config.LoadConfig(configFile)
	require.NoError(t, err)

	configuredNotifiers, err := notifier.InitializeNotifiers(cfg.NotificationChannels)
	require.NoError(t, err)
	require.Len(t, configuredNotifiers, 1)

	matcher := areas.NewMatcher(cfg.MonitoredAreas, cfg.AreaAliases)
	feedClient := feed.NewClient(cfg.FeedURL, cfg.UserAgent, cfg.FetchTimeout)
	templates := notifier.Templates{Alert: cfg.Templates.Alert}

	var delivered []poller.Alert
	onAlert := func(alert poller.Alert) {
		delivered = append(delivered, alert)
		data := notifier.NotificationData{
			Title:       alert.Title,
			Description: alert.Description,
			Areas:       alert.Areas,
			Time:        time.Now().In(cfg.Location),
		}
		for _, n := range configuredNotifiers {
			assert.NoError(t, n.Send(data, templates))
		}
	}

	p := poller.New(feedClient, matcher, onAlert, poller.Options{
		PollInterval: cfg.PollInterval,
		AlertPause:   cfg.AlertPause,
	})

	p.Run(contextWithDeadline(t, 100*time.Millisecond))
	require.Len(t, delivered, 1)
	assert.Equal(t, "ירי רקטות", delivered[0].Title)
	assert.Equal(t, []string{"אשקלון"}, delivered[0].Areas)
}

func contextWithDeadline(t *testing.T, d time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	t.Cleanup(cancel)
	return ctx
}
