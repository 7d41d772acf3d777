package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/orefwatch/orefwatch/internal/areas"
	"github.com/orefwatch/orefwatch/internal/config"
	"github.com/orefwatch/orefwatch/internal/feed"
	"github.com/orefwatch/orefwatch/internal/history"
	"github.com/orefwatch/orefwatch/internal/metrics"
	"github.com/orefwatch/orefwatch/internal/notifier"
	"github.com/orefwatch/orefwatch/internal/poller"
	"github.com/orefwatch/orefwatch/internal/status"
)

var configFile string

func init() {
	flag.StringVar(&configFile, "config", "config.yaml", "Path to the configuration file.")
	// Set up logger
	log.SetOutput(os.Stdout) // Systemd will capture this
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
}

func testNotification(configPath, channelName string) {
	log.Println("Testing notification channels...")

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration from %s: %v", configPath, err)
	}

	// Check if specific channel exists in config
	if channelName != "" {
		found := false
		for _, channel := range cfg.NotificationChannels {
			if channel.Name == channelName {
				found = true
				break
			}
		}
		if !found {
			var availableChannels []string
			for _, channel := range cfg.NotificationChannels {
				availableChannels = append(availableChannels, channel.Name)
			}
			if len(availableChannels) > 0 {
				log.Fatalf("ERROR: Channel '%s' not found in configuration. Available channels: %s",
					channelName, strings.Join(availableChannels, ", "))
			} else {
				log.Fatalf("ERROR: Channel '%s' not found and no notification channels configured", channelName)
			}
		}
	}

	configuredNotifiers, err := notifier.InitializeNotifiers(cfg.NotificationChannels)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize notifiers: %v", err)
	}
	if len(configuredNotifiers) == 0 {
		log.Fatalf("ERROR: No notification channels were successfully initialized")
	}

	testData := notifier.NotificationData{
		Title:       "בדיקת מערכת",
		Description: "זוהי הודעת בדיקה, אין צורך בפעולה",
		Areas:       cfg.MonitoredAreas,
		Time:        time.Now().In(cfg.Location),
	}
	templates := notifier.Templates{Alert: cfg.Templates.Alert}

	if channelName != "" {
		notifierInstance, exists := configuredNotifiers[channelName]
		if !exists {
			log.Fatalf("ERROR: Channel '%s' was not successfully initialized", channelName)
		}
		log.Printf("Testing notification channel: %s", channelName)
		if err := notifierInstance.Send(testData, templates); err != nil {
			log.Fatalf("ERROR: Failed to send test notification to channel '%s': %v", channelName, err)
		}
		log.Printf("✅ Test notification sent successfully to channel: %s", channelName)
		return
	}

	log.Printf("Testing all %d configured notification channels...", len(configuredNotifiers))
	successCount := 0
	for name, notifierInstance := range configuredNotifiers {
		log.Printf("Testing channel: %s", name)
		if err := notifierInstance.Send(testData, templates); err != nil {
			log.Printf("❌ Failed to send test notification to channel '%s': %v", name, err)
		} else {
			log.Printf("✅ Test notification sent successfully to channel: %s", name)
			successCount++
		}
	}
	log.Printf("Test completed: %d/%d channels successful", successCount, len(configuredNotifiers))
	if successCount == 0 {
		log.Fatalf("ERROR: All notification channels failed")
	}
}

func main() {
	flag.Parse()

	args := flag.Args()
	if len(args) > 0 && args[0] == "test-notification" {
		var channelName string
		if len(args) > 1 {
			channelName = args[1]
		}
		testNotification(configFile, channelName)
		return
	}

	log.Println("Starting orefwatch...")

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration from %s: %v", configFile, err)
	}
	log.Printf("Configuration loaded from %s. Poll interval: %s, monitoring %d area(s).",
		configFile, cfg.PollInterval, len(cfg.MonitoredAreas))

	configuredNotifiers, err := notifier.InitializeNotifiers(cfg.NotificationChannels)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize notifiers: %v", err)
	}
	if len(configuredNotifiers) == 0 {
		log.Println("Warning: no notification channels were successfully initialized; alerts will only be logged.")
	} else {
		log.Printf("%d notification channel(s) initialized.", len(configuredNotifiers))
	}

	matcher := areas.NewMatcher(cfg.MonitoredAreas, cfg.AreaAliases)
	feedClient := feed.NewClient(cfg.FeedURL, cfg.UserAgent, cfg.FetchTimeout)
	alertHist := history.NewBuffer(cfg.HistorySize)
	templates := notifier.Templates{Alert: cfg.Templates.Alert}

	onAlert := func(alert poller.Alert) {
		now := time.Now().In(cfg.Location)
		alertHist.Add(history.Entry{
			Title:       alert.Title,
			Description: alert.Description,
			Areas:       alert.Areas,
			Time:        now,
		})

		data := notifier.NotificationData{
			Title:       alert.Title,
			Description: alert.Description,
			Areas:       alert.Areas,
			Time:        now,
		}
		for name, n := range configuredNotifiers {
			if err := n.Send(data, templates); err != nil {
				metrics.Notifications.WithLabelValues(name, "error").Inc()
				log.Printf("Failed to send alert via channel '%s': %v", name, err)
			} else {
				metrics.Notifications.WithLabelValues(name, "ok").Inc()
			}
		}
	}

	p := poller.New(feedClient, matcher, onAlert, poller.Options{
		PollInterval: cfg.PollInterval,
		AlertPause:   cfg.AlertPause,
		RawDumpPath:  cfg.RawDumpPath,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.ListenAddr != "" {
		statusSrv := &http.Server{
			Addr:    cfg.ListenAddr,
			Handler: status.NewServer(alertHist).Handler(),
		}
		go func() {
			log.Printf("Status server listening on %s", cfg.ListenAddr)
			if err := statusSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Status server failed: %v", err)
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := statusSrv.Shutdown(shutdownCtx); err != nil {
				log.Printf("Status server shutdown: %v", err)
			}
		}()
	}

	if cfg.Tray {
		go startTray(stop)
	}

	log.Println("orefwatch started. Watching the alert feed...")
	p.Run(ctx)
	log.Println("orefwatch shut down.")
}
