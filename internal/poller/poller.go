package poller

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/orefwatch/orefwatch/internal/areas"
	"github.com/orefwatch/orefwatch/internal/feed"
	"github.com/orefwatch/orefwatch/internal/metrics"
)

// Outcome classifies a single poll cycle.
type Outcome int

const (
	// OutcomeNoAlert means the feed returned a blank body — nothing active.
	OutcomeNoAlert Outcome = iota
	// OutcomeMalformed means the body was non-empty but not parseable JSON.
	OutcomeMalformed
	// OutcomeUnchanged means the body fingerprint matched the last processed
	// alert; the steady state while an alert stays up.
	OutcomeUnchanged
	// OutcomeIrrelevant means a changed body whose area list has no overlap
	// with the monitored set.
	OutcomeIrrelevant
	// OutcomeNewAlert means a new, relevant alert was extracted.
	OutcomeNewAlert
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoAlert:
		return "no_alert"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeIrrelevant:
		return "irrelevant"
	case OutcomeNewAlert:
		return "new_alert"
	default:
		return "unknown"
	}
}

// Alert is a new, relevant alert extracted from the feed.
type Alert struct {
	Title       string
	Description string
	Areas       []string // monitored areas only, in feed order
}

// Result is the evaluation of one poll cycle.
type Result struct {
	Outcome Outcome
	Alert   *Alert // set only when Outcome is OutcomeNewAlert
}

// Fetcher abstracts the feed client.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Options tune the polling loop.
type Options struct {
	PollInterval time.Duration // sleep after an uneventful cycle
	AlertPause   time.Duration // sleep after delivering an alert
	RawDumpPath  string        // last fetched body, for debugging; empty disables
}

// Poller repeatedly fetches the alert feed, deduplicates responses by a
// content fingerprint of the raw body, filters the affected areas against
// the monitored set, and hands new relevant alerts to the callback.
//
// The fingerprint is only updated when a relevant alert is delivered, and it
// is never cleared when the feed goes back to empty. An alert that clears and
// later recurs with a byte-identical body therefore stays suppressed for the
// lifetime of the process.
type Poller struct {
	fetcher Fetcher
	matcher *areas.Matcher
	onAlert func(Alert)
	opts    Options

	lastFingerprint string
}

func New(fetcher Fetcher, matcher *areas.Matcher, onAlert func(Alert), opts Options) *Poller {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.AlertPause <= 0 {
		opts.AlertPause = opts.PollInterval
	}
	return &Poller{
		fetcher: fetcher,
		matcher: matcher,
		onAlert: onAlert,
		opts:    opts,
	}
}

// PollOnce performs one fetch-and-evaluate cycle. A transport failure is
// returned as an error; every feed-content problem is a non-error Result so
// the loop treats it as routine.
func (p *Poller) PollOnce(ctx context.Context) (Result, error) {
	body, err := p.fetcher.Fetch(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch feed: %w", err)
	}

	p.dumpRaw(body)

	switch feed.ClassifyBody(body) {
	case feed.BodyEmpty:
		return Result{Outcome: OutcomeNoAlert}, nil
	case feed.BodyMalformed:
		return Result{Outcome: OutcomeMalformed}, nil
	}

	msg, err := feed.ParseMessage(body)
	if err != nil {
		return Result{Outcome: OutcomeMalformed}, nil
	}

	fp := fingerprint(body)
	if fp == p.lastFingerprint {
		return Result{Outcome: OutcomeUnchanged}, nil
	}

	relevant := p.matcher.Match(msg.Areas)
	if len(relevant) == 0 {
		// Changed, but none of our areas. The fingerprint stays untouched.
		return Result{Outcome: OutcomeIrrelevant}, nil
	}

	p.lastFingerprint = fp
	return Result{
		Outcome: OutcomeNewAlert,
		Alert: &Alert{
			Title:       msg.Title,
			Description: msg.Description,
			Areas:       relevant,
		},
	}, nil
}

// Run polls until ctx is canceled. Fetch errors and malformed responses are
// logged and retried at the regular interval; there is no backoff
// escalation. After a delivered alert the loop pauses for the longer
// AlertPause before polling again.
func (p *Poller) Run(ctx context.Context) {
	for {
		start := time.Now()
		res, err := p.PollOnce(ctx)
		metrics.CycleDuration.Observe(time.Since(start).Seconds())

		delay := p.opts.PollInterval
		if err != nil {
			metrics.PollCycles.WithLabelValues("fetch_error").Inc()
			if ctx.Err() == nil {
				log.Printf("Poll failed: %v", err)
			}
		} else {
			metrics.PollCycles.WithLabelValues(res.Outcome.String()).Inc()
			switch res.Outcome {
			case OutcomeMalformed:
				log.Println("Feed returned a malformed response; retrying next cycle.")
			case OutcomeNewAlert:
				log.Printf("ALERT: %s (areas: %s)", res.Alert.Title, strings.Join(res.Alert.Areas, ", "))
				p.notify(*res.Alert)
				delay = p.opts.AlertPause
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// notify invokes the alert callback, recovering panics so a broken
// notification path cannot stop polling.
func (p *Poller) notify(alert Alert) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Alert callback panicked: %v", r)
		}
	}()
	if p.onAlert != nil {
		p.onAlert(alert)
	}
}

// dumpRaw persists the last fetched body for post-hoc inspection. Failures
// are logged and ignored; the dump has no effect on poller behavior.
func (p *Poller) dumpRaw(body []byte) {
	if p.opts.RawDumpPath == "" {
		return
	}
	if err := os.WriteFile(p.opts.RawDumpPath, body, 0644); err != nil {
		log.Printf("Failed to write raw dump %s: %v", p.opts.RawDumpPath, err)
	}
}

func fingerprint(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
