package notifier

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orefwatch/orefwatch/internal/config"
)

func TestNtfyNotifierSend(t *testing.T) {
	var gotPath, gotTitle, gotPriority, gotTags string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotTitle = r.Header.Get("Title")
		gotPriority = r.Header.Get("Priority")
		gotTags = r.Header.Get("Tags")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	nn, err := NewNtfyNotifier("push", config.NtfyChannelConfig{
		ServerURL: srv.URL + "/",
		Topic:     "oref-alerts",
		Priority:  "urgent",
		Tags:      "rotating_light",
	})
	require.NoError(t, err)

	require.NoError(t, nn.Send(sampleData(), Templates{Alert: "{{.Description}}"}))
	assert.Equal(t, "/oref-alerts", gotPath)
	assert.Equal(t, "ירי רקטות וטילים", gotTitle)
	assert.Equal(t, "urgent", gotPriority)
	assert.Equal(t, "rotating_light", gotTags)
	assert.Equal(t, "היכנסו למרחב המוגן ושהו בו 10 דקות", string(gotBody))
}

func TestNtfyNotifierSendServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	nn, err := NewNtfyNotifier("push", config.NtfyChannelConfig{ServerURL: srv.URL, Topic: "t"})
	require.NoError(t, err)

	err = nn.Send(sampleData(), Templates{Alert: "{{.Title}}"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
