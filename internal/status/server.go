package status

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orefwatch/orefwatch/internal/history"
)

// Server exposes a small HTTP surface for liveness checks, recent alert
// history, and Prometheus metrics.
type Server struct {
	hist *history.Buffer
}

func NewServer(hist *history.Buffer) *Server {
	return &Server{hist: hist}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/alerts", s.handleAlerts)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
		"alerts": s.hist.Len(),
	})
}

// handleAlerts returns recent alerts, newest first. ?n= limits the count.
func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	n := 0
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "invalid n parameter", http.StatusBadRequest)
			return
		}
		n = parsed
	}
	writeJSON(w, s.hist.Recent(n))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode status response: %v", err)
	}
}
