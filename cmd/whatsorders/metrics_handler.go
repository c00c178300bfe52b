package main

import (
	"encoding/json"
	"net/http"
	"time"

	"whatsorders/internal/metrics"
)

var serverStartTime = time.Now()

type metricsResponse struct {
	Timestamp     time.Time              `json:"timestamp"`
	UptimeSeconds float64                `json:"uptime_seconds"`
	Metrics       map[string]interface{} `json:"metrics"`
}

func (s *Server) handleMetrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := metricsResponse{
			Timestamp:     time.Now().UTC(),
			UptimeSeconds: time.Since(serverStartTime).Seconds(),
			Metrics:       metrics.GetAllMetrics(),
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			s.logger.WithError(err).Error("Failed to encode metrics response")
		}
	}
}
