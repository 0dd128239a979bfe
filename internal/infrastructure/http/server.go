package httpserver

import (
	"context"
	"encoding/json"
	"net/http"

	"goldrates-service/internal/application"
	"goldrates-service/internal/domain"
	"goldrates-service/internal/infrastructure/metrics"
)

type Server struct {
	svc     *application.RatesService
	metrics *metrics.Metrics
	ping    func(ctx context.Context) error
}

func NewServer(svc *application.RatesService) *Server { return &Server{svc: svc} }

// WithPing wires the readiness probe to a storage health check.
func (s *Server) WithPing(ping func(ctx context.Context) error) *Server {
	s.ping = ping
	return s
}

func (s *Server) WithMetrics(m *metrics.Metrics) *Server {
	s.metrics = m
	return s
}

type ratesResponse struct {
	Success  bool                 `json:"success"`
	Data     *domain.RateSnapshot `json:"data,omitempty"`
	Cached   *bool                `json:"cached,omitempty"`
	Fallback *bool                `json:"fallback,omitempty"`
	Error    string               `json:"error,omitempty"`
}

func (s *Server) GetRates(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.GetRates(r.Context(), r.URL.Query().Get("city"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ratesResponse{
			Success: false,
			Error:   "Unable to fetch rates",
		})
		return
	}
	snap := res.Snapshot
	writeJSON(w, http.StatusOK, ratesResponse{
		Success:  true,
		Data:     &snap,
		Cached:   &res.Cached,
		Fallback: &res.Fallback,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ratesResponse{Success: false, Error: msg})
}
