package cluster

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
)

// CheckFunc realiza uma verificação de saúde e retorna erro se ela falhar.
type CheckFunc func() error

// HealthAggregator junta várias verificações num único endpoint HTTP.
type HealthAggregator struct {
	mu     sync.RWMutex
	checks map[string]CheckFunc
}

func NewHealthAggregator() *HealthAggregator {
	return &HealthAggregator{checks: make(map[string]CheckFunc)}
}

func (h *HealthAggregator) AddCheck(name string, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

type HealthReport struct {
	Status string            `json:"status"`
	Checks []string          `json:"checks,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Run executa todas as verificações.
func (h *HealthAggregator) Run() HealthReport {
	h.mu.RLock()
	defer h.mu.RUnlock()

	report := HealthReport{Status: "healthy"}
	for name, check := range h.checks {
		report.Checks = append(report.Checks, name)
		if err := check(); err != nil {
			if report.Errors == nil {
				report.Errors = make(map[string]string)
			}
			report.Errors[name] = err.Error()
		}
	}
	sort.Strings(report.Checks)
	if len(report.Errors) > 0 {
		report.Status = "unhealthy"
	}
	return report
}

// Handler responde 200 se tudo passou e 503 caso contrário.
func (h *HealthAggregator) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := h.Run()
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if report.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		json.NewEncoder(w).Encode(report)
	}
}
