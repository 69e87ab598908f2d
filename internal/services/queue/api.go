package queue

import (
	"encoding/json"
	"net/http"
)

type StatusResponse struct {
	Waiting int `json:"waiting"`
}

// RegisterQueueHandlers expõe GET /queue.
func RegisterQueueHandlers(mux *http.ServeMux, qm *QueueMaster) {
	mux.HandleFunc("GET /queue", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(StatusResponse{Waiting: qm.Size()})
	})
}
