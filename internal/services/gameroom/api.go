package gameroom

import (
	"encoding/json"
	"net/http"
	"sort"
)

// ============================================================================
// API de status (somente leitura)
// ============================================================================

// RoomLister é o que os handlers precisam do RoomManager.
type RoomLister interface {
	Rooms() []Info
	Room(roomID string) (Info, bool)
}

// RegisterHandlers expõe GET /rooms e GET /rooms/{id}.
func RegisterHandlers(mux *http.ServeMux, rooms RoomLister) {
	mux.HandleFunc("GET /rooms", handleListRooms(rooms))
	mux.HandleFunc("GET /rooms/{id}", handleGetRoom(rooms))
}

func handleListRooms(rooms RoomLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := rooms.Rooms()
		if list == nil {
			list = []Info{}
		}
		sort.Slice(list, func(i, j int) bool {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		})
		writeJSON(w, http.StatusOK, list)
	}
}

func handleGetRoom(rooms RoomLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, ok := rooms.Room(r.PathValue("id"))
		if !ok {
			http.Error(w, `{"error": "Room not found"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, info)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
