package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Maxim12412/Monopolista/internal/model"
	"github.com/Maxim12412/Monopolista/internal/service"

	"github.com/gorilla/mux"
)

// RoomHandler handles room endpoints.
type RoomHandler struct {
	gameSvc *service.GameService
}

// NewRoomHandler creates a new room handler.
func NewRoomHandler(gameSvc *service.GameService) *RoomHandler {
	return &RoomHandler{gameSvc: gameSvc}
}

// CreateRoomRequest is the request body for creating a room.
type CreateRoomRequest struct {
	Nickname string `json:"nickname"`
}

// JoinRoomRequest is the request body for joining a room.
type JoinRoomRequest struct {
	Nickname string `json:"nickname"`
}

// Create handles POST /v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.gameSvc.CreateRoom(r.Context(), req.Nickname)
	if err != nil {
		writeReject(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Join handles POST /v1/rooms/{code}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.gameSvc.JoinRoom(r.Context(), code, req.Nickname)
	if err != nil {
		writeReject(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Leaderboard handles GET /v1/leaderboard
func (h *RoomHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	entries, err := h.gameSvc.Leaderboard(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func writeReject(w http.ResponseWriter, err error) {
	if rej, ok := err.(*model.Reject); ok {
		status := http.StatusConflict
		switch rej {
		case model.ErrRoomNotFound:
			status = http.StatusNotFound
		case model.ErrInvalidNickname:
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]string{"error": rej.Code})
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
