package handler

import (
	"net/http"
	"strconv"

	"kenolive/internal/service"
	"kenolive/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
)

const (
	defaultQRSize = 256
	maxQRSize     = 1024
)

// RoomHandler handles lobby ("sala") endpoints
type RoomHandler struct {
	lobbySvc *service.LobbyService
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(lobbySvc *service.LobbyService) *RoomHandler {
	return &RoomHandler{lobbySvc: lobbySvc}
}

// Enter handles POST /v1/salas/enter
func (h *RoomHandler) Enter(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.GetPlayerID(r.Context())
	if playerID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	view, err := h.lobbySvc.Enter(r.Context(), playerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// QR handles GET /v1/salas/{roomId}/qr
func (h *RoomHandler) QR(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]

	size := defaultQRSize
	if s := r.URL.Query().Get("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > maxQRSize {
			writeError(w, http.StatusBadRequest, "invalid size")
			return
		}
		size = n
	}

	png, err := h.lobbySvc.InviteQR(r.Context(), roomID, size)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
