package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/bobr/forum-website/internal/api/middleware"
	"github.com/bobr/forum-website/internal/chat"
	"github.com/bobr/forum-website/internal/service"
)

type ChatHandler struct {
	registry    *chat.Registry
	authService *service.AuthService
}

func NewChatHandler(registry *chat.Registry, authService *service.AuthService) *ChatHandler {
	return &ChatHandler{
		registry:    registry,
		authService: authService,
	}
}

type EnterChatRequest struct {
	// RoomCode joins an existing room when set; otherwise a fresh room is
	// created for this session.
	RoomCode string `json:"roomCode"`
}

type EnterChatResponse struct {
	RoomCode    string `json:"roomCode"`
	DisplayName string `json:"displayName"`
}

// Enter binds a chat session for the caller: it ensures a room exists and
// returns the code plus the display name the socket layer should join with.
func (h *ChatHandler) Enter(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	var req EnterChatRequest
	if r.Body != nil {
		// Body is optional; an empty or absent body means "new room".
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	code := req.RoomCode
	if code == "" {
		code = chat.GenerateRoomCode()
	}
	h.registry.CreateOrGet(code)

	writeJSON(w, http.StatusOK, EnterChatResponse{
		RoomCode:    code,
		DisplayName: user.Username,
	})
}
