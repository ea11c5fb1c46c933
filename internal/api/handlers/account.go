package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bobr/forum-website/internal/api/middleware"
	"github.com/bobr/forum-website/internal/service"
)

// maxPictureBytes caps profile picture uploads.
const maxPictureBytes = 5 << 20

type AccountHandler struct {
	accountService *service.AccountService
	authService    *service.AuthService
}

func NewAccountHandler(accountService *service.AccountService, authService *service.AuthService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		authService:    authService,
	}
}

type UpdateAccountRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Email == "" {
		http.Error(w, "Username and email are required", http.StatusBadRequest)
		return
	}

	user, err := h.accountService.Update(r.Context(), userID, service.UpdateAccountInput{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameExists):
			http.Error(w, "Username already exists", http.StatusConflict)
		case errors.Is(err, service.ErrEmailExists):
			http.Error(w, "Email already exists", http.StatusConflict)
		default:
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (h *AccountHandler) UploadPicture(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPictureBytes)
	if err := r.ParseMultipartForm(maxPictureBytes); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("picture")
	if err != nil {
		http.Error(w, "Picture file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	user, err := h.accountService.SavePicture(r.Context(), userID, file, header.Filename)
	if err != nil {
		http.Error(w, "Failed to save picture", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(user))
}
