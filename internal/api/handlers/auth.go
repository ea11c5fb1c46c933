package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/bobr/forum-website/internal/api/middleware"
	"github.com/bobr/forum-website/internal/domain"
	"github.com/bobr/forum-website/internal/service"
	"github.com/bobr/forum-website/internal/token"
	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type UserResponse struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	ImageFile string `json:"imageFile"`
	IsActive  bool   `json:"isActive"`
}

type ResetRequestBody struct {
	Email string `json:"email"`
}

type ResetPasswordBody struct {
	Password string `json:"password"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func newUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		ImageFile: user.ImageFile,
		IsActive:  user.IsActive,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		http.Error(w, "Username, email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.authService.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
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

	writeJSON(w, http.StatusCreated, MessageResponse{
		Message: "Your account has been created! Please, confirm your email. User: " + user.Username,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			http.Error(w, "Invalid email or password", http.StatusUnauthorized)
		case errors.Is(err, service.ErrEmailNotConfirmed):
			http.Error(w, "Your email is not confirmed. Please confirm your email!", http.StatusForbidden)
		default:
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		User:         newUserResponse(result.User),
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
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

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.authService.Logout(r.Context(), userID); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged out"})
}

// RequestReset always answers with the same message so the endpoint cannot
// be used to probe which emails are registered.
func (h *AuthHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" {
		http.Error(w, "Email is required", http.StatusBadRequest)
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		log.Printf("ERROR [handlers.AuthHandler] reset request failed: %v", err)
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Message: "An email has been sent with instructions to reset your password.",
	})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	tok := chi.URLParam(r, "token")

	var req ResetPasswordBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Password == "" {
		http.Error(w, "Password is required", http.StatusBadRequest)
		return
	}

	_, err := h.authService.ResetPassword(r.Context(), tok, req.Password)
	if err != nil {
		if errors.Is(err, token.ErrInvalid) {
			log.Printf("ERROR [handlers.AuthHandler] rejected reset token")
			http.Error(w, "That is an invalid or expired token", http.StatusBadRequest)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Message: "Your password has been updated! You are now able to log in",
	})
}

func (h *AuthHandler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	tok := chi.URLParam(r, "token")

	user, err := h.authService.ConfirmEmail(r.Context(), tok)
	if err != nil {
		if errors.Is(err, token.ErrInvalid) {
			log.Printf("ERROR [handlers.AuthHandler] rejected confirm token")
			http.Error(w, "That is an invalid or expired token", http.StatusBadRequest)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Message: "Your Email is confirmed. User: " + user.Username,
	})
}
