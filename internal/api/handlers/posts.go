package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/bobr/forum-website/internal/api/middleware"
	"github.com/bobr/forum-website/internal/domain"
	"github.com/bobr/forum-website/internal/service"
	"github.com/go-chi/chi/v5"
)

type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

type PostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type PostResponse struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

type PageResponse struct {
	Posts      []PostResponse `json:"posts"`
	Page       int            `json:"page"`
	TotalPages int            `json:"totalPages"`
	TotalPosts int64          `json:"totalPosts"`
	Range      []string       `json:"range"`
}

func newPostResponse(post *domain.Post) PostResponse {
	resp := PostResponse{
		ID:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		CreatedAt: post.CreatedAt,
	}
	if post.User != nil {
		resp.Author = post.User.Username
	}
	return resp
}

func newPageResponse(page *service.Page) PageResponse {
	resp := PageResponse{
		Posts:      make([]PostResponse, 0, len(page.Posts)),
		Page:       page.Page,
		TotalPages: page.TotalPages,
		TotalPosts: page.TotalPosts,
		Range:      page.Range,
	}
	for _, post := range page.Posts {
		resp.Posts = append(resp.Posts, newPostResponse(post))
	}
	return resp
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.postService.List(r.Context(), pageParam(r))
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, newPageResponse(page))
}

func (h *PostHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	page, err := h.postService.ListByUsername(r.Context(), username, pageParam(r))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, newPageResponse(page))
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	post, err := h.postService.Create(r.Context(), userID, service.PostInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		writePostError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newPostResponse(post))
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		http.Error(w, "Invalid post id", http.StatusBadRequest)
		return
	}

	post, err := h.postService.Get(r.Context(), id)
	if err != nil {
		writePostError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newPostResponse(post))
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := postID(r)
	if err != nil {
		http.Error(w, "Invalid post id", http.StatusBadRequest)
		return
	}

	var req PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	post, err := h.postService.Update(r.Context(), id, userID, service.PostInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		writePostError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newPostResponse(post))
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := postID(r)
	if err != nil {
		http.Error(w, "Invalid post id", http.StatusBadRequest)
		return
	}

	if err := h.postService.Delete(r.Context(), id, userID); err != nil {
		if errors.Is(err, service.ErrNotPostOwner) {
			http.Error(w, "You dont have the permission to delete others posts!", http.StatusForbidden)
			return
		}
		writePostError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Your post has been deleted!"})
}

func postID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	return uint(id), err
}

func writePostError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		http.Error(w, "Post not found", http.StatusNotFound)
	case errors.Is(err, service.ErrNotPostOwner):
		http.Error(w, "You dont have the permission to edit others posts!", http.StatusForbidden)
	case errors.Is(err, domain.ErrEmptyField),
		errors.Is(err, domain.ErrTitleTooLong),
		errors.Is(err, domain.ErrContentTooLong):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
