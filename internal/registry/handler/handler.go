// Package handler exposes the registry operations over HTTP. It stays thin:
// decode, delegate to the service, translate domain errors.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/genesisbarrios/senfiltro/internal/registry/models"
	"github.com/genesisbarrios/senfiltro/pkg/domain"
	dErrors "github.com/genesisbarrios/senfiltro/pkg/domain-errors"
	"github.com/genesisbarrios/senfiltro/pkg/platform/middleware"
	"github.com/genesisbarrios/senfiltro/pkg/requestcontext"
)

// Service defines the registry operations the handler depends on.
type Service interface {
	InitializeCounters(ctx context.Context, caller domain.Identity) error
	CreatePost(ctx context.Context, caller domain.Identity, metadataCID string, aiGenerated bool) (*models.Post, error)
	GetPost(ctx context.Context, postID uint64) (*models.Post, error)
	UpdatePost(ctx context.Context, caller domain.Identity, postID uint64, metadataCID *string, aiGenerated *bool) (*models.Post, error)
	DeletePost(ctx context.Context, caller domain.Identity, postID uint64, candidates []uint64) error
	CreateComment(ctx context.Context, caller domain.Identity, metadataCID string, parentPost *uint64) (*models.Comment, error)
	GetComment(ctx context.Context, commentID uint64) (*models.Comment, error)
	UpdateComment(ctx context.Context, caller domain.Identity, commentID uint64, metadataCID *string) (*models.Comment, error)
	DeleteComment(ctx context.Context, caller domain.Identity, commentID uint64) error
	ReactToPost(ctx context.Context, caller domain.Identity, postID uint64, value int8) (*models.Post, error)
}

// Handler wires HTTP endpoints to the registry service.
type Handler struct {
	svc    Service
	logger *slog.Logger
}

// New creates a registry Handler.
func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the registry routes. Mutating routes require a caller
// identity; reads do not.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireIdentity(h.logger))
		r.Post("/registry/counters/init", h.handleInitCounters)
		r.Post("/posts", h.handleCreatePost)
		r.Patch("/posts/{id}", h.handleUpdatePost)
		r.Delete("/posts/{id}", h.handleDeletePost)
		r.Put("/posts/{id}/reaction", h.handleReactToPost)
		r.Post("/comments", h.handleCreateComment)
		r.Patch("/comments/{id}", h.handleUpdateComment)
		r.Delete("/comments/{id}", h.handleDeleteComment)
	})
	r.Get("/posts/{id}", h.handleGetPost)
	r.Get("/comments/{id}", h.handleGetComment)
}

func (h *Handler) handleInitCounters(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.svc.InitializeCounters(ctx, requestcontext.Identity(ctx)); err != nil {
		h.writeError(ctx, w, "initialize counters", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "create post", dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	post, err := h.svc.CreatePost(ctx, requestcontext.Identity(ctx), req.MetadataCID, req.AIGenerated)
	if err != nil {
		h.writeError(ctx, w, "create post", err)
		return
	}
	writeJSON(w, http.StatusCreated, fromPost(post))
}

func (h *Handler) handleGetPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	postID, err := parseID(r)
	if err != nil {
		h.writeError(ctx, w, "get post", err)
		return
	}
	post, err := h.svc.GetPost(ctx, postID)
	if err != nil {
		h.writeError(ctx, w, "get post", err)
		return
	}
	writeJSON(w, http.StatusOK, fromPost(post))
}

func (h *Handler) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	postID, err := parseID(r)
	if err != nil {
		h.writeError(ctx, w, "update post", err)
		return
	}
	var req UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "update post", dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	post, err := h.svc.UpdatePost(ctx, requestcontext.Identity(ctx), postID, req.MetadataCID, req.AIGenerated)
	if err != nil {
		h.writeError(ctx, w, "update post", err)
		return
	}
	writeJSON(w, http.StatusOK, fromPost(post))
}

func (h *Handler) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	postID, err := parseID(r)
	if err != nil {
		h.writeError(ctx, w, "delete post", err)
		return
	}
	var req DeletePostRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(ctx, w, "delete post", dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
			return
		}
	}
	if err := h.svc.DeletePost(ctx, requestcontext.Identity(ctx), postID, req.CandidateComments); err != nil {
		h.writeError(ctx, w, "delete post", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "create comment", dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	comment, err := h.svc.CreateComment(ctx, requestcontext.Identity(ctx), req.MetadataCID, req.ParentPost)
	if err != nil {
		h.writeError(ctx, w, "create comment", err)
		return
	}
	writeJSON(w, http.StatusCreated, fromComment(comment))
}

func (h *Handler) handleGetComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	commentID, err := parseID(r)
	if err != nil {
		h.writeError(ctx, w, "get comment", err)
		return
	}
	comment, err := h.svc.GetComment(ctx, commentID)
	if err != nil {
		h.writeError(ctx, w, "get comment", err)
		return
	}
	writeJSON(w, http.StatusOK, fromComment(comment))
}

func (h *Handler) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	commentID, err := parseID(r)
	if err != nil {
		h.writeError(ctx, w, "update comment", err)
		return
	}
	var req UpdateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "update comment", dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	comment, err := h.svc.UpdateComment(ctx, requestcontext.Identity(ctx), commentID, req.MetadataCID)
	if err != nil {
		h.writeError(ctx, w, "update comment", err)
		return
	}
	writeJSON(w, http.StatusOK, fromComment(comment))
}

func (h *Handler) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	commentID, err := parseID(r)
	if err != nil {
		h.writeError(ctx, w, "delete comment", err)
		return
	}
	if err := h.svc.DeleteComment(ctx, requestcontext.Identity(ctx), commentID); err != nil {
		h.writeError(ctx, w, "delete comment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleReactToPost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	postID, err := parseID(r)
	if err != nil {
		h.writeError(ctx, w, "react to post", err)
		return
	}
	var req ReactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(ctx, w, "react to post", dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	post, err := h.svc.ReactToPost(ctx, requestcontext.Identity(ctx), postID, req.Value)
	if err != nil {
		h.writeError(ctx, w, "react to post", err)
		return
	}
	writeJSON(w, http.StatusOK, &ReactionResponse{
		PostID:   post.ID,
		Likes:    post.Likes,
		Dislikes: post.Dislikes,
		Value:    req.Value,
	})
}

func parseID(r *http.Request) (uint64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "id must be a positive integer")
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError translates a domain error into the JSON error envelope. 5xx
// causes are logged; 4xx are the caller's problem and logged at warn.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.HTTPStatus(code)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, op+" failed",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
	} else {
		h.logger.WarnContext(ctx, op+" rejected",
			"code", string(code),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             string(code),
		"error_description": err.Error(),
	})
}
