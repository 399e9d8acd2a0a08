package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/capsulehq/capsule-api/internal/authz"
	"github.com/capsulehq/capsule-api/internal/middleware"
	"github.com/capsulehq/capsule-api/internal/models"
	"github.com/capsulehq/capsule-api/internal/repo"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// ==========================
// Comment Handler
// ==========================
type CommentHandler struct {
	Repo     *repo.CommentRepo
	Capsules *repo.CapsuleRepo
}

type commentInput struct {
	Body string `json:"body" validate:"required,min=1,max=2000"`
}

// readableCapsule loads the comment's capsule and applies its read policy.
// Comments inherit the capsule's visibility: if the capsule is hidden from the
// caller, so is everything under it.
func (h *CommentHandler) readableCapsule(w http.ResponseWriter, r *http.Request, capsuleID string) *models.TimeCapsule {
	capsule, err := h.Capsules.GetByID(r.Context(), capsuleID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("load capsule failed", "error", err)
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return nil
		}
		JSONError(w, "capsule not found", http.StatusNotFound)
		return nil
	}
	if !authz.CanRead(middleware.Principal(r.Context()), capsule) {
		JSONError(w, "capsule not found", http.StatusNotFound)
		return nil
	}
	return capsule
}

// ==========================
// List Comments
// ==========================
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	if h.readableCapsule(w, r, chi.URLParam(r, "id")) == nil {
		return
	}

	limit := 50
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 && val <= 200 {
			limit = val
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if val, err := strconv.Atoi(o); err == nil && val >= 0 {
			offset = val
		}
	}

	comments, err := h.Repo.ListByCapsule(r.Context(), chi.URLParam(r, "id"), limit, offset)
	if err != nil {
		slog.Error("list comments failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}

	JSON(w, http.StatusOK, comments)
}

// ==========================
// Create Comment
// ==========================
func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	principal := middleware.Principal(r.Context())

	capsule := h.readableCapsule(w, r, chi.URLParam(r, "id"))
	if capsule == nil {
		return
	}

	var input commentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	// ===== Validate input =====
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	comment, err := h.Repo.Create(r.Context(), capsule.ID, principal.ID, input.Body)
	if err != nil {
		slog.Error("create comment failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSON(w, http.StatusCreated, comment)
}

// ==========================
// Update Comment
// ==========================
func (h *CommentHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	principal := middleware.Principal(r.Context())
	id := chi.URLParam(r, "id")

	comment, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("update comment failed", "error", err)
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}
		JSONError(w, "comment not found", http.StatusNotFound)
		return
	}

	if !authz.CanWrite(principal, comment.OwnerID) {
		JSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	var input commentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	// ===== Validate input =====
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.Repo.Update(r.Context(), id, input.Body)
	if err != nil {
		slog.Error("update comment failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSON(w, http.StatusOK, updated)
}

// ==========================
// Delete Comment
// ==========================
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	principal := middleware.Principal(r.Context())
	id := chi.URLParam(r, "id")

	comment, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("delete comment failed", "error", err)
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}
		JSONError(w, "comment not found", http.StatusNotFound)
		return
	}

	if !authz.CanWrite(principal, comment.OwnerID) {
		JSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		slog.Error("delete comment failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
