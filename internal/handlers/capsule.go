package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/capsulehq/capsule-api/internal/authz"
	"github.com/capsulehq/capsule-api/internal/middleware"
	"github.com/capsulehq/capsule-api/internal/models"
	"github.com/capsulehq/capsule-api/internal/repo"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// ==========================
// Capsule Handler
// ==========================
type CapsuleHandler struct {
	Repo *repo.CapsuleRepo
}

type capsuleInput struct {
	Title      string     `json:"title" validate:"required,min=1,max=200"`
	Message    string     `json:"message" validate:"max=10000"`
	Visibility string     `json:"visibility" validate:"omitempty,oneof=public private"`
	Recipients []string   `json:"recipients" validate:"max=50,dive,uuid4"`
	OpenAt     *time.Time `json:"open_at"`
}

// ==========================
// Create Capsule
// ==========================
func (h *CapsuleHandler) CreateCapsule(w http.ResponseWriter, r *http.Request) {
	principal := middleware.Principal(r.Context())

	var input capsuleInput
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

	if input.Visibility == "" {
		input.Visibility = models.VisibilityPrivate
	}

	capsule, err := h.Repo.Create(r.Context(), principal.ID,
		input.Title, input.Message, input.Visibility, input.Recipients, input.OpenAt)
	if err != nil {
		slog.Error("create capsule failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSON(w, http.StatusCreated, capsule)
}

// ==========================
// List Capsules
// ==========================

// ListCapsules returns public capsules plus, for authenticated callers, their
// own and shared-with capsules. The visibility filter runs in the query.
func (h *CapsuleHandler) ListCapsules(w http.ResponseWriter, r *http.Request) {
	limit := 20
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 && val <= 100 {
			limit = val
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if val, err := strconv.Atoi(o); err == nil && val >= 0 {
			offset = val
		}
	}

	viewerID := ""
	if principal := middleware.Principal(r.Context()); principal != nil {
		viewerID = principal.ID
	}

	capsules, err := h.Repo.ListVisible(r.Context(), viewerID, limit, offset)
	if err != nil {
		slog.Error("list capsules failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if capsules == nil {
		capsules = []models.TimeCapsule{}
	}

	JSON(w, http.StatusOK, capsules)
}

// ==========================
// Get Capsule
// ==========================

// GetCapsule hides private capsules from unauthorized readers: a capsule the
// caller may not read yields the same 404 as one that does not exist.
func (h *CapsuleHandler) GetCapsule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	capsule, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("get capsule failed", "error", err)
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}
		JSONError(w, "capsule not found", http.StatusNotFound)
		return
	}

	if !authz.CanRead(middleware.Principal(r.Context()), capsule) {
		JSONError(w, "capsule not found", http.StatusNotFound)
		return
	}

	JSON(w, http.StatusOK, capsule)
}

// ==========================
// Update Capsule
// ==========================
func (h *CapsuleHandler) UpdateCapsule(w http.ResponseWriter, r *http.Request) {
	principal := middleware.Principal(r.Context())
	id := chi.URLParam(r, "id")

	capsule, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("update capsule failed", "error", err)
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}
		JSONError(w, "capsule not found", http.StatusNotFound)
		return
	}

	if !authz.CanWrite(principal, capsule.OwnerID) {
		JSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	var input capsuleInput
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

	if input.Visibility == "" {
		input.Visibility = capsule.Visibility
	}

	updated, err := h.Repo.Update(r.Context(), id,
		input.Title, input.Message, input.Visibility, input.Recipients, input.OpenAt)
	if err != nil {
		slog.Error("update capsule failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSON(w, http.StatusOK, updated)
}

// ==========================
// Delete Capsule
// ==========================
func (h *CapsuleHandler) DeleteCapsule(w http.ResponseWriter, r *http.Request) {
	principal := middleware.Principal(r.Context())
	id := chi.URLParam(r, "id")

	capsule, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("delete capsule failed", "error", err)
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}
		JSONError(w, "capsule not found", http.StatusNotFound)
		return
	}

	if !authz.CanWrite(principal, capsule.OwnerID) {
		JSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	if err := h.Repo.Delete(r.Context(), id); err != nil {
		slog.Error("delete capsule failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
