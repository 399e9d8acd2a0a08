package handlers

import (
	"net/http"

	"github.com/capsulehq/capsule-api/internal/middleware"
)

// ==========================
// User Handler
// ==========================
type UserHandler struct{}

// Me returns the authenticated principal. Mounted behind RequireAuth, so the
// principal is always present here.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, middleware.Principal(r.Context()))
}
