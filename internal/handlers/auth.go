package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/capsulehq/capsule-api/internal/auth"
	"github.com/capsulehq/capsule-api/internal/metrics"
	"github.com/go-playground/validator/v10"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	Service *auth.Service
}

// ==========================
// Register
// ==========================
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username" validate:"required,min=3,max=30"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8,max=72"`
	}

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

	token, user, err := h.Service.Register(r.Context(), input.Username, input.Email, input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateIdentity) {
			metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
			JSONError(w, auth.ErrDuplicateIdentity.Error(), http.StatusBadRequest)
			return
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		slog.Error("register failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	JSON(w, http.StatusCreated, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// ==========================
// Login
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	token, user, err := h.Service.Login(r.Context(), input.Email, input.Password)
	if err != nil {
		// Unknown email and wrong password share one message and status.
		if errors.Is(err, auth.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			JSONError(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		slog.Error("login failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	JSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}
