// Package auth exposes the signup/login/verify HTTP API.
package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	authservice "github.com/abaanfida/unixora/internal/service/auth"
	"github.com/abaanfida/unixora/pkg/utils"
)

// Handler serves the auth endpoints.
type Handler struct {
	authSvc *authservice.Service
}

// New creates the auth handler.
func New(authSvc *authservice.Service) *Handler {
	return &Handler{authSvc: authSvc}
}

// RegisterRoutes registers the auth routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/signup", h.handleSignup)
	r.Post("/auth/login", h.handleLogin)
	r.Get("/auth/verify", h.handleVerify)
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Email     string `json:"email"`
		Password  string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondMessage(w, http.StatusBadRequest, "Missing required fields.")
		return
	}

	token, profile, err := h.authSvc.Signup(r.Context(), payload.FirstName, payload.LastName, payload.Email, payload.Password)
	if err != nil {
		respondAuthError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"message": "Account created successfully.",
		"token":   token,
		"user":    profile,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondMessage(w, http.StatusBadRequest, "Missing email or password.")
		return
	}
	if payload.Email == "" || payload.Password == "" {
		utils.RespondMessage(w, http.StatusBadRequest, "Missing email or password.")
		return
	}

	token, profile, err := h.authSvc.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		respondAuthError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful.",
		"token":   token,
		"user":    profile,
	})
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		utils.RespondMessage(w, http.StatusUnauthorized, "No token provided.")
		return
	}

	identity, err := h.authSvc.Verify(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		utils.RespondMessage(w, http.StatusUnauthorized, "Invalid or expired token.")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"valid": true,
		"user":  identity.Profile,
	})
}

// respondAuthError maps service errors onto the auth API's status codes
// and message strings.
func respondAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authservice.ErrMissingFields):
		utils.RespondMessage(w, http.StatusBadRequest, "Missing required fields.")
	case errors.Is(err, authservice.ErrInvalidEmail):
		utils.RespondMessage(w, http.StatusBadRequest, "Invalid email format.")
	case errors.Is(err, authservice.ErrWeakPassword):
		utils.RespondMessage(w, http.StatusBadRequest, "Password must be at least 8 characters and include a number and a special character.")
	case errors.Is(err, authservice.ErrEmailExists):
		utils.RespondMessage(w, http.StatusConflict, "Email already exists.")
	case errors.Is(err, authservice.ErrEmailNotFound):
		utils.RespondMessage(w, http.StatusNotFound, "Email not found.")
	case errors.Is(err, authservice.ErrWrongPassword):
		utils.RespondMessage(w, http.StatusUnauthorized, "Incorrect password.")
	default:
		log.Printf("[auth] internal error: %v", err)
		utils.RespondMessage(w, http.StatusInternalServerError, "Internal server error.")
	}
}
