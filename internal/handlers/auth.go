package handlers

import (
	"errors"
	"log"
	"net/http"
	"net/mail"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cartstack/identity/internal/services"
	"github.com/cartstack/identity/types"
)

const minPasswordLength = 6

// AuthHandler provides the signup and login endpoints.
type AuthHandler struct {
	accountService *services.AccountService
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(accountService *services.AccountService) *AuthHandler {
	return &AuthHandler{accountService: accountService}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, accountService *services.AccountService) {
	handler := NewAuthHandler(accountService)

	r.Post("/signup", handler.Signup)
	r.Post("/login", handler.Login)
}

// Signup registers a new user account.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	if !validEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "invalid email address")
		return
	}
	if req.FullName == "" {
		writeError(w, http.StatusBadRequest, "full name is required")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	user, err := h.accountService.Signup(r.Context(), req.Email, req.FullName, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateAccount):
			writeError(w, http.StatusBadRequest, "Email already registered")
		case errors.Is(err, services.ErrPersistenceFault):
			writeError(w, http.StatusInternalServerError, "User creation failed")
		default:
			log.Printf("handlers: signup failed: %v", err)
			writeError(w, http.StatusInternalServerError, "User creation failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, newAccountResponse(user))
}

// Login verifies credentials and returns the stored account.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if !validEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "invalid email address")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	user, err := h.accountService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		log.Printf("handlers: login failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, newAccountResponse(user))
}

type SignupRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccountResponse is the shape shared by the signup and login responses.
type AccountResponse struct {
	ID       int      `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	IsActive bool     `json:"is_active"`
	Roles    []string `json:"roles"`
}

func newAccountResponse(user types.User) AccountResponse {
	return AccountResponse{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		IsActive: user.IsActive,
		Roles:    user.RoleTitles(),
	}
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
