package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/credgate/internal/metrics"
	"github.com/msomdec/credgate/internal/service"
)

// AuthHandler handles registration, login, and profile requests.
type AuthHandler struct {
	auth    *service.AuthService
	metrics metrics.Recorder
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, rec metrics.Recorder) *AuthHandler {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &AuthHandler{auth: auth, metrics: rec}
}

// HandleRegister creates an account.
// POST /api/register
// Request:  {"name":"...","email":"...","password":"..."}
// Response: 201 {"message":"User registered successfully"}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(w, r, &req); err != nil {
		h.metrics.RecordRegistration("invalid_input")
		writeMessage(w, http.StatusBadRequest, "All fields are required")
		return
	}

	_, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	h.metrics.RecordRegistration(outcome(err))
	if err != nil {
		status := statusFor(err)
		if errors.Is(err, service.ErrPasswordTooLong) {
			writeFailure(w, status, "Registration failed", err)
			return
		}
		if status == http.StatusBadRequest {
			writeMessage(w, status, "All fields are required")
			return
		}
		if status == http.StatusInternalServerError {
			slog.ErrorContext(r.Context(), "register user", "error", err)
		}
		writeFailure(w, status, "Registration failed", err)
		return
	}

	writeMessage(w, http.StatusCreated, "User registered successfully")
}

// HandleCreateUser creates an account and echoes it back.
// POST /create-user
// Request:  {"name":"...","email":"...","password":"..."}
// Response: 200 {"message":"User saved successfully","user":{...}}
func (h *AuthHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(w, r, &req); err != nil {
		h.metrics.RecordRegistration("invalid_input")
		writeMessage(w, http.StatusBadRequest, "Name, email, and password are required")
		return
	}

	user, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	h.metrics.RecordRegistration(outcome(err))
	if err != nil {
		status := statusFor(err)
		if errors.Is(err, service.ErrPasswordTooLong) {
			writeFailure(w, status, "Error saving user", err)
			return
		}
		if status == http.StatusBadRequest {
			writeMessage(w, status, "Name, email, and password are required")
			return
		}
		if status == http.StatusInternalServerError {
			slog.ErrorContext(r.Context(), "create user", "error", err)
		}
		writeFailure(w, status, "Error saving user", err)
		return
	}

	writeJSON(w, http.StatusOK, createUserResponse{
		Message: "User saved successfully",
		User:    toUserDTO(user),
	})
}

// HandleLogin checks credentials and returns a bearer token.
// POST /api/login
// Request:  {"email":"...","password":"..."}
// Response: 200 {"message":"Login successful","token":"..."}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(w, r, &req); err != nil {
		h.metrics.RecordLogin("invalid_input")
		writeMessage(w, http.StatusBadRequest, "Email and password required")
		return
	}

	tok, _, err := h.auth.Login(r.Context(), req.Email, req.Password)
	h.metrics.RecordLogin(outcome(err))
	if err != nil {
		switch status := statusFor(err); status {
		case http.StatusBadRequest:
			writeMessage(w, status, "Email and password required")
		case http.StatusNotFound:
			writeMessage(w, status, "User not found")
		case http.StatusUnauthorized:
			writeMessage(w, status, "Invalid password")
		default:
			slog.ErrorContext(r.Context(), "login user", "error", err)
			writeFailure(w, http.StatusInternalServerError, "Login failed", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Message: "Login successful",
		Token:   tok,
	})
}

// HandleProfile returns the authenticated user. It must sit behind RequireAuth.
// A valid token whose user no longer exists gets 404 "User not found".
// GET /api/profile
// Response: 200 {"_id":"...","name":"...","email":"...",...}
func (h *AuthHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	if claims == nil {
		writeMessage(w, http.StatusUnauthorized, "No token provided")
		return
	}

	user, err := h.auth.Profile(r.Context(), claims.UserID)
	if err != nil {
		if statusFor(err) == http.StatusNotFound {
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		slog.ErrorContext(r.Context(), "load profile", "error", err, "user_id", claims.UserID)
		writeFailure(w, http.StatusInternalServerError, "Failed to load profile", err)
		return
	}

	writeJSON(w, http.StatusOK, toUserDTO(user))
}
