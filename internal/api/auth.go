package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/model"
)

// UserHandler handles the account lifecycle endpoints.
type UserHandler struct {
	Accounts *auth.Service
}

type signupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type signinRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

// invalidMessage picks the client message for an auth.ErrInvalid failure.
func invalidMessage(err error, fallback string) string {
	if errors.Is(err, model.ErrPasswordTooShort) {
		return model.ErrPasswordTooShort.Error()
	}
	return fallback
}

// Signup handles POST /user/signup.
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	_, err := h.Accounts.Signup(r.Context(), req.Username, req.Password, req.Email)
	switch {
	case errors.Is(err, auth.ErrConflict):
		jsonError(w, http.StatusBadRequest, "User already exists.")
		return
	case errors.Is(err, auth.ErrInvalid):
		jsonError(w, http.StatusBadRequest, invalidMessage(err, "username, password and a valid email are required"))
		return
	case err != nil:
		slog.Error("signup failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	jsonMessage(w, http.StatusCreated, "User registered. Please check your email to verify your account.")
}

// VerifyEmail handles GET /user/verify-email?token=.
func (h *UserHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	already, err := h.Accounts.VerifyEmail(r.Context(), r.URL.Query().Get("token"))
	switch {
	case errors.Is(err, auth.ErrInvalid):
		jsonError(w, http.StatusBadRequest, "Invalid or expired token.")
		return
	case err != nil:
		slog.Error("email verification failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if already {
		jsonMessage(w, http.StatusOK, "Email already verified.")
		return
	}
	jsonMessage(w, http.StatusOK, "Email verified! You can now log in.")
}

// Signin handles POST /user/signin.
func (h *UserHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.Accounts.Signin(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrNotFound):
		jsonError(w, http.StatusUnauthorized, "User not found.")
		return
	case errors.Is(err, auth.ErrUnauthorized):
		jsonError(w, http.StatusUnauthorized, "Invalid password.")
		return
	case errors.Is(err, auth.ErrForbidden):
		jsonError(w, http.StatusBadRequest, "Please verify your email before logging in.")
		return
	case err != nil:
		slog.Error("signin failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	jsonResponse(w, http.StatusOK, res)
}

// ForgotPassword handles POST /user/forgot-password.
func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.Accounts.ForgotPassword(r.Context(), req.Email)
	switch {
	case errors.Is(err, auth.ErrInvalid):
		jsonError(w, http.StatusBadRequest, "email is required")
		return
	case errors.Is(err, auth.ErrNotFound):
		jsonError(w, http.StatusNotFound, "User with this email does not exist.")
		return
	case err != nil:
		slog.Error("forgot password failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	jsonMessage(w, http.StatusOK, "Password reset link sent to your email.")
}

// ResetPassword handles POST /user/reset-password/{token}.
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Password == "" {
		jsonError(w, http.StatusBadRequest, "password is required")
		return
	}

	err := h.Accounts.ResetPassword(r.Context(), r.PathValue("token"), req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalid):
		jsonError(w, http.StatusBadRequest, invalidMessage(err, "Password reset token is invalid or has expired."))
		return
	case err != nil:
		slog.Error("password reset failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	jsonMessage(w, http.StatusOK, "Password has been reset successfully.")
}
