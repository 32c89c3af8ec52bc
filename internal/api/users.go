package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// AdminHandler handles user administration endpoints (admin only).
type AdminHandler struct {
	DB *sqlx.DB
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list users", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if len(users) == 0 {
		jsonError(w, http.StatusNotFound, "No users found.")
		return
	}
	jsonResponse(w, http.StatusOK, users)
}

// DeleteUser handles DELETE /users/{id}. The user's items are kept.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	caller := IdentityFrom(r.Context())
	if caller != nil && caller.UserID == id {
		jsonError(w, http.StatusBadRequest, "cannot delete yourself")
		return
	}

	target, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get user", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	if target == nil {
		jsonError(w, http.StatusNotFound, "User not found.")
		return
	}

	deleted, err := store.DeleteUser(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to delete user", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	if !deleted {
		jsonError(w, http.StatusNotFound, "User not found.")
		return
	}

	slog.Info("user deleted", "admin_id", caller.UserID, "deleted_user", target.Username)
	jsonMessage(w, http.StatusOK, "User deleted successfully.")
}

// ListContacts handles GET /admin/contacts.
func (h *AdminHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := store.ListContacts(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list contact messages", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list contact messages")
		return
	}
	if contacts == nil {
		contacts = []model.Contact{}
	}
	jsonResponse(w, http.StatusOK, contacts)
}
