package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// ContactHandler handles the public contact form.
type ContactHandler struct {
	DB *sqlx.DB
}

type contactRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Contact   string `json:"contact"`
	Message   string `json:"message"`
}

// Create handles POST /api/contact.
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c := &model.Contact{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.TrimSpace(req.Email),
		Contact:   strings.TrimSpace(req.Contact),
		Message:   strings.TrimSpace(req.Message),
	}
	if c.FirstName == "" || c.LastName == "" || c.Email == "" || c.Contact == "" || c.Message == "" {
		jsonError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	id, err := store.CreateContact(r.Context(), h.DB, c)
	if err != nil {
		slog.Error("failed to save contact message", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to save message")
		return
	}

	slog.Info("contact message received", "contact_id", id)
	jsonMessage(w, http.StatusCreated, "Message sent successfully")
}
