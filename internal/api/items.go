package api

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/media"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// maxFormBytes bounds a multipart item report including its photo.
const maxFormBytes = imaging.MaxUploadBytes + 1<<20

// ItemsHandler handles item report endpoints.
type ItemsHandler struct {
	DB     *sqlx.DB
	Photos media.Store
}

type searchResponse struct {
	Items []model.Item `json:"items"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

type itemResponse struct {
	Message string      `json:"message"`
	Item    *model.Item `json:"item"`
}

type updateResponse struct {
	Message string      `json:"message"`
	Data    *model.Item `json:"data"`
}

func itemID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}

// readItemInput decodes an item report from a multipart form or a JSON
// body. The photo is nil when none was uploaded. Errors carry a message
// fit for the client.
func readItemInput(w http.ResponseWriter, r *http.Request) (model.ItemInput, *imaging.Photo, error) {
	var in model.ItemInput

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := decodeJSON(r, &in); err != nil {
			return in, nil, errors.New("invalid request body")
		}
		return in, nil, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseMultipartForm(maxFormBytes); err != nil {
		return in, nil, errors.New("file too large or invalid multipart form")
	}
	if err := formDecoder.Decode(&in, r.MultipartForm.Value); err != nil {
		return in, nil, errors.New("invalid form fields")
	}

	file, _, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil, nil
	}
	if err != nil {
		return in, nil, errors.New("invalid image upload")
	}
	defer file.Close()

	photo, err := imaging.Process(file)
	if err != nil {
		slog.Warn("photo rejected", "error", err)
		return in, nil, errors.New("image must be a JPEG or PNG photo up to 10 MB")
	}
	return in, photo, nil
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller := IdentityFrom(r.Context())

	owner, err := store.GetUser(r.Context(), h.DB, caller.UserID)
	if err != nil {
		slog.Error("failed to get user", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}
	if owner == nil {
		jsonError(w, http.StatusUnauthorized, "User not found.")
		return
	}

	in, photo, err := readItemInput(w, r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, err := model.ValidateItem(in)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if photo != nil {
		ref, err := h.Photos.Save(r.Context(), photo.Data, photo.MIME)
		if err != nil {
			slog.Error("failed to store photo", "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to store image")
			return
		}
		item.Image = ref
	}

	item.UserID = owner.ID
	item.DateReported = time.Now()

	created, err := store.CreateItem(r.Context(), h.DB, item)
	if err != nil {
		slog.Error("failed to create item", "error", err)
		if photo != nil {
			h.removePhoto(r.Context(), item.Image)
		}
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	slog.Info("item reported", "item_id", created.ID, "user_id", owner.ID, "status", created.Status)
	jsonResponse(w, http.StatusCreated, itemResponse{Message: "Item reported successfully.", Item: created})
}

// Recent handles GET /api/items/recent-items?status=.
func (h *ItemsHandler) Recent(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListRecentItems(r.Context(), h.DB, r.URL.Query().Get("status"), store.RecentItemsLimit)
	if err != nil {
		slog.Error("failed to list recent items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Search handles GET /api/items/search.
func (h *ItemsHandler) Search(w http.ResponseWriter, r *http.Request) {
	var p store.SearchParams
	if err := formDecoder.Decode(&p, r.URL.Query()); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid search parameters")
		return
	}
	p.Normalize()

	items, err := store.SearchItems(r.Context(), h.DB, p)
	if err != nil {
		slog.Error("failed to search items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to search items")
		return
	}
	jsonResponse(w, http.StatusOK, searchResponse{Items: items, Page: p.Page, Limit: p.Limit})
}

// UserItems handles GET /api/items/user-items.
func (h *ItemsHandler) UserItems(w http.ResponseWriter, r *http.Request) {
	caller := IdentityFrom(r.Context())

	items, err := store.ListItemsByUser(r.Context(), h.DB, caller.UserID)
	if err != nil {
		slog.Error("failed to list user items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "Item not found.")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}. Fields absent from the body keep
// their stored values; the merged report is validated as a whole.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	existing, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}
	if existing == nil {
		jsonError(w, http.StatusForbidden, "Item not found.")
		return
	}

	var patch model.ItemPatch
	if err := decodeJSON(r, &patch); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := model.ValidateItem(patch.Apply(existing.Input()))
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	item.ID = existing.ID
	item.Image = existing.Image

	updated, err := store.UpdateItem(r.Context(), h.DB, item)
	if err != nil {
		slog.Error("failed to update item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}
	if !updated {
		jsonError(w, http.StatusForbidden, "Item not found.")
		return
	}

	result, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil || result == nil {
		slog.Error("failed to reload item", "item_id", id, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	slog.Info("item updated", "item_id", id)
	jsonResponse(w, http.StatusOK, updateResponse{Message: "Item updated successfully.", Data: result})
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "Item not found.")
		return
	}

	deleted, err := store.DeleteItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to delete item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}
	if !deleted {
		jsonError(w, http.StatusNotFound, "Item not found.")
		return
	}

	h.removePhoto(r.Context(), item.Image)

	caller := IdentityFrom(r.Context())
	slog.Info("item deleted", "item_id", id, "user_id", caller.UserID)
	jsonMessage(w, http.StatusOK, "Item deleted successfully.")
}

// removePhoto deletes a stored photo, logging failures.
func (h *ItemsHandler) removePhoto(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := h.Photos.Delete(ctx, ref); err != nil {
		slog.Warn("failed to remove photo", "ref", ref, "error", err)
	}
}
