package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"
)

// message is the body of every error and of bare confirmations.
type message struct {
	Message string `json:"message"`
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, msg string) {
	jsonResponse(w, status, message{Message: msg})
}

// jsonMessage writes a confirmation with the given status code.
func jsonMessage(w http.ResponseWriter, status int, msg string) {
	jsonResponse(w, status, message{Message: msg})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// formDecoder decodes query strings and multipart form values.
var formDecoder = newFormDecoder()

func newFormDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}
