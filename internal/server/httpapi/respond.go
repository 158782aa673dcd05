// Package httpapi is the REST surface of the server: a chi router over the
// service layer, JWT auth middleware, and the SSE event stream.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rcabrera/citywatch/internal/common"
)

// envelope is the response body shape shared by every endpoint:
// {"success": bool, "message": string, ...}.
type envelope map[string]any

func respondJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// respondError maps service errors onto HTTP statuses. Validation failures
// include the per-field breakdown; everything else gets a flat message.
func respondError(w http.ResponseWriter, err error) {
	var ve *common.ValidationError
	if errors.As(err, &ve) {
		respondJSON(w, http.StatusBadRequest, envelope{
			"success": false,
			"message": "validation failed",
			"errors":  ve.Fields,
		})
		return
	}

	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, common.ErrUnauthorized), errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		status = http.StatusUnauthorized
		message = "invalid credentials"
	case errors.Is(err, common.ErrForbidden):
		status = http.StatusForbidden
		message = "forbidden"
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
		message = "not found"
	case errors.Is(err, common.ErrConflict):
		status = http.StatusConflict
		message = "already exists"
	case errors.Is(err, common.ErrResetTokenExpired):
		status = http.StatusBadRequest
		message = "reset code invalid or expired"
	case errors.Is(err, common.ErrUpload):
		message = "image upload failed"
	case errors.Is(err, common.ErrAllocation):
		message = "could not allocate identifier"
	}

	respondJSON(w, status, envelope{"success": false, "message": message})
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

func respondBadRequest(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusBadRequest, envelope{"success": false, "message": message})
}
