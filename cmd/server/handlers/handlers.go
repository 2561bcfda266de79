// Package handlers provides the REST handlers behind the anniversary UI.
// Every handler wraps the sync adapter, so mutations persist locally and
// write through to the remote copy when one is connected.
package handlers

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/hungduong/loveanniversary/internal/errors"
)

// errorResponse is the JSON error body.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	writeJSON(w, statusFor(code), errorResponse{Error: err.Error(), Code: string(code)})
}

// statusFor maps application error codes to HTTP statuses.
func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrValidation, apperrors.ErrInvalid, apperrors.ErrImportInvalid, apperrors.ErrMediaDecode:
		return http.StatusBadRequest
	case apperrors.ErrNotFound, apperrors.ErrMemoryNotFound, apperrors.ErrPhotoNotFound,
		apperrors.ErrKeyNotFound, apperrors.ErrRemoteNotFound:
		return http.StatusNotFound
	case apperrors.ErrSyncUnavailable, apperrors.ErrSyncTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
