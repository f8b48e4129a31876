package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go-propmarket/models"
)

// requestTimeout bounds database work done outside a request's own context.
const requestTimeout = 10 * time.Second

// Stable error codes so clients can tell a retryable failure from an invalid
// payment or a missing resource.
const (
	codeNotFound         = "not_found"
	codeInvalidSignature = "invalid_signature"
	codeInvalidArgument  = "invalid_argument"
	codeUpstreamFailure  = "upstream_failure"
	codeConflict         = "conflict"
	codeUnauthorized     = "unauthorized"
	codeForbidden        = "forbidden"
	codeInternalError    = "internal_error"
)

type errorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Message: message, Code: code})
}

// writeDomainError maps a domain error to its HTTP status and stable code.
// Unknown errors collapse to an opaque 500; internals are never echoed back.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrPropertyNotFound),
		errors.Is(err, models.ErrOrderNotFound),
		errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrWishlistItemNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, err.Error())
	case errors.Is(err, models.ErrInvalidSignature):
		writeError(w, http.StatusBadRequest, codeInvalidSignature, err.Error())
	case errors.Is(err, models.ErrInvalidPrice):
		writeError(w, http.StatusBadRequest, codeInvalidArgument, err.Error())
	case errors.Is(err, models.ErrDuplicateRemoteOrder),
		errors.Is(err, models.ErrPaymentMismatch):
		writeError(w, http.StatusConflict, codeConflict, err.Error())
	case errors.Is(err, models.ErrUpstreamUnavailable):
		writeError(w, http.StatusBadGateway, codeUpstreamFailure, models.ErrUpstreamUnavailable.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal server error")
	}
}
