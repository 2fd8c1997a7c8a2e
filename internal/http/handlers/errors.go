package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/campuslink/campuslink-be/internal/http/respond"
	"github.com/campuslink/campuslink-be/internal/storage"
)

// storageError maps storage-layer failures to external statuses. Unexpected
// errors are logged with context and answered with a generic body; internal
// diagnostics are never echoed to clients.
func storageError(w http.ResponseWriter, logger *zap.Logger, op string, err error, conflictMsg, notFoundMsg string) {
	switch {
	case errors.Is(err, storage.ErrAlreadyExists):
		respond.Error(w, http.StatusConflict, conflictMsg)
	case errors.Is(err, storage.ErrNotFound):
		respond.Error(w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, storage.ErrUnavailable):
		respond.Error(w, http.StatusServiceUnavailable, "service unavailable")
	default:
		logger.Error(op, zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal error")
	}
}
