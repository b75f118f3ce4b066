// Package handlers wires the HTTP surface. Every response is wrapped in the
// same envelope: {"ok":true,"data":...} on success and
// {"ok":false,"error":{"code","message"}} on failure.
package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ember-vale/api/internal/errs"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeOK(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{"ok": true, "data": data})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"ok": false,
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// writeDomainError maps a store/auth error to its envelope. Anything that is
// not an errs.Error is an internal failure and must not leak details.
func writeDomainError(w http.ResponseWriter, logger *zap.Logger, err error) {
	if e, ok := errs.As(err); ok {
		writeError(w, e.Status, e.Code, e.Message)
		return
	}
	logger.Error("unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
}
