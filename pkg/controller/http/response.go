package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/secmon-lab/tablero/pkg/domain/interfaces"
	"github.com/secmon-lab/tablero/pkg/domain/model"
	"github.com/secmon-lab/tablero/pkg/usecase"
	"github.com/secmon-lab/tablero/pkg/utils/errutil"
	"github.com/secmon-lab/tablero/pkg/utils/logging"
)

// maxBodySize bounds JSON request bodies
const maxBodySize = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

type successResponse struct {
	Success bool `json:"success"`
}

// writeResponse reports an optimistic write. A rolled back write carries the
// toast text in Error.
type writeResponse struct {
	Outcome usecase.Outcome `json:"outcome"`
	Record  any             `json:"record"`
	Reason  string          `json:"reason,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// writeJSON writes a JSON response with proper error handling
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		errutil.Handle(ctx, err, "failed to encode JSON response")
	}
}

// decodeJSON reads the request body into dst. On failure it writes a 400 and
// returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(dst); err != nil {
		writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

// writeResult answers an optimistic write. A rolled back write is a 502 so the
// client shows failMessage, with the restored record in the body.
func writeResult(ctx context.Context, w http.ResponseWriter, outcome usecase.Outcome, record any, reason, failMessage string) {
	resp := writeResponse{Outcome: outcome, Record: record, Reason: reason}
	status := http.StatusOK
	if outcome == usecase.OutcomeRolledBack {
		resp.Error = failMessage
		status = http.StatusBadGateway
	}
	writeJSON(ctx, w, status, resp)
}

// statusOf maps use case errors to HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput),
		errors.Is(err, usecase.ErrUnknownCard),
		errors.Is(err, usecase.ErrUnknownTalk),
		errors.Is(err, usecase.ErrEmptyChat),
		errors.Is(err, model.ErrInvalidTicket),
		errors.Is(err, model.ErrInvalidContentItem),
		errors.Is(err, model.ErrInvalidProgress),
		errors.Is(err, model.ErrInvalidMaterial):
		return http.StatusBadRequest

	case errors.Is(err, usecase.ErrInvalidCredentials),
		errors.Is(err, usecase.ErrUnauthenticated):
		return http.StatusUnauthorized

	case errors.Is(err, usecase.ErrTicketNotFound),
		errors.Is(err, usecase.ErrContentItemNotFound),
		errors.Is(err, usecase.ErrMaterialNotFound),
		errors.Is(err, usecase.ErrSlideNotFound),
		errors.Is(err, usecase.ErrCVNotFound),
		errors.Is(err, interfaces.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, interfaces.ErrConflict):
		return http.StatusConflict

	case errors.Is(err, usecase.ErrLLMNotConfigured),
		errors.Is(err, usecase.ErrStorageNotConfigured):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// handleError logs err and writes it with the mapped status. Credentials
// errors hide which part was wrong.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if errors.Is(err, usecase.ErrInvalidCredentials) {
		logging.From(r.Context()).Info("login failed", "error", err)
		writeJSON(r.Context(), w, status, errorResponse{Error: usecase.ErrInvalidCredentials.Error()})
		return
	}
	errutil.HandleHTTP(r.Context(), w, err, status)
}
