package errutil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/utils/logging"
)

// Handle logs the error with a message and reports it to Sentry when a client
// is configured. It returns err unchanged.
func Handle(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}

	logging.From(ctx).Error(msg, errorAttrs(err)...)
	report(ctx, err)
	return err
}

// HandleHTTP logs the error and writes a JSON error response. Client errors
// are logged as warnings; only 5xx errors are reported to Sentry.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int) {
	if err == nil {
		return
	}

	attrs := append([]any{"status", statusCode}, errorAttrs(err)...)
	if statusCode >= http.StatusInternalServerError {
		logging.From(ctx).Error("request failed", attrs...)
		report(ctx, err)
	} else {
		logging.From(ctx).Warn("request rejected", attrs...)
	}

	WriteError(w, statusCode, err.Error())
}

// errorAttrs carries goerr values and stack into the log record
func errorAttrs(err error) []any {
	attrs := []any{"error", err.Error()}
	var ge *goerr.Error
	if errors.As(err, &ge) {
		attrs = append(attrs, "values", ge.Values(), "stack", ge.Stacks())
	}
	return attrs
}

// WriteError writes {"error": message} with the given status
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func report(ctx context.Context, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	if hub.Client() == nil {
		return
	}
	hub.CaptureException(err)
}
