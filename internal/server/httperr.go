package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"liquid-ca/internal/errs"
)

// StatusCode maps err to an HTTP status: context timeouts to 504, context
// cancellation to 408, Warn errors to 400 and everything else to 500.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	}
	if errs.LevelOf(err) == errs.Warn {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	status := StatusCode(err)
	if status >= 500 {
		log.Error("request failed", slog.Any("err", err))
	}
	http.Error(w, err.Error(), status)
}
