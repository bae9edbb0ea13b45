package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/entrepreneur-award/award-api/internal/domain"
	"github.com/entrepreneur-award/award-api/internal/pkg/validate"
	"github.com/getsentry/sentry-go"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

// classes maps each sentinel to its status, most specific first.
var classes = []struct {
	err    error
	status int
}{
	{domain.ErrBadRequest, http.StatusBadRequest},
	{domain.ErrUnauthorized, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrConflict, http.StatusConflict},
}

// httpError maps a service error to a status code and writes it. Anything
// outside the domain sentinels is a 500 with a generic message, reported to
// Sentry when a client is configured.
func httpError(w http.ResponseWriter, r *http.Request, handlerName string, err error) {
	for _, c := range classes {
		if errors.Is(err, c.err) {
			writeError(w, c.status, publicMessage(err, c.err))
			return
		}
	}
	reqID := chimiddleware.GetReqID(r.Context())
	slog.Error("request failed", "handler", handlerName, "request_id", reqID, "err", err)
	report(r, handlerName, reqID, err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// publicMessage strips the trailing ": <sentinel>" so the client reads
// "invalid OTP" rather than "invalid OTP: bad request".
func publicMessage(err, sentinel error) string {
	msg := strings.TrimSuffix(err.Error(), ": "+sentinel.Error())
	if msg == "" {
		return sentinel.Error()
	}
	return msg
}

func report(r *http.Request, handlerName, reqID string, err error) {
	hub := sentry.GetHubFromContext(r.Context())
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("handler", handlerName)
		scope.SetLevel(sentry.LevelError)
		if reqID != "" {
			scope.SetTag("request_id", reqID)
		}
		hub.CaptureException(err)
	})
}

// decode reads a JSON body into dst and validates it. On failure it writes a
// 400 and returns false.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("validation failed: %s", err))
		return false
	}
	return true
}
