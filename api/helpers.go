package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rustyeddy/lotboard/lot"
)

const maxBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, lot.ErrNotFound), errors.Is(err, lot.ErrSymbolNotFound):
		return http.StatusNotFound
	case errors.Is(err, lot.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, lot.ErrAlreadyExists),
		errors.Is(err, lot.ErrBucketNotEmpty),
		errors.Is(err, lot.ErrNotCancelable),
		errors.Is(err, lot.ErrNotLiquidatable),
		errors.Is(err, lot.ErrLotClosed):
		return http.StatusConflict
	case errors.Is(err, lot.ErrQuoteUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.failStatus(w, r, statusFor(err), err)
}

// upstreamFail reports a broker error; unknown errors are the upstream's fault.
func (s *Server) upstreamFail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		status = http.StatusBadGateway
	}
	s.failStatus(w, r, status, err)
}

func (s *Server) failStatus(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= 500 {
		s.log.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}
	writeError(w, status, err.Error())
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %v: %w", err, lot.ErrInvalid)
	}
	return nil
}

// queryInt64 parses an optional integer query parameter; missing means 0.
func queryInt64(r *http.Request, name string) (int64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", name, v, lot.ErrInvalid)
	}
	return n, nil
}
