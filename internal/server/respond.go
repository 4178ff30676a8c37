package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bkarpinos/linkvault/internal/errx"
)

// maxBodySize limits request bodies, imports included.
const maxBodySize = 10 << 20

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// fail writes err using the status that matches its kind.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	kind := errx.KindOf(err)
	status := kindToStatus(kind)
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("op", errx.OpOf(err)).Str("path", r.URL.Path).Msg("request failed")
	}
	s.writeError(w, status, kindToCode(kind), err.Error())
}

func kindToStatus(kind errx.Kind) int {
	switch kind {
	case errx.NotFound:
		return http.StatusNotFound
	case errx.Invalid:
		return http.StatusBadRequest
	case errx.Forbidden:
		return http.StatusForbidden
	case errx.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func kindToCode(kind errx.Kind) string {
	if kind == errx.Unknown {
		return errx.Internal.String()
	}
	return kind.String()
}

// decodeJSON reads a single JSON value from the request body.
func decodeJSON[T any](r *http.Request) (T, error) {
	var v T
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodySize)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &syntaxErr):
			err = fmt.Errorf("malformed JSON at position %d", syntaxErr.Offset)
		case errors.As(err, &typeErr):
			err = fmt.Errorf("invalid value for field %q", typeErr.Field)
		case errors.Is(err, io.EOF):
			err = errors.New("request body is empty")
		}
		return v, errx.E("server.decode", errx.Invalid, err)
	}
	if dec.More() {
		return v, errx.Errorf("server.decode", errx.Invalid, "request body contains multiple JSON values")
	}
	return v, nil
}

// confirmed reports whether a dangerous request carries confirm=true, and
// writes the rejection when it does not.
func (s *Server) confirmed(w http.ResponseWriter, r *http.Request) bool {
	if r.URL.Query().Get("confirm") == "true" {
		return true
	}
	s.writeError(w, http.StatusPreconditionRequired, "confirmation_required",
		"this operation cannot be undone; repeat the request with confirm=true")
	return false
}
