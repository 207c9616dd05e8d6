package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

var errMalformedBody = errors.New("request body must be a single JSON object")

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errMalformedBody):
		return http.StatusBadRequest
	case core.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrDuplicateUser):
		return http.StatusConflict
	case errors.Is(err, core.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs server side failures in full and sends only the
// user-facing message.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	msg := core.Message(err)
	if errors.Is(err, errMalformedBody) {
		msg = errMalformedBody.Error()
	}

	logger := applog.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Failure(r.Context(), "Request failed", op, err)
	} else {
		logger.DebugContext(r.Context(), "Request rejected", applog.FieldOperation, op, applog.FieldError, msg)
	}

	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Basic realm="fintrack", charset="UTF-8"`)
	}
	writeJSON(w, status, errorBody{Error: msg})
}

// decodeJSON reads exactly one JSON object into dst. Field decoders may
// return core validation errors, which pass through unchanged.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if core.IsValidation(err) {
			return err
		}
		return errMalformedBody
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errMalformedBody
	}
	return nil
}

// pathID parses the {id} segment. Anything that is not a positive integer
// cannot name a transaction, so it is reported as not found.
func pathID(r *http.Request) (core.TransactionID, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, core.ErrNotFound
	}
	return core.TransactionID(id), nil
}

// authenticated resolves Basic credentials on every request.
func (s *Server) authenticated(next func(http.ResponseWriter, *http.Request, core.UserID)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			writeError(w, r, applog.OpLogin, core.ErrInvalidCredentials)
			return
		}
		userID, err := s.auth.Authenticate(r.Context(), username, password)
		if err != nil {
			writeError(w, r, applog.OpLogin, err)
			return
		}

		logger := applog.FromContext(r.Context()).WithFields(applog.NewFields().WithUser(int64(userID)))
		ctx := applog.WithLogger(r.Context(), logger)
		next(w, r.WithContext(ctx), userID)
	}
}
