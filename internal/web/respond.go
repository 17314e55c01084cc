// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 GameNight Contributors

package web

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/gamenight/gamenight/pkg/errutil"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Field string `json:"field,omitempty"`
}

type messageBody struct {
	Message string `json:"message"`
}

var kindStatus = map[errutil.Kind]int{
	errutil.KindValidation:     http.StatusBadRequest,
	errutil.KindAuthentication: http.StatusUnauthorized,
	errutil.KindAuthorization:  http.StatusForbidden,
	errutil.KindConflict:       http.StatusConflict,
	errutil.KindTokenInvalid:   http.StatusBadRequest,
	errutil.KindNotFound:       http.StatusNotFound,
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // client may have gone away
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageBody{Message: msg})
}

// writeError maps err to a status by its kind. Errors without a kind are
// logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	domainErr, ok := errutil.As(err)
	status, known := kindStatus[errutil.KindOf(err)]
	if !ok || !known {
		errutil.LogError(logger.With("method", r.Method, "path", r.URL.Path), "request failed", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error", Code: "INTERNAL"})
		return
	}

	logger.DebugContext(r.Context(), "request rejected",
		"status", status,
		"kind", string(domainErr.Kind),
		"code", errutil.Code(err),
		"error", domainErr.Message)
	writeJSON(w, status, errorBody{
		Error: domainErr.Message,
		Code:  errutil.Code(err),
		Field: domainErr.Field,
	})
}

// decodeBody reads a JSON object into dst. Each required key must be
// present with a non-null, non-empty value.
func decodeBody(r *http.Request, dst any, required ...string) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return oops.Code("REQUEST_READ_FAILED").Wrap(err)
	}
	if len(data) > maxBodyBytes {
		return oops.Code("REQUEST_TOO_LARGE").Wrap(errutil.Validation("", "Request body too large"))
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return oops.Code("REQUEST_INVALID").Wrap(errutil.Validation("", "Invalid body"))
	}
	for _, key := range required {
		if v, ok := fields[key]; !ok || v == nil || v == "" {
			return oops.Code("REQUEST_MISSING_FIELD").Wrap(errutil.Validation(key, "Missing or empty: %s", key))
		}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(dst); err != nil {
		return oops.Code("REQUEST_INVALID").Wrap(errutil.Validation("", "Invalid body"))
	}
	return nil
}

// pathID parses the named URL parameter as an ID.
func pathID(r *http.Request, param, what string) (ulid.ULID, error) {
	raw := chi.URLParam(r, param)
	id, err := ulid.Parse(raw)
	if err != nil {
		return ulid.ULID{}, oops.Code("INVALID_ID").
			With("param", param).
			With("value", raw).
			Wrap(errutil.Validation(param, "Invalid %s id", what))
	}
	return id, nil
}
