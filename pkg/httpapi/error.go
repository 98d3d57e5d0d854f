package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/iota-uz/catalog-api/pkg/serrors"
)

// ErrorEnvelope standardizes JSON error responses.
type ErrorEnvelope struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Kind    string            `json:"kind,omitempty"`
	Meta    map[string]string `json:"meta,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, code, kind, message string, meta map[string]string) error {
	return WriteJSON(w, status, &ErrorEnvelope{
		Code:    code,
		Kind:    kind,
		Message: message,
		Meta:    meta,
	})
}

// NotFound and MethodNotAllowed keep router-level failures in the JSON envelope.
func NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = WriteError(w, http.StatusNotFound, "NOT_FOUND", "not_found", "resource not found", map[string]string{"path": r.URL.Path})
	})
}

func MethodNotAllowed() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "", "method not allowed", map[string]string{"path": r.URL.Path})
	})
}

// WriteServiceError renders err as an ErrorEnvelope; errors that are not *serrors.ServiceError become 500s.
func WriteServiceError(w http.ResponseWriter, requestID string, err error) {
	meta := map[string]string{}
	if requestID != "" {
		meta["request_id"] = requestID
	}
	if svcErr, ok := serrors.As(err); ok {
		message := svcErr.Message
		if svcErr.Kind == serrors.KindInternal && svcErr.Cause != nil {
			message = svcErr.Error()
		}
		_ = WriteError(w, svcErr.Status, svcErr.Code, string(svcErr.Kind), message, meta)
		return
	}
	_ = WriteError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", string(serrors.KindInternal), err.Error(), meta)
}
