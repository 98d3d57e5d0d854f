package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/iota-uz/catalog-api/pkg/configuration"
	"github.com/iota-uz/catalog-api/pkg/constants"
)

// EnsureRequestID returns the request id assigned by the logging middleware,
// then the configured header, generating one when both are absent.
func EnsureRequestID(r *http.Request) string {
	if v, ok := r.Context().Value(constants.RequestID).(string); ok && v != "" {
		return v
	}
	conf := configuration.Use()
	v := strings.TrimSpace(r.Header.Get(conf.RequestIDHeader))
	if v != "" {
		return v
	}
	v = uuid.NewString()
	r.Header.Set(conf.RequestIDHeader, v)
	return v
}

// DecodeJSON decodes an optional body strictly; an empty body leaves out untouched.
func DecodeJSON(body io.ReadCloser, out any) error {
	defer func() { _ = body.Close() }()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
