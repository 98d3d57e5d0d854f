package controllers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/iota-uz/catalog-api/pkg/serrors"
)

func invalidJSON(err error) *serrors.ServiceError {
	return serrors.New(http.StatusBadRequest, serrors.KindValidation, "INVALID_JSON", "Invalid JSON: "+err.Error(), nil)
}

// externalURL resolves path against the host the request was addressed to.
func externalURL(r *http.Request, path string, query url.Values) *url.URL {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	u := &url.URL{Scheme: scheme, Host: r.Host, Path: path}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u
}
