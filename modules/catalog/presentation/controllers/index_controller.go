package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/iota-uz/catalog-api/pkg/application"
	"github.com/iota-uz/catalog-api/pkg/composables"
	"github.com/iota-uz/catalog-api/pkg/httpapi"
	"github.com/iota-uz/catalog-api/pkg/serrors"
)

type IndexController struct {
	app application.Application
}

func NewIndexController(app application.Application) application.Controller {
	return &IndexController{app: app}
}

func (c *IndexController) Key() string {
	return "/"
}

func (c *IndexController) Register(r *mux.Router) {
	r.HandleFunc("/", c.Index).Methods(http.MethodGet)
	r.HandleFunc("/_status", c.Status).Methods(http.MethodGet)
}

type indexResponse struct {
	Links map[string]string `json:"links"`
}

func (c *IndexController) Index(w http.ResponseWriter, r *http.Request) {
	_ = httpapi.WriteJSON(w, http.StatusOK, indexResponse{Links: map[string]string{
		"services.list":  externalURL(r, "/services", nil).String(),
		"suppliers.list": externalURL(r, "/suppliers", nil).String(),
	}})
}

type statusResponse struct {
	Status string `json:"status"`
}

// Status reports whether the database answers a trivial query.
func (c *IndexController) Status(w http.ResponseWriter, r *http.Request) {
	requestID := httpapi.EnsureRequestID(r)
	pool, err := composables.UsePool(r.Context())
	if err != nil {
		httpapi.WriteServiceError(w, requestID, serrors.Internal("DATABASE_UNAVAILABLE", err))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if _, err := pool.Exec(ctx, "SELECT 1"); err != nil {
		httpapi.WriteServiceError(w, requestID, serrors.Internal("DATABASE_UNAVAILABLE", err))
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}
