package controllers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/iota-uz/catalog-api/modules/catalog/presentation/mappers"
	"github.com/iota-uz/catalog-api/modules/catalog/services"
	"github.com/iota-uz/catalog-api/pkg/application"
	"github.com/iota-uz/catalog-api/pkg/composables"
	"github.com/iota-uz/catalog-api/pkg/httpapi"
	"github.com/iota-uz/catalog-api/pkg/serrors"
)

type ServicesController struct {
	app      application.Application
	catalog  *services.CatalogService
	basePath string
}

func NewServicesController(app application.Application) application.Controller {
	return &ServicesController{
		app:      app,
		catalog:  app.Service(services.CatalogService{}).(*services.CatalogService),
		basePath: "/services",
	}
}

func (c *ServicesController) Key() string {
	return c.basePath
}

func (c *ServicesController) Register(r *mux.Router) {
	r.HandleFunc(c.basePath, c.List).Methods(http.MethodGet)

	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/{service_id}", c.Get).Methods(http.MethodGet)
	router.HandleFunc("/{service_id}", c.Update).Methods(http.MethodPost)
	router.HandleFunc("/{service_id}", c.Import).Methods(http.MethodPut)
	router.HandleFunc("/{service_id}/status/{status}", c.UpdateStatus).Methods(http.MethodPost)
}

func (c *ServicesController) selfURL(r *http.Request) func(string) string {
	return func(serviceID string) string {
		return externalURL(r, c.basePath+"/"+url.PathEscape(serviceID), nil).String()
	}
}

type servicesListResponse struct {
	Services []map[string]any  `json:"services"`
	Links    map[string]string `json:"links"`
}

type serviceResponse struct {
	Services map[string]any `json:"services"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (c *ServicesController) List(w http.ResponseWriter, r *http.Request) {
	requestID := httpapi.EnsureRequestID(r)
	query := r.URL.Query()

	page, ok := composables.UsePage(r)
	if !ok {
		httpapi.WriteServiceError(w, requestID, serrors.Validation("INVALID_PAGE", "Invalid page argument"))
		return
	}
	params := services.ListServicesParams{Page: page, Statuses: query["status"]}
	if raw, present := query["supplier_id"]; present {
		supplierID, err := strconv.ParseInt(strings.TrimSpace(firstOf(raw)), 10, 64)
		if err != nil {
			httpapi.WriteServiceError(w, requestID, serrors.Validation("INVALID_SUPPLIER_ID", "Invalid supplier_id: "+firstOf(raw)))
			return
		}
		params.SupplierID = &supplierID
	}

	result, err := c.catalog.List(r.Context(), params)
	if err != nil {
		httpapi.WriteServiceError(w, requestID, err)
		return
	}

	links := map[string]string{}
	if params.SupplierID == nil {
		links = mappers.PaginationLinks(externalURL(r, c.basePath, query), result.Number, result.HasPrev(), result.HasNext())
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, servicesListResponse{
		Services: mappers.ServicesToJSON(result.Items, c.selfURL(r)),
		Links:    links,
	})
}

func (c *ServicesController) Get(w http.ResponseWriter, r *http.Request) {
	requestID := httpapi.EnsureRequestID(r)
	serviceID := mux.Vars(r)["service_id"]

	svc, err := c.catalog.Get(r.Context(), serviceID)
	if err != nil {
		httpapi.WriteServiceError(w, requestID, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, serviceResponse{Services: mappers.ServiceToJSON(svc, c.selfURL(r)(svc.ServiceID))})
}

func (c *ServicesController) Update(w http.ResponseWriter, r *http.Request) {
	requestID := httpapi.EnsureRequestID(r)
	serviceID := mux.Vars(r)["service_id"]

	var req services.ServiceRequest
	if err := httpapi.DecodeJSON(r.Body, &req); err != nil {
		httpapi.WriteServiceError(w, requestID, invalidJSON(err))
		return
	}
	if _, err := c.catalog.Update(r.Context(), serviceID, &req); err != nil {
		httpapi.WriteServiceError(w, requestID, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, messageResponse{Message: "done"})
}

func (c *ServicesController) Import(w http.ResponseWriter, r *http.Request) {
	requestID := httpapi.EnsureRequestID(r)
	serviceID := mux.Vars(r)["service_id"]

	var req services.ServiceRequest
	if err := httpapi.DecodeJSON(r.Body, &req); err != nil {
		httpapi.WriteServiceError(w, requestID, invalidJSON(err))
		return
	}
	svc, err := c.catalog.Import(r.Context(), serviceID, &req)
	if err != nil {
		httpapi.WriteServiceError(w, requestID, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, serviceResponse{Services: mappers.ServiceToJSON(svc, c.selfURL(r)(svc.ServiceID))})
}

func (c *ServicesController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	requestID := httpapi.EnsureRequestID(r)
	vars := mux.Vars(r)

	var req services.ServiceRequest
	if err := httpapi.DecodeJSON(r.Body, &req); err != nil {
		httpapi.WriteServiceError(w, requestID, invalidJSON(err))
		return
	}
	svc, err := c.catalog.UpdateStatus(r.Context(), vars["service_id"], vars["status"], req.UpdateDetails)
	if err != nil {
		httpapi.WriteServiceError(w, requestID, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, serviceResponse{Services: mappers.ServiceToJSON(svc, c.selfURL(r)(svc.ServiceID))})
}

func firstOf(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
