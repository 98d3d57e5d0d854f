package controllers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/iota-uz/catalog-api/modules/catalog/presentation/mappers"
	"github.com/iota-uz/catalog-api/modules/catalog/services"
	"github.com/iota-uz/catalog-api/pkg/application"
	"github.com/iota-uz/catalog-api/pkg/composables"
	"github.com/iota-uz/catalog-api/pkg/httpapi"
	"github.com/iota-uz/catalog-api/pkg/serrors"
)

type ArchivedServicesController struct {
	app      application.Application
	catalog  *services.CatalogService
	basePath string
}

func NewArchivedServicesController(app application.Application) application.Controller {
	return &ArchivedServicesController{
		app:      app,
		catalog:  app.Service(services.CatalogService{}).(*services.CatalogService),
		basePath: "/archived-services",
	}
}

func (c *ArchivedServicesController) Key() string {
	return c.basePath
}

func (c *ArchivedServicesController) Register(r *mux.Router) {
	r.HandleFunc(c.basePath, c.List).Methods(http.MethodGet)
	r.HandleFunc(c.basePath+"/{archived_service_id:[0-9]+}", c.Get).Methods(http.MethodGet)
}

func (c *ArchivedServicesController) selfURL(r *http.Request) func(int64) string {
	return func(id int64) string {
		return externalURL(r, c.basePath+"/"+strconv.FormatInt(id, 10), nil).String()
	}
}

func (c *ArchivedServicesController) List(w http.ResponseWriter, r *http.Request) {
	requestID := httpapi.EnsureRequestID(r)
	query := r.URL.Query()

	page, ok := composables.UsePage(r)
	if !ok {
		httpapi.WriteServiceError(w, requestID, serrors.Validation("INVALID_PAGE", "Invalid page argument"))
		return
	}
	serviceID := query.Get("service-id")
	if _, present := query["service-id"]; !present {
		serviceID = "no service id"
	}

	result, err := c.catalog.ListArchived(r.Context(), serviceID, page)
	if err != nil {
		httpapi.WriteServiceError(w, requestID, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, servicesListResponse{
		Services: mappers.ArchivedServicesToJSON(result.Items, c.selfURL(r)),
		Links:    mappers.PaginationLinks(externalURL(r, c.basePath, query), result.Number, result.HasPrev(), result.HasNext()),
	})
}

func (c *ArchivedServicesController) Get(w http.ResponseWriter, r *http.Request) {
	requestID := httpapi.EnsureRequestID(r)
	id, err := strconv.ParseInt(mux.Vars(r)["archived_service_id"], 10, 64)
	if err != nil {
		httpapi.WriteServiceError(w, requestID, serrors.NotFound("ARCHIVED_SERVICE_NOT_FOUND", "archived service not found"))
		return
	}

	a, err := c.catalog.GetArchived(r.Context(), id)
	if err != nil {
		httpapi.WriteServiceError(w, requestID, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, serviceResponse{Services: mappers.ArchivedServiceToJSON(a, c.selfURL(r)(a.ID))})
}
