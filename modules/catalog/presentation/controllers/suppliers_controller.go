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

type SuppliersController struct {
	app       application.Application
	suppliers *services.SupplierService
	basePath  string
}

func NewSuppliersController(app application.Application) application.Controller {
	return &SuppliersController{
		app:       app,
		suppliers: app.Service(services.SupplierService{}).(*services.SupplierService),
		basePath:  "/suppliers",
	}
}

func (c *SuppliersController) Key() string {
	return c.basePath
}

func (c *SuppliersController) Register(r *mux.Router) {
	r.HandleFunc(c.basePath, c.List).Methods(http.MethodGet)
	r.HandleFunc(c.basePath+"/{supplier_id}", c.Get).Methods(http.MethodGet)
}

func (c *SuppliersController) selfURL(r *http.Request, supplierID int64) string {
	return externalURL(r, c.basePath+"/"+strconv.FormatInt(supplierID, 10), nil).String()
}

type suppliersListResponse struct {
	Suppliers []mappers.SupplierJSON `json:"suppliers"`
	Links     map[string]string      `json:"links"`
}

type supplierResponse struct {
	Suppliers mappers.SupplierJSON `json:"suppliers"`
}

func (c *SuppliersController) List(w http.ResponseWriter, r *http.Request) {
	requestID := httpapi.EnsureRequestID(r)
	query := r.URL.Query()

	page, ok := composables.UsePage(r)
	if !ok {
		httpapi.WriteServiceError(w, requestID, serrors.Validation("INVALID_PAGE", "Invalid page argument"))
		return
	}
	result, err := c.suppliers.List(r.Context(), query.Get("prefix"), page)
	if err != nil {
		httpapi.WriteServiceError(w, requestID, err)
		return
	}

	items := make([]mappers.SupplierJSON, 0, len(result.Items))
	for _, sp := range result.Items {
		items = append(items, mappers.SupplierToJSON(sp, c.selfURL(r, sp.SupplierID)))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, suppliersListResponse{
		Suppliers: items,
		Links:     mappers.PaginationLinks(externalURL(r, c.basePath, query), result.Number, result.HasPrev(), result.HasNext()),
	})
}

func (c *SuppliersController) Get(w http.ResponseWriter, r *http.Request) {
	requestID := httpapi.EnsureRequestID(r)
	raw := mux.Vars(r)["supplier_id"]
	supplierID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		httpapi.WriteServiceError(w, requestID, serrors.Validation("INVALID_SUPPLIER_ID", "Invalid supplier_id: "+raw))
		return
	}

	sp, err := c.suppliers.Get(r.Context(), supplierID)
	if err != nil {
		httpapi.WriteServiceError(w, requestID, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, supplierResponse{Suppliers: mappers.SupplierToJSON(sp, c.selfURL(r, sp.SupplierID))})
}
