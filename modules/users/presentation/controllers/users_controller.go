package controllers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/iota-uz/catalog-api/modules/users/domain/aggregates/user"
	"github.com/iota-uz/catalog-api/modules/users/presentation/mappers"
	"github.com/iota-uz/catalog-api/modules/users/services"
	"github.com/iota-uz/catalog-api/pkg/application"
	"github.com/iota-uz/catalog-api/pkg/httpapi"
	"github.com/iota-uz/catalog-api/pkg/serrors"
)

type UsersController struct {
	app      application.Application
	users    *services.UserService
	basePath string
}

func NewUsersController(app application.Application) application.Controller {
	return &UsersController{
		app:      app,
		users:    app.Service(services.UserService{}).(*services.UserService),
		basePath: "/users",
	}
}

func (c *UsersController) Key() string {
	return c.basePath
}

func (c *UsersController) Register(r *mux.Router) {
	r.HandleFunc(c.basePath, c.Create).Methods(http.MethodPost)
	r.HandleFunc(c.basePath, c.GetByEmail).Methods(http.MethodGet)
	r.HandleFunc(c.basePath+"/auth", c.Authenticate).Methods(http.MethodPost)
	r.HandleFunc(c.basePath+"/{id:[0-9]+}", c.Get).Methods(http.MethodGet)
	r.HandleFunc(c.basePath+"/{id:[0-9]+}", c.Update).Methods(http.MethodPost)
}

type usersResponse struct {
	Users mappers.UserJSON `json:"users"`
}

type createRequest struct {
	Users *services.CreateUserDTO `json:"users"`
}

type updateRequest struct {
	Users *services.UpdateUserDTO `json:"users"`
}

type authRequest struct {
	AuthUsers *services.AuthUserDTO `json:"authUsers"`
}

type authorizationResponse struct {
	Authorization bool `json:"authorization"`
}

var errInvalidFormat = serrors.Validation("USER_INVALID_JSON", "JSON was not a valid format")

func (c *UsersController) Create(w http.ResponseWriter, r *http.Request) {
	requestID := httpapi.EnsureRequestID(r)
	var req createRequest
	if err := httpapi.DecodeJSON(r.Body, &req); err != nil || req.Users == nil {
		httpapi.WriteServiceError(w, requestID, errInvalidFormat)
		return
	}
	u, err := c.users.Create(r.Context(), req.Users)
	if err != nil {
		httpapi.WriteServiceError(w, requestID, err)
		return
	}
	c.writeUser(w, u)
}

func (c *UsersController) Authenticate(w http.ResponseWriter, r *http.Request) {
	requestID := httpapi.EnsureRequestID(r)
	var req authRequest
	if err := httpapi.DecodeJSON(r.Body, &req); err != nil || req.AuthUsers == nil {
		httpapi.WriteServiceError(w, requestID, errInvalidFormat)
		return
	}
	u, err := c.users.Authenticate(r.Context(), req.AuthUsers)
	if err != nil {
		if svcErr, ok := serrors.As(err); ok &&
			(svcErr.Kind == serrors.KindNotFound || svcErr.Kind == serrors.KindForbidden) {
			_ = httpapi.WriteJSON(w, svcErr.Status, authorizationResponse{Authorization: false})
			return
		}
		httpapi.WriteServiceError(w, requestID, err)
		return
	}
	c.writeUser(w, u)
}

func (c *UsersController) Update(w http.ResponseWriter, r *http.Request) {
	requestID := httpapi.EnsureRequestID(r)
	id, ok := c.userID(w, r, requestID)
	if !ok {
		return
	}
	var req updateRequest
	if err := httpapi.DecodeJSON(r.Body, &req); err != nil || req.Users == nil {
		httpapi.WriteServiceError(w, requestID, errInvalidFormat)
		return
	}
	u, err := c.users.Update(r.Context(), id, req.Users)
	if err != nil {
		httpapi.WriteServiceError(w, requestID, err)
		return
	}
	c.writeUser(w, u)
}

func (c *UsersController) Get(w http.ResponseWriter, r *http.Request) {
	requestID := httpapi.EnsureRequestID(r)
	id, ok := c.userID(w, r, requestID)
	if !ok {
		return
	}
	u, err := c.users.GetByID(r.Context(), id)
	if err != nil {
		httpapi.WriteServiceError(w, requestID, err)
		return
	}
	c.writeUser(w, u)
}

func (c *UsersController) GetByEmail(w http.ResponseWriter, r *http.Request) {
	requestID := httpapi.EnsureRequestID(r)
	u, err := c.users.GetByEmail(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		httpapi.WriteServiceError(w, requestID, err)
		return
	}
	c.writeUser(w, u)
}

func (c *UsersController) userID(w http.ResponseWriter, r *http.Request, requestID string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		httpapi.WriteServiceError(w, requestID, serrors.NotFound("USER_NOT_FOUND", "user not found"))
		return 0, false
	}
	return id, true
}

func (c *UsersController) writeUser(w http.ResponseWriter, u *user.User) {
	_ = httpapi.WriteJSON(w, http.StatusOK, usersResponse{Users: mappers.UserToJSON(u)})
}
