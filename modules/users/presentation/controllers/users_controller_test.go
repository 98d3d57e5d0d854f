package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	catalogtesthelpers "github.com/iota-uz/catalog-api/modules/catalog/testhelpers"
	"github.com/iota-uz/catalog-api/modules/users/services"
	"github.com/iota-uz/catalog-api/modules/users/testhelpers"
	"github.com/iota-uz/catalog-api/pkg/application"
	"github.com/iota-uz/catalog-api/pkg/composables"
	"github.com/iota-uz/catalog-api/pkg/constants"
	"github.com/iota-uz/catalog-api/pkg/httpapi"
)

func newRouter(t *testing.T) *mux.Router {
	t.Helper()
	store := catalogtesthelpers.NewStore()
	store.AddSupplier(585274, "Supplier Ltd")

	app := application.New(&application.ApplicationOptions{})
	app.RegisterServices(services.NewUserService(
		testhelpers.NewUserRepository(),
		catalogtesthelpers.NewSupplierRepository(store),
		bcrypt.MinCost,
		0,
	))

	router := mux.NewRouter()
	router.NotFoundHandler = httpapi.NotFound()
	pool := store.Pool()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := composables.WithPool(r.Context(), pool)
			ctx = context.WithValue(ctx, constants.RequestID, "req-1")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	NewUsersController(app).Register(router)
	return router
}

func do(t *testing.T, router *mux.Router, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	var out map[string]any
	if rr.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	}
	return rr, out
}

const joeBlogs = `{"users": {"emailAddress": "JoeBlogs@email.com", "password": "1234567890", "role": "buyer", "name": "joe bloggs"}}`

func TestUsers_CreateAndFetch(t *testing.T) {
	router := newRouter(t)

	rr, body := do(t, router, http.MethodPost, "/users", joeBlogs)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	created := body["users"].(map[string]any)
	require.Equal(t, "joeblogs@email.com", created["emailAddress"])
	require.Equal(t, "buyer", created["role"])
	require.Equal(t, true, created["active"])
	require.NotContains(t, created, "password")
	id := int64(created["id"].(float64))
	require.NotZero(t, id)

	rr, body = do(t, router, http.MethodGet, "/users/1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "joe bloggs", body["users"].(map[string]any)["name"])

	rr, _ = do(t, router, http.MethodGet, "/users/2", "")
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr, _ = do(t, router, http.MethodGet, "/users/abc", "")
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr, body = do(t, router, http.MethodGet, "/users?email=JOEBLOGS@email.com", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "joeblogs@email.com", body["users"].(map[string]any)["emailAddress"])

	rr, body = do(t, router, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "'email' is a required parameter", body["message"])

	rr, _ = do(t, router, http.MethodPost, "/users", joeBlogs)
	require.Equal(t, http.StatusConflict, rr.Code)
}

func TestUsers_CreateRejections(t *testing.T) {
	router := newRouter(t)
	cases := map[string]struct {
		body    string
		message string
	}{
		"missing envelope": {`{"emailAddress": "a@b.com"}`, "JSON was not a valid format"},
		"empty password":   {`{"users": {"emailAddress": "a@b.com", "password": "", "role": "buyer", "name": "a"}}`, "JSON was not a valid format"},
		"invalid role":     {`{"users": {"emailAddress": "a@b.com", "password": "p", "role": "invalid", "name": "a"}}`, "JSON was not a valid format"},
		"no supplier id":   {`{"users": {"emailAddress": "a@b.com", "password": "p", "role": "supplier", "name": "a"}}`, "No supplier id provided for supplier user"},
		"bad supplier id":  {`{"users": {"emailAddress": "a@b.com", "password": "p", "role": "supplier", "name": "a", "supplierId": 1}}`, "Invalid supplier id"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rr, body := do(t, router, http.MethodPost, "/users", tc.body)
			require.Equal(t, http.StatusBadRequest, rr.Code)
			require.Equal(t, tc.message, body["message"])
		})
	}
}

func TestUsers_SupplierSerialization(t *testing.T) {
	router := newRouter(t)
	rr, body := do(t, router, http.MethodPost, "/users",
		`{"users": {"emailAddress": "s@b.com", "password": "p", "role": "supplier", "name": "s", "supplierId": 585274}}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	supplier := body["users"].(map[string]any)["supplier"].(map[string]any)
	require.Equal(t, float64(585274), supplier["supplierId"])
	require.Equal(t, "Supplier Ltd", supplier["name"])
}

func TestUsers_Authenticate(t *testing.T) {
	router := newRouter(t)
	rr, _ := do(t, router, http.MethodPost, "/users", joeBlogs)
	require.Equal(t, http.StatusOK, rr.Code)

	rr, body := do(t, router, http.MethodPost, "/users/auth",
		`{"authUsers": {"emailAddress": "joeblogs@email.com", "password": "1234567890"}}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "joeblogs@email.com", body["users"].(map[string]any)["emailAddress"])

	rr, body = do(t, router, http.MethodPost, "/users/auth",
		`{"authUsers": {"emailAddress": "joeblogs@email.com", "password": "wrong"}}`)
	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Equal(t, map[string]any{"authorization": false}, body)

	rr, body = do(t, router, http.MethodPost, "/users/auth",
		`{"authUsers": {"emailAddress": "nobody@email.com", "password": "x"}}`)
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, map[string]any{"authorization": false}, body)

	rr, _ = do(t, router, http.MethodPost, "/users/auth", `{"users": {}}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUsers_Update(t *testing.T) {
	router := newRouter(t)
	rr, _ := do(t, router, http.MethodPost, "/users", joeBlogs)
	require.Equal(t, http.StatusOK, rr.Code)

	rr, body := do(t, router, http.MethodPost, "/users/1", `{"users": {"active": false, "locked": true, "name": "Joe"}}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := body["users"].(map[string]any)
	require.Equal(t, false, updated["active"])
	require.Equal(t, true, updated["locked"])
	require.Equal(t, "Joe", updated["name"])

	rr, body = do(t, router, http.MethodPost, "/users/1", `{"users": {"role": "invalid"}}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, body["message"], "Could not update user")

	rr, _ = do(t, router, http.MethodPost, "/users/1", `{"users": {"password": "newpass"}}`)
	require.Equal(t, http.StatusOK, rr.Code)
	rr, _ = do(t, router, http.MethodPost, "/users/auth",
		`{"authUsers": {"emailAddress": "joeblogs@email.com", "password": "newpass"}}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr, _ = do(t, router, http.MethodPost, "/users/99", `{"users": {"name": "x"}}`)
	require.Equal(t, http.StatusNotFound, rr.Code)
}
