package application

import (
	"context"
	"errors"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

type stubController struct {
	key string
}

func (c *stubController) Key() string          { return c.key }
func (c *stubController) Register(*mux.Router) {}

type stubService struct{}

func TestApplication_ControllersKeepRegistrationOrder(t *testing.T) {
	app := New(&ApplicationOptions{})
	app.RegisterControllers(&stubController{key: "/b"}, &stubController{key: "/a"}, &stubController{key: "/b"})

	controllers := app.Controllers()
	require.Len(t, controllers, 2)
	require.Equal(t, "/b", controllers[0].Key())
	require.Equal(t, "/a", controllers[1].Key())
}

func TestApplication_ServiceRegistry(t *testing.T) {
	app := New(&ApplicationOptions{})
	svc := &stubService{}
	app.RegisterServices(svc)

	require.Same(t, svc, app.Service(stubService{}).(*stubService))
	require.Panics(t, func() { app.Service(struct{ X int }{}) })
}

func TestSeeder_StopsOnFirstError(t *testing.T) {
	app := New(&ApplicationOptions{})
	boom := errors.New("boom")
	calls := 0

	app.Seeder().Register(
		func(context.Context, Application) error { calls++; return boom },
		func(context.Context, Application) error { calls++; return nil },
	)
	require.ErrorIs(t, app.Seeder().Seed(context.Background(), app), boom)
	require.Equal(t, 1, calls)
}

func TestApplication_DefaultsToNopMigrations(t *testing.T) {
	app := New(&ApplicationOptions{})
	require.NoError(t, app.Migrations().Run(context.Background()))
}
