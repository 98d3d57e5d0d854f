package main

import (
	"errors"
	"testing"

	"github.com/roblaszczak/go-cleanarch/cleanarch"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_DefaultsRoot(t *testing.T) {
	cfg, err := parseConfig([]byte("version: 1\nshared_modules: [catalog]\n"))
	require.NoError(t, err)
	require.Equal(t, ".", cfg.Root)
	require.Equal(t, []string{"catalog"}, cfg.SharedModules)
}

func TestLayerAliases(t *testing.T) {
	aliases := layerAliases(&config{})
	require.Equal(t, cleanarch.LayerDomain, aliases["domain"])
	require.Equal(t, cleanarch.LayerApplication, aliases["services"])
	require.Equal(t, cleanarch.LayerInterfaces, aliases["presentation"])
	require.Equal(t, cleanarch.LayerInfrastructure, aliases["infrastructure"])

	cfg := &config{}
	cfg.Aliases.Application = []string{"usecases"}
	aliases = layerAliases(cfg)
	require.Equal(t, cleanarch.LayerApplication, aliases["usecases"])
	_, ok := aliases["services"]
	require.False(t, ok)
}

func TestIsSharedImport(t *testing.T) {
	shared := map[string]struct{}{"catalog": {}}
	require.True(t, isSharedImport("cannot import between users and catalog modules", shared))
	require.False(t, isSharedImport("cannot import between users and billing modules", shared))
	require.False(t, isSharedImport("domain cannot import infrastructure", shared))
}

func TestFilterValidationErrors(t *testing.T) {
	errs := []cleanarch.ValidationError{
		cleanarch.ValidationError(errors.New("between users and catalog modules")),
		cleanarch.ValidationError(errors.New("known exception in seed")),
		cleanarch.ValidationError(errors.New("domain imports infrastructure")),
	}
	cfg := &config{SharedModules: []string{"catalog"}, AllowedViolations: []string{"known exception"}}
	filtered := filterValidationErrors(errs, cfg)
	require.Len(t, filtered, 1)
	require.Equal(t, "domain imports infrastructure", filtered[0].Error())
}
