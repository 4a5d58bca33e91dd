package app

import (
	"github.com/zeitbericht/zeitbericht/internal/config"
	"github.com/zeitbericht/zeitbericht/pkg/auth"
	"github.com/zeitbericht/zeitbericht/pkg/clockify"
	"github.com/zeitbericht/zeitbericht/pkg/render"
	"github.com/zeitbericht/zeitbericht/pkg/wizard"
)

// Dependencies holds all stores and handlers for the application.
type Dependencies struct {
	AuthStore     *auth.Store
	SessionStore  *wizard.Store
	WizardHandler *wizard.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	authStore, err := auth.LoadStore(cfg.Auth.UsersFile)
	if err != nil {
		return nil, err
	}
	deps.AuthStore = authStore
	deps.SessionStore = wizard.NewStore()

	opts := render.Options{
		CompanyName: cfg.Company.Name,
		LogoPath:    cfg.Company.LogoPath,
		Language:    cfg.Language,
	}
	// Per-user credentials win over the shared workspace defaults.
	factory := func(creds auth.Credentials) clockify.API {
		if creds.BaseURL == "" {
			creds.BaseURL = cfg.Clockify.BaseURL
		}
		return clockify.NewHTTPClient(creds.BaseURL, creds.APIKey, creds.WorkspaceID)
	}
	deps.WizardHandler = wizard.NewHandler(deps.SessionStore, deps.AuthStore, factory, opts)

	return deps, nil
}
