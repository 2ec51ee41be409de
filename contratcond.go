// Package contratcond wires the contract form controller with its lookup
// client, preview renderer, PDF exporter, endpoint catalog and preferences.
package contratcond

import (
	"context"
	"errors"
	"net/http"

	"github.com/edesteves10/contrat-cond/internal/config"
	"github.com/edesteves10/contrat-cond/internal/logging"
	"github.com/edesteves10/contrat-cond/internal/prompt"
	"github.com/edesteves10/contrat-cond/internal/server"
	"github.com/edesteves10/contrat-cond/pkg/export"
	"github.com/edesteves10/contrat-cond/pkg/form"
	"github.com/edesteves10/contrat-cond/pkg/lookup"
	"github.com/edesteves10/contrat-cond/pkg/prefs"
)

// App holds a configured controller.
type App struct {
	config     config.Config
	logger     logging.Logger
	client     *lookup.Client
	controller *form.Controller
}

// New loads the configuration at configPath (defaults when empty) and builds
// the controller. Extra options are applied after the configured ones.
func New(ctx context.Context, configPath string, extra ...form.Option) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return NewFromConfig(ctx, cfg, extra...)
}

// NewFromConfig builds the controller from an already loaded configuration.
func NewFromConfig(ctx context.Context, cfg config.Config, extra ...form.Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := logging.New(logging.ParseLevel(cfg.Log.Level))

	client := lookup.NewClient(
		lookup.WithCNPJURL(cfg.Lookup.CNPJURL),
		lookup.WithCEPURL(cfg.Lookup.CEPURL),
		lookup.WithTimeout(cfg.Lookup.Timeout),
		lookup.WithCacheSize(cfg.Lookup.CacheSize),
		lookup.WithLogger(logger),
	)
	exporter, err := export.NewPDF(export.WithOptions(cfg.Export), export.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	options := []form.Option{
		form.WithLookupClient(client),
		form.WithDelay(cfg.Lookup.Delay),
		form.WithExporter(exporter),
		form.WithPreferences(prefs.NewStore(cfg.Prefs.Path)),
		form.WithLogger(logger),
	}
	ctl, err := form.NewController(ctx, append(options, extra...)...)
	if err != nil {
		return nil, err
	}
	return &App{config: cfg, logger: logger, client: client, controller: ctl}, nil
}

// Config returns the effective configuration.
func (a *App) Config() config.Config { return a.config }

// Controller returns the form controller.
func (a *App) Controller() *form.Controller { return a.controller }

// Logger returns the application logger.
func (a *App) Logger() logging.Logger { return a.logger }

// Handler returns the HTTP surface bound to the controller.
func (a *App) Handler() http.Handler {
	return server.New(a.controller,
		server.WithLookupClient(a.client),
		server.WithLogger(a.logger),
	).Handler()
}

// Session returns a prompt session bound to the controller.
func (a *App) Session(driver prompt.Driver, options ...prompt.SessionOption) *prompt.Session {
	return prompt.NewSession(driver, a.controller, options...)
}

// Close stops pending lookups.
func (a *App) Close() error {
	if a == nil || a.controller == nil {
		return errors.New("contratcond: app not initialised")
	}
	return a.controller.Close()
}
