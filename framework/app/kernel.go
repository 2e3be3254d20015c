package app

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ty-larkin/illumine/framework/bus"
	"github.com/ty-larkin/illumine/framework/config"
	"github.com/ty-larkin/illumine/framework/container"
	ghttp "github.com/ty-larkin/illumine/framework/http"
	"github.com/ty-larkin/illumine/framework/logging"
	"github.com/ty-larkin/illumine/framework/providers"
	"github.com/ty-larkin/illumine/framework/routing"
)

// Application is the top-level application container.
// It embeds the IoC Container and ProviderRegistry so user code can
// call app.Bind(), app.Singleton(), app.Register() directly —
// exactly like $app in Laravel's bootstrap/app.php.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry
}

// New creates and bootstraps the application.
func New(envFiles ...string) *Application {
	c := container.New()
	registry := container.NewProviderRegistry(c)

	app := &Application{
		Container: c,
		Providers: registry,
	}

	// Register framework core providers (same order as Laravel)
	registry.Register(&providers.ConfigServiceProvider{EnvFiles: envFiles})
	registry.Register(&providers.LogServiceProvider{})
	registry.Register(&providers.RoutingServiceProvider{})
	registry.Register(&providers.ViewServiceProvider{})
	registry.Register(&providers.BusServiceProvider{})

	return app
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) {
	a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all providers and points the container's
// debug tracing at the application logger.
func (a *Application) Boot() {
	a.Providers.Boot()
	a.Container.SetLogger(logging.Channel(a.Log(), "container"))
}

// Config resolves *config.Config from the container.
func (a *Application) Config() *config.Config {
	return container.Resolve[*config.Config](a.Container, "config")
}

// Log resolves the application *logrus.Logger from the container.
func (a *Application) Log() *logrus.Logger {
	return container.Resolve[*logrus.Logger](a.Container, "log")
}

// Router resolves *routing.Router from the container.
func (a *Application) Router() *routing.Router {
	return container.Resolve[*routing.Router](a.Container, "router")
}

// Views resolves *ghttp.ViewEngine from the container.
func (a *Application) Views() *ghttp.ViewEngine {
	return container.Resolve[*ghttp.ViewEngine](a.Container, "view")
}

// Bus resolves the command bus from the container.
func (a *Application) Bus() *bus.Bus {
	return container.Resolve[*bus.Bus](a.Container, "bus")
}

// Run boots the application (if needed) and starts the HTTP server.
func (a *Application) Run() {
	if !a.Providers.Booted() {
		a.Boot()
	}
	cfg := a.Config()
	router := a.Router()
	addr := ":" + cfg.App.Port
	fmt.Printf("🚀  %s running on http://localhost%s  [%s]\n",
		cfg.App.Name, addr, cfg.App.Env)
	if err := http.ListenAndServe(addr, router); err != nil {
		a.Log().WithError(err).Fatal("server error")
	}
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.Config().App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.Config().App.Debug }
func (a *Application) Version() string     { return "0.1.0" }

// Controller is an embeddable base for HTTP controllers.
type Controller struct{}

func (c *Controller) Request(r *http.Request) *ghttp.Request {
	return ghttp.NewRequest(r)
}
func (c *Controller) Response(w http.ResponseWriter) *ghttp.Response {
	return ghttp.NewResponse(w)
}
