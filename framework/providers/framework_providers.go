package providers

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ty-larkin/illumine/framework/bus"
	"github.com/ty-larkin/illumine/framework/config"
	"github.com/ty-larkin/illumine/framework/container"
	ghttp "github.com/ty-larkin/illumine/framework/http"
	"github.com/ty-larkin/illumine/framework/logging"
	"github.com/ty-larkin/illumine/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads the application configuration from .env and
// binds it into the container as "config".
//
// Bound abstracts:
//   - "config"         → *config.Config
//   - "configuration"  → alias of "config"
//
// Laravel equivalent:
//
//	// Illuminate\Foundation\Bootstrap\LoadConfiguration
//	$app->singleton('config', fn() => new Repository($items));
type ConfigServiceProvider struct {
	container.BaseProvider
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *container.Container) {
	envFiles := p.EnvFiles
	app.Singleton("config", func(c *container.Container) (any, error) {
		return config.Load(envFiles...), nil
	})
	app.Alias("config", "configuration")
}

// ── LogServiceProvider ────────────────────────────────────────────────────────

// LogServiceProvider builds the application logger from the "config"
// binding's Log section.
//
// Bound abstracts:
//   - "log"     → *logrus.Logger
//   - "logger"  → alias of "log"
//
// Laravel equivalent:
//
//	// Illuminate\Log\LogServiceProvider
//	$app->singleton('log', fn($app) => new LogManager($app));
type LogServiceProvider struct {
	container.BaseProvider
}

func (p *LogServiceProvider) Register(app *container.Container) {
	app.Singleton("log", func(c *container.Container) (any, error) {
		cfg, err := makeConfig(c)
		if err != nil {
			return nil, err
		}
		return logging.New(logging.Options{
			Level:   cfg.Log.Level,
			Channel: cfg.Log.Channel,
			JSON:    cfg.Log.JSON,
		}), nil
	})
	app.Alias("log", "logger")
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router. The router is bound to
// the application container so Action routes can dispatch through it.
//
// Bound abstracts:
//   - "router"  → *routing.Router
//
// Laravel equivalent:
//
//	// Illuminate\Routing\RoutingServiceProvider
//	$app->singleton('router', fn($app) => new Router($app['events'], $app));
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) {
	app.Singleton("router", func(c *container.Container) (any, error) {
		return routing.NewWithContainer(app), nil
	})
}

// ── ViewServiceProvider ───────────────────────────────────────────────────────

// ViewServiceProvider registers the template engine.
//
// Bound abstracts:
//   - "view"  → *ghttp.ViewEngine
//
// Laravel equivalent:
//
//	// Illuminate\View\ViewServiceProvider
//	$app->singleton('view', fn($app) => new Factory(...));
type ViewServiceProvider struct {
	container.BaseProvider
	Dir string // template directory, default: "./views"
	Ext string // file extension,    default: ".html"
}

func (p *ViewServiceProvider) Register(app *container.Container) {
	dir := p.Dir
	if dir == "" {
		dir = "./views"
	}
	ext := p.Ext
	if ext == "" {
		ext = ".html"
	}

	app.Singleton("view", func(c *container.Container) (any, error) {
		return ghttp.NewViewEngine(dir, ext), nil
	})
}

// ── BusServiceProvider ────────────────────────────────────────────────────────

// BusServiceProvider registers the command bus, wired to dispatch jobs
// through the application container and trace them on the "bus" channel of
// the application logger.
//
// Bound abstracts:
//   - "bus"  → *bus.Bus
//
// Laravel equivalent:
//
//	// Illuminate\Bus\BusServiceProvider
//	$app->singleton(Dispatcher::class, fn($app) => new Dispatcher($app, ...));
type BusServiceProvider struct {
	container.BaseProvider
}

func (p *BusServiceProvider) Register(app *container.Container) {
	app.Singleton("bus", func(c *container.Container) (any, error) {
		log, err := c.Make("log")
		if err != nil {
			return nil, err
		}
		appLog, ok := log.(*logrus.Logger)
		if !ok {
			return bus.New(app), nil
		}
		return bus.New(app, bus.WithLogger(logging.Channel(appLog, "bus"))), nil
	})
}

// makeConfig resolves the typed configuration from c.
func makeConfig(c *container.Container) (*config.Config, error) {
	v, err := c.Make("config")
	if err != nil {
		return nil, err
	}
	cfg, ok := v.(*config.Config)
	if !ok {
		return nil, &container.Error{
			Code:    container.ErrCodeFactoryFailed,
			Message: fmt.Sprintf("binding [config] resolved to %T, want *config.Config", v),
			Key:     "config",
		}
	}
	return cfg, nil
}
