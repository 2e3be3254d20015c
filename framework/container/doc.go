// Package container provides a Laravel-compatible IoC (Inversion of Control)
// container, method invocation with dependency resolution, and a Service
// Provider system for Go.
//
// # Overview
//
// The container manages the instantiation and lifecycle of your application's
// dependencies. It supports transient bindings, singletons, pre-built
// instances, aliases, tags, contextual bindings, extension (decoration),
// request-scoped forks, and container-assisted method calls.
//
// It mirrors the public API of Laravel's Illuminate\Container\Container as
// closely as Go's type system allows. Because Go has no runtime constructor
// reflection, auto-wiring is replaced by explicit factory functions, and
// because Go reflection exposes no parameter names or defaults, Call relies
// on declared signatures for those.
//
// # Container Lifecycle
//
//  1. Create: c := container.New()
//  2. Register providers: registry.Register(&MyProvider{})
//  3. Boot: registry.Boot()        — safe to resolve everything after this
//  4. Serve requests (fork per request if you need request-local state)
//
// # Bindings
//
//	// Transient — new instance every Make()
//	// Laravel: $app->bind(Foo::class, fn($app) => new Foo)
//	c.Bind("Foo", func(c *container.Container) (any, error) { return &Foo{}, nil })
//
//	// Singleton — created once, reused
//	// Laravel: $app->singleton(Cache::class, fn($app) => new RedisCache)
//	c.Singleton("cache", func(c *container.Container) (any, error) {
//	    cfg := container.Resolve[*Config](c, "config")
//	    return cache.New(cfg), nil
//	})
//
//	// Pre-built value
//	// Laravel: $app->instance(Config::class, $config)
//	c.Instance("config", myConfig)
//
//	// Alias
//	// Laravel: $app->alias(Cache::class, 'cache')
//	c.Alias("cache", "cacheManager")
//
// # Resolving
//
//	// Untyped
//	// Laravel: $app->make(Cache::class)
//	raw, err := c.Make("cache")
//
//	// Generic (preferred — no type assertion required)
//	cache := container.Resolve[*RedisCache](c, "cache")
//	cache, ok := container.TryResolve[*RedisCache](c, "cache")
//
// Auto-injection in Call resolves dependencies by their type key, so bind
// services you want injected under container.TypeKey:
//
//	c.Singleton(container.TypeKey((*Mailer)(nil)), mailerFactory)
//
// # Calling Methods
//
//	// Laravel: $app->call('UserController@show', ['id' => 1])
//	result, err := c.Call("UserController@Show", map[string]any{"id": "1"})
//
//	// Function targets and receiver/method pairs work too:
//	c.Call(func(m *Mailer) { ... }, nil)             // *Mailer injected
//	c.Call([]any{ctrl, "Show"}, []any{"1"})          // positional bag
//
// Parameter names and defaults are declared, not reflected:
//
//	c.DefineSignature("UserController@Show", container.Param{Name: "id"})
//	c.Call(container.Describe(fn, container.Optional("limit", 10)), nil)
//
// Method bindings override an invocation wholesale:
//
//	// Laravel: $app->bindMethod([SendEmail::class, 'handle'], fn($job) => ...)
//	c.BindMethod(container.MethodKey(&SendEmail{}, "Handle"), override)
//
// # Contextual Binding
//
//	// Laravel: $app->when(PhotoController::class)
//	//              ->needs(Filesystem::class)
//	//              ->give(fn() => new S3Filesystem)
//	c.When("PhotoController").
//	    Needs("Filesystem").
//	    Give(func(c *container.Container) (any, error) { return &S3Filesystem{}, nil })
//
// When takes extra consumers for shared overrides; GiveValue and GiveTagged
// cover constant and tag-group overrides.
//
// # Tags
//
//	// Laravel: $app->tag([CpuReport::class, MemReport::class], 'reports')
//	c.Tag([]string{"CpuReport", "MemReport"}, "reports")
//	reports, err := c.Tagged("reports")  // []any
//
// # Extend / Decorate
//
//	// Laravel: $app->extend(Logger::class, fn($logger, $app) => new TimestampLogger($logger))
//	c.Extend("logger", func(instance any, c *container.Container) any {
//	    return &TimestampLogger{Inner: instance.(*Logger)}
//	})
//
// # Forks (request scopes)
//
//	scope := app.Fork()
//	scope.Instance(container.TypeKey(req), req)
//	scope.Call("users@Show", map[string]any{"id": id})
//
// Registrations on the fork shadow the parent and are dropped with it;
// everything else reads through.
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) {
//	    app.Singleton("mailer", func(c *container.Container) (any, error) {
//	        cfg := container.Resolve[*config.Config](c, "config")
//	        return mail.NewSMTP(cfg.Mail), nil
//	    })
//	}
//
//	func (p *AppServiceProvider) Boot(app *container.Container) {
//	    // safe to resolve other bindings here
//	}
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	registry.Boot()
//
// # Deferred Providers
//
//	type HeavyProvider struct{ container.BaseProvider }
//
//	func (p *HeavyProvider) IsDeferred() bool     { return true }
//	func (p *HeavyProvider) Provides() []string   { return []string{"heavy"} }
//	func (p *HeavyProvider) Register(app *container.Container) {
//	    app.Singleton("heavy", func(c *container.Container) (any, error) {
//	        return heavySetup() // only called on first app.Make("heavy")
//	    })
//	}
//
// # Errors
//
// Failures carry an ErrorCode: BINDING_NOT_FOUND, FACTORY_FAILED,
// CIRCULAR_DEPENDENCY for resolution; INVALID_TARGET, UNINTROSPECTABLE,
// INVOCATION_FAILED for Call. Use the Is* predicates or errors.Is with an
// &Error{Code: ...} target.
package container
