package container

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// ── Binding types ─────────────────────────────────────────────────────────────

// Factory is a function that builds a concrete value from the container.
// Returning an error aborts resolution; Make reports it as FACTORY_FAILED.
type Factory func(c *Container) (any, error)

// binding holds a registered factory and whether it is a singleton.
type binding struct {
	factory   Factory
	singleton bool
}

// extender wraps an already-resolved instance with decorator logic.
type extender func(instance any, c *Container) any

// MethodBinding replaces the invocation of a method key registered with
// BindMethod. It receives the container and the resolved receiver and its
// result is returned to the caller in place of the real method's.
type MethodBinding func(c *Container, receiver any) (any, error)

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the IoC container — mirrors Laravel's Illuminate\Container\Container.
//
// It supports:
//   - Bind / Singleton / Instance / Alias
//   - Make / MustMake / Resolve (generic)
//   - Call (method/function invocation with argument resolution)
//   - BindMethod (override a method key) / DefineSignature (parameter metadata)
//   - Tags (group multiple abstractions under one tag)
//   - Extend (decorate / wrap resolved instances)
//   - Contextual binding (when A needs B, give it C)
//   - Fork (request-scoped child containers)
//   - Rebound callbacks
//   - Resolved event callbacks
type Container struct {
	mu sync.RWMutex

	// parent links fork children and resolution frames to their origin.
	parent *Container

	// frame marks an ephemeral resolution frame: it owns no state of its
	// own, it only carries the build stack through nested Make calls.
	frame bool

	// stack of abstracts currently being resolved (frames only).
	stack []string

	log logrus.FieldLogger

	// abstract → binding
	bindings map[string]*binding

	// abstract → resolved singleton instance
	instances map[string]any

	// alias → abstract (canonical key)
	aliases map[string]string

	// abstract → extender funcs
	extenders map[string][]extender

	// tag → []abstract
	tags map[string][]string

	// contextual: when[concrete][abstract] = factory
	contextual map[string]map[string]Factory

	// "abstract@Method" → override
	methodBindings map[string]MethodBinding

	// "abstract@Method" or callable key → declared parameters
	signatures map[string][]Param

	// rebound callbacks: abstract → []func(any)
	reboundCallbacks map[string][]func(any)

	// resolved callbacks: []func(abstract, instance)
	afterResolving []func(string, any)
}

// Option configures a Container at construction time.
type Option func(*Container)

// WithLogger attaches a logger; the container logs resolutions at debug level.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Container) { c.log = log }
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := newEmpty()
	for _, opt := range opts {
		opt(c)
	}
	// Bind the container to itself — like Laravel's $app->instance()
	c.Instance("container", c)
	return c
}

func newEmpty() *Container {
	return &Container{
		bindings:         make(map[string]*binding),
		instances:        make(map[string]any),
		aliases:          make(map[string]string),
		extenders:        make(map[string][]extender),
		tags:             make(map[string][]string),
		contextual:       make(map[string]map[string]Factory),
		methodBindings:   make(map[string]MethodBinding),
		signatures:       make(map[string][]Param),
		reboundCallbacks: make(map[string][]func(any)),
	}
}

// Fork returns a child container that overlays this one. Reads fall through
// to the parent; registrations stay on the child. Used for request scopes:
//
//	scope := app.Fork()
//	scope.Instance(container.TypeKey(req), req)
//	scope.Call("users@Show", bag)
func (c *Container) Fork() *Container {
	child := newEmpty()
	child.parent = c
	child.Instance("container", child)
	return child
}

// SetLogger attaches (or replaces) the container's logger.
func (c *Container) SetLogger(log logrus.FieldLogger) {
	t := c.writeTarget()
	t.mu.Lock()
	t.log = log
	t.mu.Unlock()
}

// ── Registration ──────────────────────────────────────────────────────────────

// Bind registers a transient (new instance each Make) factory.
//
//	// Laravel: $app->bind(UserRepository::class, fn($app) => new EloquentUserRepository($app))
//	c.Bind("UserRepository", func(c *container.Container) (any, error) {
//	    return &EloquentUserRepository{DB: container.Resolve[*sql.DB](c, "db")}, nil
//	})
func (c *Container) Bind(abstract string, factory Factory) {
	c.register(abstract, factory, false)
}

// Singleton registers a factory whose result is cached after first resolution.
//
//	// Laravel: $app->singleton(Cache::class, fn($app) => new RedisCache($app))
//	c.Singleton("cache", func(c *container.Container) (any, error) {
//	    return cache.New(container.Resolve[*config.Config](c, "config")), nil
//	})
func (c *Container) Singleton(abstract string, factory Factory) {
	c.register(abstract, factory, true)
}

// register is the shared Bind/Singleton implementation.
func (c *Container) register(abstract string, factory Factory, singleton bool) {
	t := c.writeTarget()
	key := t.canonical(abstract)

	t.mu.Lock()
	_, hadInstance := t.instances[key]
	_, hadBinding := t.bindings[key]
	// Drop any existing singleton instance so it's rebuilt with the new factory
	delete(t.instances, key)
	t.bindings[key] = &binding{factory: factory, singleton: singleton}
	t.mu.Unlock()

	if hadInstance || hadBinding {
		t.refireRebound(abstract)
	}
}

// Instance registers a pre-built value as a singleton.
//
//	// Laravel: $app->instance(Config::class, $config)
//	c.Instance("config", myConfig)
func (c *Container) Instance(abstract string, instance any) {
	t := c.writeTarget()
	key := t.canonical(abstract)

	t.mu.Lock()
	delete(t.bindings, key)
	t.instances[key] = instance
	t.mu.Unlock()

	t.fireRebound(abstract, instance)
}

// Alias registers an alternative name for an abstract.
//
//	// Laravel: $app->alias(Cache::class, 'cache')
//	c.Alias("cache", "cacheManager")
func (c *Container) Alias(abstract, alias string) {
	t := c.writeTarget()
	if abstract == alias {
		panic(fmt.Sprintf("container: [%s] is aliased to itself", abstract))
	}
	canonical := t.canonical(abstract)
	t.mu.Lock()
	t.aliases[alias] = canonical
	t.mu.Unlock()
}

// ── Method bindings & signatures ──────────────────────────────────────────────

// BindMethod registers an override for a method key. When Call normalizes a
// target to this key, the override runs instead of the method itself.
//
//	// Laravel: $app->bindMethod([SendEmail::class, 'handle'], fn($job, $app) => $job->dryRun())
//	c.BindMethod(container.MethodKey(&SendEmail{}, "Handle"),
//	    func(c *container.Container, receiver any) (any, error) {
//	        return receiver.(*SendEmail).DryRun(), nil
//	    })
func (c *Container) BindMethod(key string, fn MethodBinding) {
	t := c.writeTarget()
	t.mu.Lock()
	t.methodBindings[key] = fn
	t.mu.Unlock()
	t.debugf("container: method binding registered for [%s]", key)
}

// HasMethodBinding reports whether a method key has an override.
func (c *Container) HasMethodBinding(key string) bool {
	for cur := c; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		_, ok := cur.methodBindings[key]
		cur.mu.RUnlock()
		if ok {
			return true
		}
	}
	return false
}

// CallMethodBinding runs the override registered for key.
func (c *Container) CallMethodBinding(key string, receiver any) (any, error) {
	for cur := c; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		fn, ok := cur.methodBindings[key]
		cur.mu.RUnlock()
		if ok {
			return fn(c, receiver)
		}
	}
	return nil, &Error{Code: ErrCodeBindingNotFound, Message: "no method binding registered", Key: key}
}

// DefineSignature declares parameter metadata for a callable key. Go
// reflection exposes parameter types but not their names or defaults, so
// named injection and default values rely on this registry.
//
//	c.DefineSignature("users@Show", container.Param{Name: "id"})
func (c *Container) DefineSignature(key string, params ...Param) {
	t := c.writeTarget()
	t.mu.Lock()
	t.signatures[key] = params
	t.mu.Unlock()
}

// Signature returns the declared parameters for a callable key, or nil.
func (c *Container) Signature(key string) []Param {
	for cur := c; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		params, ok := cur.signatures[key]
		cur.mu.RUnlock()
		if ok {
			return params
		}
	}
	return nil
}

// ── Contextual Binding ────────────────────────────────────────────────────────

// When starts a contextual binding chain. Extra consumers may be listed to
// share the same override.
//
//	// Laravel: $app->when(PhotoController::class)->needs(Filesystem::class)->give(fn() => new S3)
//	c.When("PhotoController").Needs("Filesystem").Give(func(c *container.Container) (any, error) {
//	    return filesystem.NewS3(...), nil
//	})
func (c *Container) When(concrete string, more ...string) *ContextualBuilder {
	return &ContextualBuilder{
		container: c.writeTarget(),
		concretes: append([]string{concrete}, more...),
	}
}

// contextualFor returns the contextual factory for (concrete, abstract), or nil.
func (c *Container) contextualFor(concrete, abstract string) Factory {
	for cur := c; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		var f Factory
		if m, ok := cur.contextual[concrete]; ok {
			f = m[abstract]
		}
		cur.mu.RUnlock()
		if f != nil {
			return f
		}
	}
	return nil
}

// ── Extend ────────────────────────────────────────────────────────────────────

// Extend decorates the resolved instance of an abstract. If the abstract has
// already been resolved as a singleton, the new extender is applied to the
// cached instance immediately.
//
//	// Laravel: $app->extend(Logger::class, fn($logger, $app) => new TimestampLogger($logger))
//	c.Extend("logger", func(instance any, c *container.Container) any {
//	    return logging.NewTimestampWrapper(instance.(*Logger))
//	})
func (c *Container) Extend(abstract string, fn extender) {
	t := c.writeTarget()
	key := t.canonical(abstract)

	t.mu.Lock()
	t.extenders[key] = append(t.extenders[key], fn)
	inst, resolved := t.instances[key]
	t.mu.Unlock()

	if resolved {
		extended := fn(inst, t)
		t.mu.Lock()
		t.instances[key] = extended
		t.mu.Unlock()
		t.fireRebound(abstract, extended)
	}
}

// extendersFor collects extenders along the fork chain, root first, so
// decorations registered on the parent wrap before the child's.
func (c *Container) extendersFor(key string) []extender {
	if c == nil {
		return nil
	}
	exts := c.parent.extendersFor(key)
	c.mu.RLock()
	exts = append(exts, c.extenders[key]...)
	c.mu.RUnlock()
	return exts
}

// ── Tags ──────────────────────────────────────────────────────────────────────

// Tag associates multiple abstracts under a named group.
//
//	// Laravel: $app->tag([CpuReport::class, MemoryReport::class], 'reports')
//	c.Tag([]string{"CpuReport", "MemoryReport"}, "reports")
func (c *Container) Tag(abstracts []string, tag string) {
	t := c.writeTarget()
	t.mu.Lock()
	t.tags[tag] = append(t.tags[tag], abstracts...)
	t.mu.Unlock()
}

// Tagged resolves all abstracts registered under a tag.
//
//	// Laravel: $app->tagged('reports')
//	reports, err := c.Tagged("reports")  // []any
func (c *Container) Tagged(tag string) ([]any, error) {
	var abstracts []string
	for cur := c; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		abstracts = append(abstracts, cur.tags[tag]...)
		cur.mu.RUnlock()
	}

	result := make([]any, 0, len(abstracts))
	for _, abs := range abstracts {
		v, err := c.Make(abs)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Make resolves an abstract from the container.
//
//	// Laravel: $app->make(UserRepository::class)
//	repo, err := c.Make("UserRepository")
func (c *Container) Make(abstract string) (any, error) {
	return c.resolve(abstract)
}

// MustMake is Make for bootstrap paths where a missing binding is fatal.
func (c *Container) MustMake(abstract string) any {
	v, err := c.resolve(abstract)
	if err != nil {
		panic(err)
	}
	return v
}

// resolve is the internal resolver.
func (c *Container) resolve(abstract string) (any, error) {
	key := c.canonical(abstract)

	// Check singleton instance cache
	if inst, ok := c.findInstance(key); ok {
		return inst, nil
	}

	for _, building := range c.stack {
		if building == key {
			return nil, errCircular(c.stack, key)
		}
	}

	// Check contextual binding (who is asking decides what they get)
	if len(c.stack) > 0 {
		caller := c.stack[len(c.stack)-1]
		if f := c.contextualFor(caller, key); f != nil {
			return c.runFactory(key, f, false, nil)
		}
	}

	b, owner := c.findBinding(key)
	if b == nil {
		return nil, errBindingNotFound(key)
	}
	return c.runFactory(key, b.factory, b.singleton, owner)
}

// reenter resolves abstract with the current frame's own key popped off the
// build stack. Used by factories that replace their own binding mid-flight
// (deferred providers) and then need the replacement resolved.
func (c *Container) reenter(abstract string) (any, error) {
	key := c.canonical(abstract)
	stack := c.stack
	if len(stack) > 0 && stack[len(stack)-1] == key {
		stack = stack[:len(stack)-1]
	}
	frame := &Container{parent: c, frame: true, stack: stack}
	return frame.resolve(abstract)
}

// runFactory executes a factory, optionally caching the result on the
// container that owns the binding. The factory receives a resolution frame
// so nested Make calls see the current build stack.
func (c *Container) runFactory(key string, f Factory, singleton bool, owner *Container) (any, error) {
	frame := &Container{
		parent: c,
		frame:  true,
		stack:  append(append([]string(nil), c.stack...), key),
	}

	c.debugf("container: resolving [%s]", key)
	instance, err := f(frame)
	if err != nil {
		return nil, errFactoryFailed(key, err)
	}

	for _, ext := range c.extendersFor(key) {
		instance = ext(instance, c)
	}

	if singleton && owner != nil {
		owner.mu.Lock()
		owner.instances[key] = instance
		owner.mu.Unlock()
	}

	c.fireAfterResolving(key, instance)
	return instance, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Bound returns true if an abstract has been registered.
//
//	// Laravel: $app->bound(UserRepository::class)
func (c *Container) Bound(abstract string) bool {
	key := c.canonical(abstract)
	if _, ok := c.findInstance(key); ok {
		return true
	}
	b, _ := c.findBinding(key)
	return b != nil
}

// Resolved returns true if the abstract has been resolved at least once.
//
//	// Laravel: $app->resolved(Cache::class)
func (c *Container) Resolved(abstract string) bool {
	_, ok := c.findInstance(c.canonical(abstract))
	return ok
}

// Forget removes all registrations for an abstract (binding + instance).
//
//	// Laravel: $app->forgetInstance(Cache::class)
func (c *Container) Forget(abstract string) {
	t := c.writeTarget()
	key := t.canonical(abstract)
	t.mu.Lock()
	delete(t.bindings, key)
	delete(t.instances, key)
	t.mu.Unlock()
}

// Flush resets the container's own registrations. Parent state shared
// through Fork is untouched.
func (c *Container) Flush() {
	t := c.writeTarget()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bindings = make(map[string]*binding)
	t.instances = make(map[string]any)
	t.aliases = make(map[string]string)
	t.extenders = make(map[string][]extender)
	t.tags = make(map[string][]string)
	t.contextual = make(map[string]map[string]Factory)
	t.methodBindings = make(map[string]MethodBinding)
	t.signatures = make(map[string][]Param)
}

// Bindings returns all registered abstract keys, including inherited ones
// (for debugging).
func (c *Container) Bindings() []string {
	seen := make(map[string]bool)
	var out []string
	for cur := c; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		for k := range cur.bindings {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
		for k := range cur.instances {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
		cur.mu.RUnlock()
	}
	return out
}

// canonical resolves an alias to its canonical key.
func (c *Container) canonical(abstract string) string {
	for cur := c; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		target, ok := cur.aliases[abstract]
		cur.mu.RUnlock()
		if ok {
			return target
		}
	}
	return abstract
}

// findInstance walks the fork chain for a cached instance.
func (c *Container) findInstance(key string) (any, bool) {
	for cur := c; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		inst, ok := cur.instances[key]
		cur.mu.RUnlock()
		if ok {
			return inst, true
		}
	}
	return nil, false
}

// findBinding walks the fork chain for a binding and the container owning it.
func (c *Container) findBinding(key string) (*binding, *Container) {
	for cur := c; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		b, ok := cur.bindings[key]
		cur.mu.RUnlock()
		if ok {
			return b, cur
		}
	}
	return nil, nil
}

// writeTarget returns the nearest container that owns state — resolution
// frames forward registrations to their origin.
func (c *Container) writeTarget() *Container {
	cur := c
	for cur.frame {
		cur = cur.parent
	}
	return cur
}

func (c *Container) logger() logrus.FieldLogger {
	for cur := c; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		log := cur.log
		cur.mu.RUnlock()
		if log != nil {
			return log
		}
	}
	return nil
}

func (c *Container) debugf(format string, args ...any) {
	if log := c.logger(); log != nil {
		log.Debugf(format, args...)
	}
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// Rebinding registers a callback to be called whenever an abstract is re-bound.
//
//	// Laravel: $app->rebinding(UserRepository::class, fn($app, $repo) => ...)
func (c *Container) Rebinding(abstract string, cb func(any)) {
	t := c.writeTarget()
	t.mu.Lock()
	t.reboundCallbacks[abstract] = append(t.reboundCallbacks[abstract], cb)
	t.mu.Unlock()
}

// AfterResolving registers a callback fired after any abstract is resolved.
//
//	// Laravel: $app->afterResolving(fn($object, $app) => ...)
func (c *Container) AfterResolving(cb func(abstract string, instance any)) {
	t := c.writeTarget()
	t.mu.Lock()
	t.afterResolving = append(t.afterResolving, cb)
	t.mu.Unlock()
}

// refireRebound re-resolves abstract and notifies rebound listeners.
func (c *Container) refireRebound(abstract string) {
	cbs := c.reboundCallbacksFor(abstract)
	if len(cbs) == 0 {
		return
	}
	inst, err := c.Make(abstract)
	if err != nil {
		c.debugf("container: rebound of [%s] skipped: %v", abstract, err)
		return
	}
	for _, cb := range cbs {
		cb(inst)
	}
}

func (c *Container) fireRebound(abstract string, instance any) {
	for _, cb := range c.reboundCallbacksFor(abstract) {
		cb(instance)
	}
}

func (c *Container) reboundCallbacksFor(abstract string) []func(any) {
	var cbs []func(any)
	for cur := c; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		cbs = append(cbs, cur.reboundCallbacks[abstract]...)
		cur.mu.RUnlock()
	}
	return cbs
}

func (c *Container) fireAfterResolving(abstract string, instance any) {
	var cbs []func(string, any)
	for cur := c; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		cbs = append(cbs, cur.afterResolving...)
		cur.mu.RUnlock()
	}
	for _, cb := range cbs {
		cb(abstract, instance)
	}
}

// ── Generics helpers ──────────────────────────────────────────────────────────

// Resolve is a generic helper that calls Make and type-asserts the result.
// It panics on a missing binding or a type mismatch — use it for bootstrap
// wiring where either is a programming error.
//
//	// Instead of: db, _ := c.Make("db"); real := db.(*sql.DB)
//	// Write:      db := container.Resolve[*sql.DB](c, "db")
func Resolve[T any](c *Container, abstract string) T {
	instance, err := c.Make(abstract)
	if err != nil {
		panic(fmt.Sprintf("container: Resolve[%T]: %v", *new(T), err))
	}
	typed, ok := instance.(T)
	if !ok {
		panic(fmt.Sprintf("container: Resolve[%T]: [%s] resolved to %T", *new(T), abstract, instance))
	}
	return typed
}

// TryResolve is like Resolve but reports failure instead of panicking.
func TryResolve[T any](c *Container, abstract string) (T, bool) {
	instance, err := c.Make(abstract)
	if err != nil {
		var zero T
		return zero, false
	}
	typed, ok := instance.(T)
	return typed, ok
}
