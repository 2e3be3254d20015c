package container

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// ── Resolver ──────────────────────────────────────────────────────────────────

// Resolver is the object-resolution service the call machinery runs against.
// *Container implements it; tests substitute their own.
type Resolver interface {
	// Make builds the value registered under abstract.
	Make(abstract string) (any, error)

	// Bound reports whether abstract is registered.
	Bound(abstract string) bool

	// HasMethodBinding reports whether a method key has an override.
	HasMethodBinding(key string) bool

	// CallMethodBinding runs the override for key with the given receiver.
	CallMethodBinding(key string, receiver any) (any, error)

	// Signature returns declared parameter metadata for a callable key,
	// or nil when none was registered.
	Signature(key string) []Param
}

var _ Resolver = (*Container)(nil)

// ── Entry points ──────────────────────────────────────────────────────────────

// Call invokes a callable target with container-assisted argument resolution.
//
//	// Laravel: $app->call('UserController@show', ['id' => 1])
//	result, err := c.Call("UserController@Show", map[string]any{"id": "1"})
//
// Accepted target shapes:
//
//	func(...)                      — any function or closure
//	[]any{receiver, "Method"}      — method on an instance; a string receiver
//	                                 is resolved through Make first
//	"abstract@Method"              — receiver resolved through Make
//	container.Describe(target, …)  — any of the above plus parameter metadata
//
// The params bag is nil, a positional []any, or an associative
// map[string]any whose keys are parameter names or type keys. A map whose
// keys are exactly "0".."n-1" is treated as positional.
func (c *Container) Call(target any, params any) (any, error) {
	return CallWith(c, target, params, "")
}

// CallDefault is Call with a fallback method name, used when a string target
// carries no "@Method" suffix.
//
//	// Laravel: $app->call('SendEmail', [], 'handle')
//	result, err := c.CallDefault("SendEmail", nil, "Handle")
func (c *Container) CallDefault(target any, params any, defaultMethod string) (any, error) {
	return CallWith(c, target, params, defaultMethod)
}

// CallAs invokes the target and type-asserts the single result.
//
//	user, err := container.CallAs[*User](c, "users@Find", map[string]any{"id": "7"})
func CallAs[T any](c *Container, target any, params any) (T, error) {
	v, err := c.Call(target, params)
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, &Error{
			Code:    ErrCodeInvocation,
			Message: fmt.Sprintf("result is %T, not %T", v, zero),
		}
	}
	return typed, nil
}

// CallWith is the core invocation pipeline, decoupled from *Container so any
// Resolver can drive it — mirrors Laravel's BoundMethod::call.
//
// Pipeline: normalize the target, short-circuit to a method binding if one
// exists for the canonical key, introspect parameters, resolve arguments
// from the bag and the resolver, then invoke.
func CallWith(r Resolver, target any, params any, defaultMethod string) (any, error) {
	cc, err := normalize(r, target, defaultMethod)
	if err != nil {
		return nil, err
	}

	// Laravel: if ($container->hasMethodBinding($method)) return callBoundMethod(...)
	if cc.key != "" && r.HasMethodBinding(cc.key) {
		return r.CallMethodBinding(cc.key, cc.receiver)
	}

	bag, err := newArgumentBag(params)
	if err != nil {
		return nil, err
	}

	specs, err := introspect(r, cc)
	if err != nil {
		return nil, err
	}

	args, aligned, err := resolveArguments(r, specs, bag)
	if err != nil {
		return nil, err
	}

	return invoke(cc, args, aligned)
}

// ── Normalization ─────────────────────────────────────────────────────────────

// canonicalCallable is the single internal form every accepted target shape
// normalizes into: an invocable value (receiver already bound for methods),
// the canonical method key, and any explicit parameter metadata.
type canonicalCallable struct {
	fn       reflect.Value
	receiver any     // nil for bare functions
	key      string  // "abstract@Method"; empty for bare functions
	params   []Param // explicit metadata from Describe, if any
}

func normalize(r Resolver, target any, defaultMethod string) (*canonicalCallable, error) {
	var meta []Param
	if d, ok := target.(Described); ok {
		target, meta = d.target, d.params
	}

	switch t := target.(type) {
	case nil:
		return nil, errInvalidTarget("target is nil")

	case string:
		// Laravel: isCallableWithAtSign($callback) || $defaultMethod
		abstract, method, found := strings.Cut(t, "@")
		if !found {
			if defaultMethod == "" {
				return nil, errInvalidTarget(fmt.Sprintf(
					"string target %q has no @method and no default method was given", t))
			}
			abstract, method = t, defaultMethod
		}
		if abstract == "" || method == "" {
			return nil, errInvalidTarget(fmt.Sprintf("malformed method target %q", t))
		}
		receiver, err := r.Make(abstract)
		if err != nil {
			return nil, err
		}
		cc, err := methodCallable(receiver, method, abstract+"@"+method)
		if err != nil {
			return nil, err
		}
		cc.params = meta
		return cc, nil

	case []any:
		if len(t) != 2 {
			return nil, errInvalidTarget(fmt.Sprintf(
				"receiver/method pair must have 2 elements, got %d", len(t)))
		}
		method, ok := t[1].(string)
		if !ok || method == "" {
			return nil, errInvalidTarget("receiver/method pair needs a non-empty method name")
		}
		receiver := t[0]
		if abstract, ok := receiver.(string); ok {
			made, err := r.Make(abstract)
			if err != nil {
				return nil, err
			}
			receiver = made
		}
		if receiver == nil {
			return nil, errInvalidTarget("receiver is nil")
		}
		cc, err := methodCallable(receiver, method, MethodKey(receiver, method))
		if err != nil {
			return nil, err
		}
		cc.params = meta
		return cc, nil

	default:
		fn := reflect.ValueOf(target)
		if fn.Kind() != reflect.Func {
			return nil, errInvalidTarget(fmt.Sprintf("%T is not callable", target))
		}
		if fn.IsNil() {
			return nil, errInvalidTarget("target function is nil")
		}
		return &canonicalCallable{fn: fn, params: meta}, nil
	}
}

// methodCallable binds method on receiver. Pointer-receiver methods on a
// value are reached through an addressable copy.
func methodCallable(receiver any, method, key string) (*canonicalCallable, error) {
	rv := reflect.ValueOf(receiver)
	if !rv.IsValid() {
		return nil, errInvalidTarget("receiver is nil")
	}

	m := rv.MethodByName(method)
	if !m.IsValid() && rv.Kind() != reflect.Ptr {
		ptr := reflect.New(rv.Type())
		ptr.Elem().Set(rv)
		m = ptr.MethodByName(method)
	}
	if !m.IsValid() {
		return nil, errInvalidTarget(fmt.Sprintf("method %q not found on %s", method, rv.Type()))
	}

	return &canonicalCallable{fn: m, receiver: receiver, key: key}, nil
}

// ── Argument bag ──────────────────────────────────────────────────────────────

// bagEntry is one supplied argument: positional (pos >= 0) or named.
type bagEntry struct {
	key   string
	pos   int
	value any
}

// argumentBag is the normalized view of the params argument. Entries are
// kept in bag order: positional entries by position, then named entries by
// key. A map whose keys are exactly "0".."n-1" collapses to a positional
// bag; any other key makes the bag associative, though numeric keys inside
// it still mark positional slots.
type argumentBag struct {
	entries []bagEntry
	assoc   bool
}

func newArgumentBag(params any) (*argumentBag, error) {
	switch v := params.(type) {
	case nil:
		return &argumentBag{}, nil

	case []any:
		b := &argumentBag{entries: make([]bagEntry, len(v))}
		for i, val := range v {
			b.entries[i] = bagEntry{pos: i, value: val}
		}
		return b, nil

	case map[string]any:
		var positional, named []bagEntry
		for key, val := range v {
			if n, ok := canonicalIndex(key); ok {
				positional = append(positional, bagEntry{pos: n, value: val})
			} else {
				named = append(named, bagEntry{key: key, pos: -1, value: val})
			}
		}
		sort.Slice(positional, func(i, j int) bool { return positional[i].pos < positional[j].pos })
		sort.Slice(named, func(i, j int) bool { return named[i].key < named[j].key })

		b := &argumentBag{entries: append(positional, named...)}
		b.assoc = len(named) > 0 || !sequential(positional)
		return b, nil

	default:
		return nil, errInvalidTarget(fmt.Sprintf("unsupported argument bag type %T", params))
	}
}

// canonicalIndex parses key as a canonical non-negative integer ("0", "12",
// but not "01" or "+1").
func canonicalIndex(key string) (int, bool) {
	n, err := strconv.Atoi(key)
	if err != nil || n < 0 || strconv.Itoa(n) != key {
		return 0, false
	}
	return n, true
}

func sequential(positional []bagEntry) bool {
	for i, e := range positional {
		if e.pos != i {
			return false
		}
	}
	return true
}

// narrow drops named entries whose key the accept func rejects. Positional
// entries always survive.
func (b *argumentBag) narrow(accept func(key string) bool) {
	kept := b.entries[:0]
	for _, e := range b.entries {
		if e.pos >= 0 || accept(e.key) {
			kept = append(kept, e)
		}
	}
	b.entries = kept
}

// values returns every entry's value in bag order.
func (b *argumentBag) values() []any {
	out := make([]any, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.value
	}
	return out
}

func (b *argumentBag) positionalValues() []any {
	var out []any
	for _, e := range b.entries {
		if e.pos >= 0 {
			out = append(out, e.value)
		}
	}
	return out
}

func (b *argumentBag) namedValues() map[string]any {
	out := make(map[string]any)
	for _, e := range b.entries {
		if e.pos < 0 {
			out[e.key] = e.value
		}
	}
	return out
}

// ── Introspection ─────────────────────────────────────────────────────────────

// paramSpec is one declared parameter with whatever metadata is known.
type paramSpec struct {
	name     string
	typ      reflect.Type
	def      any
	optional bool
	variadic bool
}

// introspect merges the target's reflected parameter types with declared
// metadata: Describe wins over a signature registered for the method key.
func introspect(r Resolver, cc *canonicalCallable) ([]paramSpec, error) {
	fnT := cc.fn.Type()

	meta := cc.params
	if meta == nil && cc.key != "" {
		meta = r.Signature(cc.key)
	}

	numIn := fnT.NumIn()
	if len(meta) > numIn {
		return nil, errUnintrospectable(cc.key, fmt.Sprintf(
			"%d parameters declared for a target taking %d", len(meta), numIn))
	}

	specs := make([]paramSpec, numIn)
	for i := 0; i < numIn; i++ {
		spec := paramSpec{typ: fnT.In(i)}
		if i < len(meta) {
			spec.name = meta[i].Name
			spec.def = meta[i].Default
			spec.optional = meta[i].Optional
		}
		if fnT.IsVariadic() && i == numIn-1 {
			spec.variadic = true
		}
		specs[i] = spec
	}
	return specs, nil
}

// ── Argument resolution ───────────────────────────────────────────────────────

// resolveArguments fills one value per declared parameter. The bool result
// reports whether every slot was filled, so the invoker knows argument
// positions still line up with parameter positions.
//
// Laravel: BoundMethod::getMethodDependencies + addDependencyForCallParameter.
func resolveArguments(r Resolver, specs []paramSpec, bag *argumentBag) ([]any, bool, error) {
	// No declared parameters: the bag passes through untouched so the target
	// receives the raw arguments.
	if len(specs) == 0 {
		return bag.values(), true, nil
	}

	// A variadic tail fed from a positional bag likewise takes the raw
	// arguments; associative bags fall through so a named slice can spread.
	variadicTail := specs[len(specs)-1].variadic
	if variadicTail && !bag.assoc {
		return bag.values(), true, nil
	}

	// Associative bags are narrowed to keys that can mean something here:
	// declared parameter names, or keys the resolver knows how to build.
	if bag.assoc {
		names := make(map[string]bool, len(specs))
		for _, p := range specs {
			if p.name != "" {
				names[p.name] = true
			}
		}
		bag.narrow(func(key string) bool {
			return names[key] || r.Bound(key)
		})
	}

	// At least one value per parameter: pass the bag through positionally.
	if !variadicTail && len(specs) <= len(bag.entries) {
		return bag.values(), true, nil
	}

	positional := bag.positionalValues()
	named := bag.namedValues()

	out := make([]any, 0, len(specs))
	complete := true
	cursor := 0

	for _, p := range specs {
		if p.variadic {
			out = append(out, variadicArgs(p, named, positional[cursor:])...)
			cursor = len(positional)
			continue
		}

		// 1. Entry under the parameter's name.
		if p.name != "" {
			if v, ok := named[p.name]; ok {
				out = append(out, v)
				continue
			}
		}

		if classLike(p.typ) {
			// 2. Entry under the parameter's type key.
			if v, ok := named[typeKeyOf(p.typ)]; ok {
				out = append(out, v)
				continue
			}
			// 3. Build through the resolver — a registered default wins,
			// so defaulted dependencies never hit the resolver.
			if !p.optional {
				v, err := r.Make(typeKeyOf(p.typ))
				if err != nil {
					return nil, false, err
				}
				out = append(out, v)
				continue
			}
		} else if cursor < len(positional) {
			// 4. Next positional entry (builtins only).
			out = append(out, positional[cursor])
			cursor++
			continue
		}

		// 5. Registered default.
		if p.optional {
			out = append(out, p.def)
			continue
		}

		// 6. Nothing found: the slot stays unfilled and later arguments
		// shift left. The target's calling convention decides whether
		// that is fatal.
		complete = false
	}

	return out, complete, nil
}

// variadicArgs expands the trailing variadic parameter: a slice supplied by
// name or type key spreads element-wise, anything else is passed as a single
// element, and with no match the leftover positional entries are consumed.
func variadicArgs(p paramSpec, named map[string]any, rest []any) []any {
	var v any
	ok := false
	if p.name != "" {
		v, ok = named[p.name]
	}
	if !ok {
		v, ok = named[typeKeyOf(p.typ)]
	}
	if !ok {
		return rest
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice {
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	}
	return []any{v}
}

// classLike reports whether a parameter type plays the role of a class type
// hint: structs, pointers to structs, and interfaces. Builtins, slices and
// maps take the positional/default path instead.
func classLike(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Struct:
		return true
	case reflect.Ptr:
		return t.Elem().Kind() == reflect.Struct
	}
	return false
}

// ── Invocation ────────────────────────────────────────────────────────────────

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// invoke calls the target with the resolved arguments and maps the results:
// no results → nil, one → the value, several → []any. A trailing error
// result, a panic, or an argument the calling convention rejects comes back
// as an INVOCATION_FAILED error.
func invoke(cc *canonicalCallable, vals []any, aligned bool) (result any, err error) {
	fnT := cc.fn.Type()
	numIn := fnT.NumIn()

	// Unfilled slots shifted later arguments left; Go's calling convention
	// has no notion of missing positional arguments, so that surfaces here.
	if !aligned {
		need := numIn
		if fnT.IsVariadic() {
			need = numIn - 1
		}
		if len(vals) < need {
			return nil, errInvocation(cc.key, fmt.Errorf(
				"resolved %d of %d arguments", len(vals), numIn))
		}
	}

	// Surplus positional arguments are ignored, as the source convention
	// ignores extra call arguments.
	if !fnT.IsVariadic() && len(vals) > numIn {
		vals = vals[:numIn]
	}

	in := make([]reflect.Value, len(vals))
	for i, v := range vals {
		want := argType(fnT, i)
		if v == nil {
			in[i] = reflect.Zero(want)
			continue
		}
		rv := reflect.ValueOf(v)
		if !rv.Type().AssignableTo(want) {
			if bridged, ok := bridge(rv, want); ok {
				rv = bridged
			}
		}
		in[i] = rv
	}

	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			if rErr, ok := rec.(error); ok {
				err = errInvocation(cc.key, rErr)
			} else {
				err = errInvocation(cc.key, fmt.Errorf("%v", rec))
			}
		}
	}()

	outs := cc.fn.Call(in)

	if n := len(outs); n > 0 && fnT.Out(n-1) == errorType {
		if !outs[n-1].IsNil() {
			return nil, errInvocation(cc.key, outs[n-1].Interface().(error))
		}
		outs = outs[:n-1]
	}

	switch len(outs) {
	case 0:
		return nil, nil
	case 1:
		return outs[0].Interface(), nil
	default:
		results := make([]any, len(outs))
		for i, o := range outs {
			results[i] = o.Interface()
		}
		return results, nil
	}
}

// argType returns the declared type of argument slot i, unwrapping the
// variadic tail.
func argType(fnT reflect.Type, i int) reflect.Type {
	numIn := fnT.NumIn()
	if fnT.IsVariadic() && i >= numIn-1 {
		return fnT.In(numIn - 1).Elem()
	}
	return fnT.In(i)
}

// bridge converts between T and *T so a resolved *Service satisfies a
// Service parameter and vice versa.
func bridge(v reflect.Value, want reflect.Type) (reflect.Value, bool) {
	if v.Kind() == reflect.Ptr && !v.IsNil() && v.Elem().Type().AssignableTo(want) {
		return v.Elem(), true
	}
	if want.Kind() == reflect.Ptr && v.Type() == want.Elem() {
		ptr := reflect.New(v.Type())
		ptr.Elem().Set(v)
		return ptr, true
	}
	return reflect.Value{}, false
}
