package container

import "reflect"

// ── Parameter metadata ────────────────────────────────────────────────────────

// Param describes one declared parameter of a callable. Go reflection can
// see parameter types but not their names or default values, so callers
// declare those here — either per call site with Describe, or once per
// method key with Container.DefineSignature.
type Param struct {
	// Name is the parameter's name as callers pass it in an associative
	// argument bag. Empty means the parameter cannot be matched by name.
	Name string

	// Default is the value used when nothing else fills the parameter.
	// Only consulted when Optional is true.
	Default any

	// Optional marks the parameter as defaulted; Default may still be nil.
	Optional bool
}

// Optional is shorthand for a named parameter with a default value.
func Optional(name string, def any) Param {
	return Param{Name: name, Default: def, Optional: true}
}

// Described pairs a callable target with explicit parameter metadata for a
// single Call:
//
//	c.Call(container.Describe(greet, container.Param{Name: "name"}),
//	    map[string]any{"name": "Taylor"})
type Described struct {
	target any
	params []Param
}

// Describe attaches parameter metadata to a target. The params are given in
// declaration order; trailing parameters may be omitted.
func Describe(target any, params ...Param) Described {
	return Described{target: target, params: params}
}

// ── Type keys ─────────────────────────────────────────────────────────────────

// TypeKey returns the package-qualified type name of v, useful as a stable
// abstract key when working with interfaces.
//
//	key := container.TypeKey((*UserRepository)(nil))  // "main.UserRepository"
//	c.Singleton(key, factory)
//	repo := container.Resolve[UserRepository](c, key)
func TypeKey(v any) string {
	return typeKeyOf(reflect.TypeOf(v))
}

// MethodKey builds the canonical "type@Method" key Call uses for a receiver
// and method name — the key BindMethod and DefineSignature expect.
//
//	c.BindMethod(container.MethodKey(&SendEmail{}, "Handle"), override)
func MethodKey(receiver any, method string) string {
	return TypeKey(receiver) + "@" + method
}

// typeKeyOf is the reflect.Type form of TypeKey. Pointers are collapsed to
// their element so *T and T share a key.
func typeKeyOf(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}
