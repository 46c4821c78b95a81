package xcomposite

import (
	"fmt"
	"reflect"
)

type (
	// CallerFunc is the deferred multi-call dispatcher returned
	// when an attribute resolves to a composite method set.
	// Invoking it re-resolves the candidate list, so binds and
	// unbinds between accesses are observed.
	CallerFunc func(args ...any) (any, error)

	// NotFoundError reports an attribute that resolved on neither
	// the owner nor any bound component.
	NotFoundError struct {
		owner reflect.Type
		name  string
	}

	// candidate is one same-named method in a composite set.
	candidate struct {
		source any
		fn     reflect.Value
		policy Policy
		aware  bool
	}

	// resolution classifies an attribute access: either a direct
	// owner- or component-owned value, or a composite method set.
	resolution struct {
		direct  bool
		value   any
		methods []candidate
	}
)

func (e *NotFoundError) Name() string {
	return e.name
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%v has no attribute %q", e.owner, e.name)
}

// Get resolves an attribute on the composition surface.
// Owner-owned non-composite fields and methods are returned as-is.
// A name backed by composite declarations returns a CallerFunc that
// performs the propagation call when invoked.
func (c *Composition) Get(name string) (any, error) {
	res, err := c.resolve(name)
	if err != nil {
		return nil, err
	}
	if res.direct {
		return res.value, nil
	}
	return CallerFunc(func(args ...any) (any, error) {
		return c.propagate(name, args)
	}), nil
}

// Call resolves an attribute and invokes it with the arguments.
func (c *Composition) Call(name string, args ...any) (any, error) {
	v, err := c.Get(name)
	if err != nil {
		return nil, err
	}
	switch f := v.(type) {
	case CallerFunc:
		return f(args...)
	default:
		fv := reflect.ValueOf(v)
		if !fv.IsValid() || fv.Kind() != reflect.Func {
			return nil, fmt.Errorf("attribute %q of %v is not callable",
				name, typeName(c.owner))
		}
		return invokeFunc(name, fv, args)
	}
}

// resolve implements the attribute resolution priority:
//  1. an owner field or method not declared composite is final
//  2. candidates are scanned in binding order; the first
//     non-callable match is final, callables accumulate into the
//     composite method set
//  3. an empty set is a missing attribute
//
// When no candidate declares a policy for the name, the set
// degenerates to delegation: the first callable is returned as-is.
func (c *Composition) resolve(name string) (resolution, error) {
	owner := c.owner
	_, ownerDeclared := declaredPolicy(reflect.TypeOf(owner), name)
	if !ownerDeclared {
		if m, ok := methodNamed(owner, name); ok {
			return resolution{direct: true, value: m.Interface()}, nil
		}
		if f, ok := fieldNamed(owner, name); ok {
			return resolution{direct: true, value: f}, nil
		}
	}

	var methods []candidate
	for _, source := range c.candidates() {
		if source == owner && !ownerDeclared {
			continue
		}
		typ := reflect.TypeOf(source)
		if m, ok := methodNamed(source, name); ok {
			p, _ := declaredPolicy(typ, name)
			methods = append(methods, candidate{source, m, p, declaresAny(typ)})
			continue
		}
		if f, ok := fieldNamed(source, name); ok {
			if fv := reflect.ValueOf(f); fv.IsValid() && fv.Kind() == reflect.Func {
				methods = append(methods, candidate{source, fv, nil, declaresAny(typ)})
				continue
			}
			return resolution{direct: true, value: f}, nil
		}
	}

	if len(methods) == 0 {
		return resolution{}, &NotFoundError{reflect.TypeOf(owner), name}
	}
	if p, err := policyFor(name, methods); err == nil && p == nil {
		return resolution{direct: true, value: methods[0].fn.Interface()}, nil
	}
	return resolution{methods: methods}, nil
}

// policyFor determines the single Policy governing a composite set.
// A nil Policy with nil error means no declarations at all
// (delegation).  Conflicting policies, or a declaration-aware type
// implementing the method without declaring it, are configuration
// errors.
func policyFor(name string, methods []candidate) (Policy, error) {
	var (
		p       Policy
		partial bool
	)
	for _, m := range methods {
		switch {
		case m.policy != nil:
			if p == nil {
				p = m.policy
			} else if p != m.policy {
				return nil, &DeclarationError{nil, name,
					fmt.Errorf("inconsistent declaration: policies %q and %q",
						p.Name(), m.policy.Name())}
			}
		case m.aware:
			partial = true
		}
	}
	if p == nil {
		return nil, nil
	}
	if partial {
		return nil, &DeclarationError{nil, name,
			fmt.Errorf("inconsistent declaration: %q mixes declared and undeclared methods",
				name)}
	}
	return p, nil
}

// methodNamed resolves a bound method on the candidate, including
// pointer-receiver methods when the candidate is a pointer.
func methodNamed(source any, name string) (reflect.Value, bool) {
	v := reflect.ValueOf(source)
	if !v.IsValid() {
		return reflect.Value{}, false
	}
	m := v.MethodByName(name)
	return m, m.IsValid()
}

// fieldNamed resolves an exported struct field on the candidate.
func fieldNamed(source any, name string) (any, bool) {
	v := reflect.Indirect(reflect.ValueOf(source))
	if !v.IsValid() || v.Kind() != reflect.Struct {
		return nil, false
	}
	f, ok := v.Type().FieldByName(name)
	if !ok || f.PkgPath != "" {
		return nil, false
	}
	return v.FieldByIndex(f.Index).Interface(), true
}

// settableField resolves an addressable exported struct field for
// assignment.  The candidate must be a pointer for its fields to be
// settable.
func settableField(source any, name string) reflect.Value {
	v := reflect.ValueOf(source)
	if !v.IsValid() || v.Kind() != reflect.Ptr {
		return reflect.Value{}
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return reflect.Value{}
	}
	f, ok := v.Type().FieldByName(name)
	if !ok || f.PkgPath != "" {
		return reflect.Value{}
	}
	return v.FieldByIndex(f.Index)
}
