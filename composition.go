package xcomposite

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-logr/logr"
	"github.com/xcomposite-go/xcomposite/slices"
)

// Composition composes behavior from components bound to a host
// object, as an alternative to inheritance when no natural
// hierarchy exists.  The owner's methods declared with a Policy
// combine with same-named component methods in binding order.
type Composition struct {
	owner      any
	components []any
	log        logr.Logger
}

// New creates a Composition for the owner.  The owner is itself
// eligible to supply method implementations and is typically the
// struct embedding the Composition.
func New(owner any) *Composition {
	if owner == nil {
		panic("owner cannot be nil")
	}
	return &Composition{
		owner: owner,
		log:   logr.Discard(),
	}
}

// SetLogger replaces the discard logger used for dispatch traces.
func (c *Composition) SetLogger(log logr.Logger) {
	c.log = log
}

// Bind appends a component to the composition.  The composition
// holds a non-owning reference: components may be shared between
// hosts and the same instance may be bound more than once.
// Binding a host into a cycle is the caller's responsibility.
func (c *Composition) Bind(component any) {
	if component == nil {
		panic("component cannot be nil")
	}
	c.components = append(c.components, component)
	c.log.V(1).Info("bound component",
		"owner", typeName(c.owner), "component", typeName(component))
}

// Unbind removes every bound component whose runtime type matches
// componentType.  An interface type matches all implementations;
// a concrete type matches both value and pointer forms.  It is a
// no-op when nothing matches.
func (c *Composition) Unbind(componentType reflect.Type) {
	if componentType == nil {
		panic("componentType cannot be nil")
	}
	c.components = slices.Filter(c.components, func(component any) bool {
		return !matchesType(component, componentType)
	})
	c.log.V(1).Info("unbound components",
		"owner", typeName(c.owner), "componentType", componentType.String())
}

// Unbind removes every component of type T bound to the composition.
func Unbind[T any](c *Composition) {
	c.Unbind(reflect.TypeOf((*T)(nil)).Elem())
}

// Components returns the live ordered component list.  Mutation
// through Bind and Unbind is reflected in subsequent calls.
func (c *Composition) Components() []any {
	return c.components
}

// Set assigns the named exported field on the owner if it has one,
// otherwise on the first bound component that has one.
func (c *Composition) Set(name string, value any) error {
	for _, candidate := range c.candidates() {
		field := settableField(candidate, name)
		if !field.IsValid() {
			continue
		}
		v := reflect.ValueOf(value)
		if value == nil {
			v = reflect.Zero(field.Type())
		} else if !v.Type().AssignableTo(field.Type()) {
			if !v.Type().ConvertibleTo(field.Type()) {
				return fmt.Errorf("cannot assign %T to field %q of %T",
					value, name, candidate)
			}
			v = v.Convert(field.Type())
		}
		field.Set(v)
		return nil
	}
	return &NotFoundError{reflect.TypeOf(c.owner), name}
}

func (c *Composition) String() string {
	name := typeName(c.owner)
	if len(c.components) == 0 {
		return name
	}
	names := slices.Map(
		slices.Filter(c.components, func(component any) bool {
			return component != c.owner
		}),
		func(component any) string { return typeName(component) })
	return fmt.Sprintf("[%s (%s)]",
		name, strings.Join(slices.Distinct(names), "; "))
}

// candidates returns the ordered resolution list: the owner
// followed by each bound component in binding order.
func (c *Composition) candidates() []any {
	candidates := make([]any, 0, len(c.components)+1)
	candidates = append(candidates, c.owner)
	return append(candidates, c.components...)
}

func matchesType(component any, typ reflect.Type) bool {
	ct := reflect.TypeOf(component)
	if ct == nil {
		return false
	}
	if typ.Kind() == reflect.Interface {
		return ct.Implements(typ)
	}
	return canonicalType(ct) == canonicalType(typ)
}

// TypeNameOf returns the unqualified type name used for a host or
// component in the composition's string representation.
func TypeNameOf(v any) string {
	return typeName(v)
}

func typeName(v any) string {
	return canonicalType(reflect.TypeOf(v)).Name()
}
