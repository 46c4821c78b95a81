package xcomposite

import (
	"fmt"
	"reflect"
	"sync"
)

// DeclarationError reports an invalid or inconsistent composite
// method declaration.
type DeclarationError struct {
	typ    reflect.Type
	method string
	reason error
}

func (e *DeclarationError) Method() string {
	return e.method
}

func (e *DeclarationError) Error() string {
	if e.typ != nil {
		return fmt.Sprintf("composite method %v.%s: %v", e.typ, e.method, e.reason)
	}
	return fmt.Sprintf("composite method %s: %v", e.method, e.reason)
}

func (e *DeclarationError) Unwrap() error { return e.reason }

var (
	declareLock  sync.RWMutex
	declarations = make(map[reflect.Type]map[string]Policy)
)

// Declare associates a method of T with a combination Policy.
// Declarations are fixed at type definition time and shared by all
// instances, so Declare is expected to be called from init().
// The method must exist on T and can only be declared once.
func Declare[T any](method string, policy Policy) error {
	if policy == nil {
		panic("policy cannot be nil")
	}
	typ := reflect.TypeOf((*T)(nil)).Elem()
	mt := typ
	if mt.Kind() != reflect.Ptr {
		mt = reflect.PtrTo(mt)
	}
	if _, ok := mt.MethodByName(method); !ok {
		return &DeclarationError{typ, method,
			fmt.Errorf("method not found on %v", typ)}
	}
	key := canonicalType(typ)
	declareLock.Lock()
	defer declareLock.Unlock()
	methods := declarations[key]
	if methods == nil {
		methods = make(map[string]Policy)
		declarations[key] = methods
	}
	if existing, ok := methods[method]; ok && existing != policy {
		return &DeclarationError{typ, method,
			fmt.Errorf("already declared with policy %q", existing.Name())}
	}
	methods[method] = policy
	return nil
}

// MustDeclare is a Declare that panics on failure.
func MustDeclare[T any](method string, policy Policy) {
	if err := Declare[T](method, policy); err != nil {
		panic(err)
	}
}

// declaredPolicy returns the Policy declared for the method on the
// given type, if any.
func declaredPolicy(typ reflect.Type, method string) (Policy, bool) {
	declareLock.RLock()
	defer declareLock.RUnlock()
	p, ok := declarations[canonicalType(typ)][method]
	return p, ok
}

// declaresAny reports whether the type participates in composite
// declarations at all.  Such types are held to the strict rule that
// every same-named method in a composite set must share the
// declared policy.
func declaresAny(typ reflect.Type) bool {
	declareLock.RLock()
	defer declareLock.RUnlock()
	return len(declarations[canonicalType(typ)]) > 0
}

func canonicalType(typ reflect.Type) reflect.Type {
	for typ != nil && typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	return typ
}
