package xcomposite

import (
	"errors"
	"fmt"
	"sync"
)

type (
	// Policy reduces the ordered per-component results of a
	// composite method call into the single value returned to
	// the caller.  Policies are stateless and shared across all
	// hosts and calls.
	Policy interface {
		Name() string

		Reduce(results []any) (any, error)
	}

	// ReductionError reports a failed policy reduction.
	ReductionError struct {
		policy string
		reason error
	}

	reducerFunc func(results []any) (any, error)

	policy struct {
		name   string
		reduce reducerFunc
	}
)

// ErrNoResults indicates a reduction requiring at least one
// result received none.
var ErrNoResults = errors.New("requires at least one result")

func (p *policy) Name() string {
	return p.name
}

func (p *policy) Reduce(results []any) (any, error) {
	return p.reduce(results)
}

func (e *ReductionError) Policy() string {
	return e.policy
}

func (e *ReductionError) Error() string {
	return fmt.Sprintf("policy %q: %v", e.policy, e.reason)
}

func (e *ReductionError) Unwrap() error { return e.reason }

var (
	policyLock sync.RWMutex
	policies   = make(map[string]Policy)
)

// PolicyNamed returns the registered Policy with the given name.
func PolicyNamed(name string) (Policy, bool) {
	policyLock.RLock()
	defer policyLock.RUnlock()
	p, ok := policies[name]
	return p, ok
}

func registerPolicy(name string, reduce reducerFunc) Policy {
	if len(name) == 0 {
		panic("name cannot be empty")
	}
	if reduce == nil {
		panic("reduce cannot be nil")
	}
	policyLock.Lock()
	defer policyLock.Unlock()
	if _, exists := policies[name]; exists {
		panic(fmt.Sprintf("policy %q already registered", name))
	}
	p := &policy{name, reduce}
	policies[name] = p
	return p
}
