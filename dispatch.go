package xcomposite

import (
	"fmt"
	"reflect"

	"github.com/hashicorp/go-multierror"
	"github.com/xcomposite-go/xcomposite/internal"
)

// propagate performs the multi-call dispatch for a composite
// method: re-resolve the candidate list, invoke each method in
// binding order with the original arguments, filter Ignore results
// into a per-call accumulator, and hand the ordered results to the
// governing Policy.
func (c *Composition) propagate(name string, args []any) (any, error) {
	res, err := c.resolve(name)
	if err != nil {
		return nil, err
	}
	if res.direct {
		fv := reflect.ValueOf(res.value)
		if !fv.IsValid() || fv.Kind() != reflect.Func {
			return nil, fmt.Errorf("attribute %q of %v is not callable",
				name, typeName(c.owner))
		}
		return invokeFunc(name, fv, args)
	}

	methods := res.methods
	policy, err := policyFor(name, methods)
	if err != nil {
		return nil, err
	}
	c.log.V(1).Info("dispatching composite call",
		"owner", typeName(c.owner), "method", name,
		"policy", policy.Name(), "candidates", len(methods))

	// results is scoped to this invocation only, so recursive or
	// interleaved calls on the same policy never share state.
	results := make([]any, 0, len(methods))
	var errs error
	for _, m := range methods {
		result, err := invokeFunc(name, m.fn, args)
		if err != nil {
			errs = multierror.Append(errs,
				fmt.Errorf("%v: %w", typeName(m.source), err))
			continue
		}
		if isIgnore(result) {
			continue
		}
		results = append(results, result)
	}
	if errs != nil {
		return nil, errs
	}
	return policy.Reduce(results)
}

// invokeFunc calls a resolved method with the original arguments,
// converting each where assignability allows.  The method may
// return nothing, a value, or a value and an error.  A method with
// no value outputs contributes Ignore.
func invokeFunc(name string, fn reflect.Value, args []any) (any, error) {
	t := fn.Type()
	numIn := t.NumIn()
	if t.IsVariadic() {
		if len(args) < numIn-1 {
			return nil, fmt.Errorf(
				"%q expects at least %d arguments, got %d", name, numIn-1, len(args))
		}
	} else if len(args) != numIn {
		return nil, fmt.Errorf(
			"%q expects %d arguments, got %d", name, numIn, len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var pt reflect.Type
		if t.IsVariadic() && i >= numIn-1 {
			pt = t.In(numIn - 1).Elem()
		} else {
			pt = t.In(i)
		}
		if arg == nil {
			in[i] = reflect.Zero(pt)
			continue
		}
		av := reflect.ValueOf(arg)
		if !av.Type().AssignableTo(pt) {
			if !av.Type().ConvertibleTo(pt) {
				return nil, fmt.Errorf(
					"%q argument %d: cannot use %T as %v", name, i, arg, pt)
			}
			av = av.Convert(pt)
		}
		in[i] = av
	}

	out := fn.Call(in)
	if n := len(out); n > 0 && t.Out(n-1) == internal.ErrorType {
		if err := out[n-1]; !err.IsNil() {
			return nil, err.Interface().(error)
		}
		out = out[:n-1]
	}
	switch len(out) {
	case 0:
		return Ignore{}, nil
	case 1:
		return out[0].Interface(), nil
	default:
		values := make([]any, len(out))
		for i, v := range out {
			values[i] = v.Interface()
		}
		return values, nil
	}
}
