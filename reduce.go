package xcomposite

import (
	"fmt"
	"reflect"

	"github.com/imdario/mergo"
	"github.com/xcomposite-go/xcomposite/slices"
)

// The named combination policies.  Each reduces the ordered,
// Ignore-filtered results of a propagation call to a single value.
var (
	Min           = registerPolicy("min", reduceMin)
	Max           = registerPolicy("max", reduceMax)
	Sum           = registerPolicy("sum", reduceSum)
	Average       = registerPolicy("average", reduceAverage)
	First         = registerPolicy("first", reduceFirst)
	Last          = registerPolicy("last", reduceLast)
	Append        = registerPolicy("append", reduceAppend)
	AppendUnique  = registerPolicy("appendUnique", reduceAppendUnique)
	Extend        = registerPolicy("extend", reduceExtend)
	ExtendUnique  = registerPolicy("extendUnique", reduceExtendUnique)
	Update        = registerPolicy("update", reduceUpdate)
	Range         = registerPolicy("range", reduceRange)
	AnyTrue       = registerPolicy("anyTrue", reduceAnyTrue)
	AnyFalse      = registerPolicy("anyFalse", reduceAnyFalse)
	AbsoluteTrue  = registerPolicy("absoluteTrue", reduceAbsoluteTrue)
	AbsoluteFalse = registerPolicy("absoluteFalse", reduceAbsoluteFalse)
)

func reduceMin(results []any) (any, error) {
	return extremum("min", results, func(candidate, best float64) bool {
		return candidate < best
	})
}

func reduceMax(results []any) (any, error) {
	return extremum("max", results, func(candidate, best float64) bool {
		return candidate > best
	})
}

// extremum returns the original element whose numeric coercion
// satisfies the comparison against all others.
func extremum(
	name    string,
	results []any,
	better  func(candidate, best float64) bool,
) (any, error) {
	if len(results) == 0 {
		return nil, &ReductionError{name, ErrNoResults}
	}
	var (
		best  any
		bestF float64
	)
	for i, r := range results {
		f, _, err := toNumber(r)
		if err != nil {
			return nil, &ReductionError{name, err}
		}
		if i == 0 || better(f, bestF) {
			best, bestF = r, f
		}
	}
	return best, nil
}

func reduceSum(results []any) (any, error) {
	var (
		isum int64
		fsum float64
		ints = true
	)
	for _, r := range results {
		f, isInt, err := toNumber(r)
		if err != nil {
			return nil, &ReductionError{"sum", err}
		}
		fsum += f
		if isInt {
			isum += int64(f)
		} else {
			ints = false
		}
	}
	if ints {
		return int(isum), nil
	}
	return fsum, nil
}

func reduceAverage(results []any) (any, error) {
	if len(results) == 0 {
		return nil, nil
	}
	sum, err := reduceSum(results)
	if err != nil {
		return nil, &ReductionError{"average", err.(*ReductionError).reason}
	}
	var fsum float64
	switch s := sum.(type) {
	case int:
		fsum = float64(s)
	case float64:
		fsum = s
	}
	if fsum == 0 {
		return sum, nil
	}
	return fsum / float64(len(results)), nil
}

func reduceRange(results []any) (any, error) {
	if len(results) == 0 {
		return nil, &ReductionError{"range", ErrNoResults}
	}
	var lo, hi float64
	for i, r := range results {
		f, _, err := toNumber(r)
		if err != nil {
			return nil, &ReductionError{"range", err}
		}
		if i == 0 || f < lo {
			lo = f
		}
		if i == 0 || f > hi {
			hi = f
		}
	}
	return hi - lo, nil
}

func reduceFirst(results []any) (any, error) {
	r, _ := slices.First(results)
	return r, nil
}

func reduceLast(results []any) (any, error) {
	r, _ := slices.Last(results)
	return r, nil
}

func reduceAppend(results []any) (any, error) {
	out := make([]any, len(results))
	copy(out, results)
	return out, nil
}

func reduceAppendUnique(results []any) (any, error) {
	return slices.Distinct(results), nil
}

func reduceExtend(results []any) (any, error) {
	return flatten("extend", results)
}

func reduceExtendUnique(results []any) (any, error) {
	flat, err := flatten("extendUnique", results)
	if err != nil {
		return nil, err
	}
	return slices.Distinct(flat), nil
}

// flatten expects every result to itself be a sequence and
// concatenates them in order.
func flatten(name string, results []any) ([]any, error) {
	out := make([]any, 0, len(results))
	for _, r := range results {
		v := reflect.ValueOf(r)
		switch v.Kind() {
		case reflect.Slice, reflect.Array:
			for i := 0; i < v.Len(); i++ {
				out = append(out, v.Index(i).Interface())
			}
		default:
			return nil, &ReductionError{name,
				fmt.Errorf("result %T is not a sequence", r)}
		}
	}
	return out, nil
}

func reduceUpdate(results []any) (any, error) {
	out := make(map[string]any, len(results))
	for _, r := range results {
		m, err := stringKeyedMap(r)
		if err != nil {
			return nil, &ReductionError{"update", err}
		}
		if err := mergo.Merge(&out, m, mergo.WithOverride); err != nil {
			return nil, &ReductionError{"update", err}
		}
	}
	return out, nil
}

func stringKeyedMap(result any) (map[string]any, error) {
	if m, ok := result.(map[string]any); ok {
		return m, nil
	}
	v := reflect.ValueOf(result)
	if v.Kind() != reflect.Map || v.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("result %T is not a string-keyed map", result)
	}
	m := make(map[string]any, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return m, nil
}

func reduceAnyTrue(results []any) (any, error) {
	for _, r := range results {
		if truthy(r) {
			return true, nil
		}
	}
	return false, nil
}

func reduceAnyFalse(results []any) (any, error) {
	for _, r := range results {
		if !truthy(r) {
			return false, nil
		}
	}
	return true, nil
}

func reduceAbsoluteTrue(results []any) (any, error) {
	for _, r := range results {
		if !truthy(r) {
			return false, nil
		}
	}
	return true, nil
}

func reduceAbsoluteFalse(results []any) (any, error) {
	for _, r := range results {
		if truthy(r) {
			return true, nil
		}
	}
	return false, nil
}

// toNumber coerces a result to float64 and reports whether its
// dynamic type is integral.
func toNumber(result any) (float64, bool, error) {
	v := reflect.ValueOf(result)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true, nil
	case reflect.Float32, reflect.Float64:
		return v.Float(), false, nil
	}
	return 0, false, fmt.Errorf("result %T is not numeric", result)
}

// truthy mirrors dynamic-language truthiness: nil, false, numeric
// zero and empty containers are false, everything else is true.
func truthy(result any) bool {
	if result == nil {
		return false
	}
	v := reflect.ValueOf(result)
	switch v.Kind() {
	case reflect.Bool:
		return v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		f, _, _ := toNumber(result)
		return f != 0
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array, reflect.Chan:
		return v.Len() > 0
	case reflect.Ptr, reflect.Interface:
		return !v.IsNil()
	}
	return true
}
