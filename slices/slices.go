package slices

import "reflect"

// Map turns a []T1 to a []T2 using a mapping function.
// This works with slices of any type.
func Map[T1, T2 any](s []T1, f func(T1) T2) []T2 {
	if s == nil {
		return nil
	}
	r := make([]T2, len(s))
	for i, t := range s {
		r[i] = f(t)
	}
	return r
}

// Filter filters values from a slice using a filter function.
// It returns a new slice with only the elements of s
// for which f returned true.
func Filter[T any](s []T, f func(T) bool) []T {
	var r []T
	if len(s) == 0 {
		return s
	}
	for _, t := range s {
		if f(t) {
			r = append(r, t)
		}
	}
	return r
}

// OfType filters values from a slice satisfying a given type.
func OfType[T1, T2 any](s []T1) []T2 {
	var r []T2
	for _, t := range s {
		var a any = t
		if tt, ok := a.(T2); ok {
			r = append(r, tt)
		}
	}
	return r
}

// First returns the first element (or zero value if empty) and bool if exists.
func First[T any](s []T) (T, bool) {
	if len(s) == 0 {
		var t T
		return t, false
	}
	return s[0], true
}

// Last returns the last element (or zero value if empty) and bool if exists.
func Last[T any](s []T) (T, bool) {
	if len(s) == 0 {
		var t T
		return t, false
	}
	return s[len(s)-1], true
}

// Distinct returns the unique elements of s, first occurrence kept.
// Elements with non-comparable dynamic types fall back to a
// reflect.DeepEqual scan.
func Distinct[T any](s []T) []T {
	if s == nil {
		return nil
	}
	seen := make(map[any]struct{}, len(s))
	r := make([]T, 0, len(s))
	for _, t := range s {
		var key any = t
		if key != nil && !reflect.TypeOf(key).Comparable() {
			if !containsDeep(r, t) {
				r = append(r, t)
			}
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		r = append(r, t)
	}
	return r
}

func containsDeep[T any](s []T, t T) bool {
	for _, e := range s {
		if reflect.DeepEqual(e, t) {
			return true
		}
	}
	return false
}
