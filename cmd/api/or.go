package main

// firstNonZero returns the first of its arguments that is not the zero
// value, or the zero value if there is none. It mirrors cmp.Or, which is
// not available before Go 1.22.
func firstNonZero[T comparable](vals ...T) T {
	var zero T
	for _, v := range vals {
		if v != zero {
			return v
		}
	}
	return zero
}
