package utils

func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

func Ptr[T any](v T) *T {
	return &v
}

// OrDefault returns a copy of values, or of defaults when values is empty.
// The copy keeps callers from mutating the returned slice's backing array.
func OrDefault[T any](values, defaults []T) []T {
	src := values
	if len(src) == 0 {
		src = defaults
	}
	out := make([]T, len(src))
	copy(out, src)
	return out
}
