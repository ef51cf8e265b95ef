// Package utils holds small generic helpers.
package utils

func Ptr[T any](v T) *T {
	return &v
}

// PtrIf returns a pointer to v when set is true and nil otherwise, so optional request
// fields stay absent unless the user supplied them.
func PtrIf[T any](set bool, v T) *T {
	if !set {
		return nil
	}
	return &v
}
