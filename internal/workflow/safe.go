package workflow

import "github.com/rotisserie/eris"

// safeCall runs fn and converts a panic into an error.
func safeCall[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = eris.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
