package model

// Outcome wraps a stage output that may have been substituted with a
// default. A defaulted value is structurally valid but carries no signal,
// which keeps it distinguishable from a computed value that happens to be
// empty.
type Outcome[T any] struct {
	Value     T      `json:"value" yaml:"value"`
	Defaulted bool   `json:"defaulted" yaml:"defaulted"`
	Reason    string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Computed returns an Outcome holding a real result.
func Computed[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

// Defaulted returns an Outcome holding a fallback value and the reason the
// real computation could not be used.
func Defaulted[T any](v T, reason string) Outcome[T] {
	return Outcome[T]{Value: v, Defaulted: true, Reason: reason}
}
