package result

import "fmt"

// InvalidAccessError is the panic value raised when the wrong side of a Result
// is read. It signals a programmer error, not a business failure.
type InvalidAccessError struct {
	// Accessed names what was requested: "value", "error", or "state" for a
	// zero Result that never went through Ok or Fail.
	Accessed string
}

// Error implements the error interface.
func (e *InvalidAccessError) Error() string {
	switch e.Accessed {
	case "value":
		return "result: value accessed on a failed result"
	case "error":
		return "result: error accessed on a successful result"
	default:
		return fmt.Sprintf("result: %s accessed on an unconstructed result", e.Accessed)
	}
}

// Result holds either a success value of type T or a failure of type E.
// A Result is created only through Ok or Fail and never changes afterwards.
type Result[T, E any] struct {
	value T
	err   E
	state state
}

type state uint8

const (
	stateInvalid state = iota
	stateOk
	stateFailed
)

// Ok builds a successful Result holding value.
func Ok[T, E any](value T) Result[T, E] {
	return Result[T, E]{value: value, state: stateOk}
}

// Fail builds a failed Result holding err.
func Fail[T, E any](err E) Result[T, E] {
	return Result[T, E]{err: err, state: stateFailed}
}

// IsOk reports whether r holds a success value.
func (r Result[T, E]) IsOk() bool {
	r.mustBeConstructed()
	return r.state == stateOk
}

// IsError reports whether r holds a failure.
func (r Result[T, E]) IsError() bool {
	r.mustBeConstructed()
	return r.state == stateFailed
}

// Value returns the success value. It panics with *InvalidAccessError when r
// is a failure.
func (r Result[T, E]) Value() T {
	if !r.IsOk() {
		panic(&InvalidAccessError{Accessed: "value"})
	}
	return r.value
}

// Err returns the failure. It panics with *InvalidAccessError when r is a
// success.
func (r Result[T, E]) Err() E {
	if !r.IsError() {
		panic(&InvalidAccessError{Accessed: "error"})
	}
	return r.err
}

// GetOrElse returns the success value, or def when r is a failure.
func (r Result[T, E]) GetOrElse(def T) T {
	if r.IsOk() {
		return r.value
	}
	return def
}

// Tap calls fn with the success value and returns r unchanged.
// fn is not called on a failure.
func (r Result[T, E]) Tap(fn func(T)) Result[T, E] {
	if r.IsOk() {
		fn(r.value)
	}
	return r
}

// String renders the state for logs and test failure output.
func (r Result[T, E]) String() string {
	switch r.state {
	case stateOk:
		return fmt.Sprintf("Ok(%v)", r.value)
	case stateFailed:
		return fmt.Sprintf("Fail(%v)", r.err)
	default:
		return "Result(<unconstructed>)"
	}
}

// The zero Result is neither success nor failure.
func (r Result[T, E]) mustBeConstructed() {
	if r.state == stateInvalid {
		panic(&InvalidAccessError{Accessed: "state"})
	}
}
