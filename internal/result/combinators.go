package result

// Map applies fn to the success value of r and wraps its output in a new
// success. A failure is passed through untouched and fn is never called.
func Map[T, U, E any](r Result[T, E], fn func(T) U) Result[U, E] {
	if r.IsError() {
		return Fail[U](r.err)
	}
	return Ok[U, E](fn(r.value))
}

// FlatMap chains a fallible step onto r. On a failure the chain short-circuits:
// fn is never called and the first failure is carried to the end.
func FlatMap[T, U, E any](r Result[T, E], fn func(T) Result[U, E]) Result[U, E] {
	if r.IsError() {
		return Fail[U](r.err)
	}
	return fn(r.value)
}

// MapErr rewrites the failure side of r with fn. A success is passed through
// and fn is never called.
func MapErr[T, E, F any](r Result[T, E], fn func(E) F) Result[T, F] {
	if r.IsOk() {
		return Ok[T, F](r.value)
	}
	return Fail[T](fn(r.err))
}

// Match invokes exactly one of onOk or onErr and returns its output.
func Match[T, E, U any](r Result[T, E], onOk func(T) U, onErr func(E) U) U {
	if r.IsOk() {
		return onOk(r.value)
	}
	return onErr(r.err)
}

// AsError lifts a failure whose type implements error into the plain error
// channel, so results from different producers can share one railway.
func AsError[T any, E error](r Result[T, E]) Result[T, error] {
	return MapErr(r, func(e E) error { return e })
}
