// Package result provides a two-state container for chaining fallible steps
// without returning early at every call site.
//
// A Result is either a success carrying a value or a failure carrying an
// error payload. Map and FlatMap run the next step only on success, so the
// first failure in a chain travels unchanged to the end ("railway" style):
//
//	r := result.FlatMap(domain.NewEmail(raw), func(e domain.Email) result.Result[*User, domain.ValidationError] {
//		...
//	})
//
// Reading the wrong side of a Result (Value on a failure, Err on a success)
// panics with *InvalidAccessError. That is a bug in the caller; expected
// business failures are always inspected through IsOk, IsError or Match.
package result
