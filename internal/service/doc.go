// Package service contains the application use cases. It orchestrates domain
// objects and the repositories defined in internal/store.
//
// Error handling follows two channels. Expected business failures (invalid
// input, a taken email, unaccepted terms, a missing user, bad credentials)
// are returned as a failed result.Result that the caller must branch on.
// Infrastructure failures such as an unreachable database are returned as
// the ordinary Go error alongside it; when that error is non-nil the Result
// must not be inspected.
package service
