// Package mocks provides centralized mock implementations for testing.
//
// Two styles are available. The Mock* types use function fields with
// in-memory defaults, so a test only overrides the calls it cares about.
// The Testify* types are testify/mock based and suit tests that assert on
// call expectations.
//
// Usage:
//
//	users := mocks.NewMockUserStore()
//	users.SaveFn = func(ctx context.Context, u *domain.User) error {
//	    return errors.New("connection refused")
//	}
package mocks
