// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package.
// It handles query execution, mapping of driver errors to store errors, and
// the embedded schema migrations applied by goose.
package postgres
