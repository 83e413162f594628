// Package memory provides map-backed implementations of the store
// interfaces. They are used when no database URL is configured and in tests.
package memory
