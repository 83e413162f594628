// Package domain contains the core business entities, value objects, and
// domain logic of the application. It represents the heart of the system,
// independent of any specific infrastructure or delivery mechanism.
//
// Value objects (Email, Password) are created only through validating
// factories that return a result.Result; once unwrapped from a success they
// are valid for their whole lifetime and expose no mutators.
package domain
