// Package events provides the domain events published by the signup flow.
//
// Services emit events without knowing which handlers will process them.
// The primary components are:
// - Event: an envelope carrying a typed JSON payload
// - UserRegistered: the payload published after a user is persisted
// - EventHandler and EventEmitter: the publish/subscribe contract
// - InMemoryEventEmitter: synchronous in-process dispatch
package events
