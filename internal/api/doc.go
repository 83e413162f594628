// Package api handles incoming HTTP requests, request validation and
// response formatting. It adapts HTTP to the registration and user services
// and turns their failed results into status codes.
package api
