// Package errs defines the error shapes returned to API clients.
//
// Every failure that leaves the service is rendered as an HTTPError so clients
// get one consistent JSON body regardless of where the error started: request
// validation, the event store, or an unexpected panic.
package errs
