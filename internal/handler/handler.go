// Package handler is the HTTP layer between the router and the services.
//
// Every endpoint goes through the same pipeline (see Handle): bind the path
// and body into a typed request, validate it, call the service and write the
// response. Failures are returned to the global error handler.
package handler
