// Package validation validates request payloads before they reach a service.
//
// Struct tags (validator/v10) cover presence and format checks. Rules that
// need more than a tag, such as the candidate day list, implement Rule[T] and
// return a Result rather than an error. Both kinds of failure come back to the
// client as the same list of errs.FieldError.
package validation
