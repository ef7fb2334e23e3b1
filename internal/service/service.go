// Package service contains the business logic between handlers and
// repositories. Services receive already validated input.
package service
