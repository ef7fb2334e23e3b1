// Package dberr classifies MongoDB driver errors and turns them into
// errs.HTTPError values the client can act on, such as converting a missing
// document into a 404 or an unreachable server into a 503.
package dberr

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// Code is the category of a database failure.
type Code string

const (
	NotFound     Code = "not_found"
	DuplicateKey Code = "duplicate_key"
	Timeout      Code = "timeout"
	Unavailable  Code = "unavailable"
	Other        Code = "other"
)

// Error is a driver error annotated with where it happened.
type Error struct {
	Code       Code
	Collection string
	Operation  string

	driverErr error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Operation, e.Collection, e.Code, e.driverErr)
}

func (e *Error) Unwrap() error {
	return e.driverErr
}

// Wrap classifies err and records the collection and operation it came from.
// A nil err stays nil.
func Wrap(err error, collection, operation string) error {
	if err == nil {
		return nil
	}

	var existing *Error
	if errors.As(err, &existing) {
		return err
	}

	return &Error{
		Code:       classify(err),
		Collection: collection,
		Operation:  operation,
		driverErr:  err,
	}
}

// ErrCode reports the Code of err, or Other when err was never wrapped.
func ErrCode(err error) Code {
	var dbErr *Error
	if errors.As(err, &dbErr) {
		return dbErr.Code
	}
	return Other
}

func classify(err error) Code {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return NotFound
	case mongo.IsDuplicateKeyError(err):
		return DuplicateKey
	case errors.Is(err, context.DeadlineExceeded), mongo.IsTimeout(err):
		return Timeout
	case mongo.IsNetworkError(err), errors.Is(err, mongo.ErrClientDisconnected):
		return Unavailable
	default:
		return Other
	}
}
