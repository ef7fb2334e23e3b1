package dberr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/event-scheduler/internal/errs"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// generateErrorCode builds a machine-readable code such as EVENT_NOT_FOUND from
// the collection name and the failure category.
func generateErrorCode(collection string, code Code) string {
	if collection == "" {
		collection = "RECORD"
	}

	domain := strings.ToUpper(collection)
	if strings.HasSuffix(domain, "S") && len(domain) > 1 {
		domain = domain[:len(domain)-1]
	}

	action := "ERROR"
	switch code {
	case NotFound:
		action = "NOT_FOUND"
	case DuplicateKey:
		action = "ALREADY_EXISTS"
	case Timeout:
		action = "TIMEOUT"
	case Unavailable:
		action = "UNAVAILABLE"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

// getEntityName turns "events" into "Event".
func getEntityName(collection string) string {
	if collection == "" {
		return "Record"
	}
	entity := collection
	if strings.HasSuffix(entity, "s") && len(entity) > 1 {
		entity = entity[:len(entity)-1]
	}
	return humanizeText(entity)
}

func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// HandleError converts a database error into an application error.
//
//   - *errs.HTTPError is returned unchanged
//   - missing document -> 404 <ENTITY>_NOT_FOUND
//   - duplicate key -> 400 <ENTITY>_ALREADY_EXISTS
//   - timeout or unreachable server -> 503 with a retry action
//   - anything else -> generic 500
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var dbErr *Error
	if !errors.As(err, &dbErr) {
		dbErr = &Error{Code: classify(err), driverErr: err}
	}

	errorCode := generateErrorCode(dbErr.Collection, dbErr.Code)
	entity := getEntityName(dbErr.Collection)

	switch dbErr.Code {
	case NotFound:
		return errs.NewNotFoundError(fmt.Sprintf("%s not found", entity), true, &errorCode)

	case DuplicateKey:
		return errs.NewBadRequestError(
			fmt.Sprintf("A %s with this identifier already exists", strings.ToLower(entity)),
			true, &errorCode, nil, nil)

	case Timeout, Unavailable:
		return errs.NewServiceUnavailableError("The database is temporarily unavailable")

	default:
		return errs.NewInternalServerError()
	}
}
