package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/deppfellow/event-scheduler/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by request payloads. Validate returns nil,
// validator.ValidationErrors or CustomValidationErrors.
type Validatable interface {
	Validate() error
}

// CustomValidationError is a failure that cannot be expressed as a struct tag.
type CustomValidationError struct {
	Field   string
	Rule    string
	Message string
}

type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// instance returns the shared validator. Field names are reported using their
// json tag (or param tag for path parameters) so errors match what the client sent.
func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "param"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return fld.Name
		})

		mustRegister("iso8601", func(fl validator.FieldLevel) bool {
			return IsISO8601(fl.Field().String())
		})
		mustRegister("objectid", func(fl validator.FieldLevel) bool {
			return IsValidObjectID(fl.Field().String())
		})
	})

	return validate
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

// FieldCheck binds a Rule to the request field it validates.
type FieldCheck struct {
	field string
	rule  string
	run   func() Result
}

// Field creates a FieldCheck running rule against value.
func Field[T any](field string, value T, rule Rule[T]) FieldCheck {
	return FieldCheck{
		field: field,
		rule:  rule.Name(),
		run:   func() Result { return rule.Check(value) },
	}
}

// Struct validates payload's struct tags and then runs each check whose field
// passed its tags. A field missing altogether is reported once, as required,
// not again by its rule.
func Struct(payload any, checks ...FieldCheck) error {
	var failures CustomValidationErrors
	failed := make(map[string]bool)

	if err := instance().Struct(payload); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return err
		}
		for _, fe := range validationErrors {
			failed[fe.Field()] = true
			failures = append(failures, CustomValidationError{
				Field:   fe.Field(),
				Rule:    fe.Tag(),
				Message: tagMessage(fe),
			})
		}
	}

	for _, check := range checks {
		if failed[check.field] {
			continue
		}
		if result := check.run(); !result.Valid {
			failed[check.field] = true
			failures = append(failures, CustomValidationError{
				Field:   check.field,
				Rule:    check.rule,
				Message: result.Reason,
			})
		}
	}

	if len(failures) > 0 {
		return failures
	}
	return nil
}

// BindAndValidate binds path parameters and the JSON body into payload and
// validates it. Binding problems (malformed JSON, a string where an array was
// expected) are reported as field errors like any other validation failure.
//
// payload must be a pointer to a struct.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		return errs.NewValidationError(http.StatusBadRequest, []errs.FieldError{bindFieldError(err)})
	}

	if fieldErrors := validateStruct(payload); fieldErrors != nil {
		return errs.NewValidationError(http.StatusBadRequest, fieldErrors)
	}

	return nil
}

func bindFieldError(err error) errs.FieldError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return errs.FieldError{
			Field: field,
			Rule:  "type",
			Error: "must be " + describeType(typeErr.Type),
		}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return errs.FieldError{
			Field: "body",
			Rule:  "json",
			Error: fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset),
		}
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) && echoErr.Code == http.StatusUnsupportedMediaType {
		return errs.FieldError{
			Field: "body",
			Rule:  "content_type",
			Error: "must be sent as application/json",
		}
	}

	return errs.FieldError{
		Field: "body",
		Rule:  "bind",
		Error: "could not be read",
	}
}

func describeType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return "an array of " + kindName(t.Elem()) + "s"
	case reflect.Struct, reflect.Map:
		return "an object"
	default:
		return "a " + kindName(t)
	}
}

func kindName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Struct, reflect.Map:
		return "object"
	default:
		return "number"
	}
}

func validateStruct(v Validatable) []errs.FieldError {
	if err := v.Validate(); err != nil {
		return extractValidationError(err)
	}
	return nil
}

func extractValidationError(err error) []errs.FieldError {
	var fieldErrors []errs.FieldError

	var custom CustomValidationErrors
	if errors.As(err, &custom) {
		for _, e := range custom {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: e.Field,
				Rule:  e.Rule,
				Error: e.Message,
			})
		}
		return fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: e.Field(),
				Rule:  e.Tag(),
				Error: tagMessage(e),
			})
		}
		return fieldErrors
	}

	return []errs.FieldError{{Field: "body", Rule: "invalid", Error: err.Error()}}
}

func tagMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"

	case "min":
		if err.Type().Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", err.Param())
		}
		return fmt.Sprintf("must be at least %s", err.Param())

	case "max":
		if err.Type().Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", err.Param())
		}
		return fmt.Sprintf("must not exceed %s", err.Param())

	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())

	case "alphanum":
		return "must contain only letters and numbers"

	case "iso8601":
		return "must be an ISO-8601 date or date-time"

	case "objectid":
		return "must be a valid event identifier"

	case "dive":
		return "some items are invalid"

	default:
		if err.Param() != "" {
			return fmt.Sprintf("%s: %s:%s", err.Field(), err.Tag(), err.Param())
		}
		return fmt.Sprintf("%s: %s", err.Field(), err.Tag())
	}
}
