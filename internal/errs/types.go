package errs

import "strings"

// FieldError is a single field-level validation failure.
//
//	{ "field": "startTime", "rule": "start_before_end", "error": "end time must be after start time" }
type FieldError struct {
	// Field is the request field the error relates to (e.g. "days").
	Field string `json:"field"`

	// Rule is the name of the rule that failed (e.g. "required", "days").
	Rule string `json:"rule,omitempty"`

	// Error is the human-readable error message.
	Error string `json:"error"`
}

// ActionType describes what the client should do next.
type ActionType string

const (
	ActionTypeRedirect ActionType = "redirect"
	ActionTypeRetry    ActionType = "retry"
)

// Action is an optional instruction for the client, e.g. retry after the
// database becomes reachable again.
type Action struct {
	Type    ActionType `json:"type"`
	Message string     `json:"message"`
	Value   string     `json:"value"`
}

// HTTPError is the error type every handler returns to the global error handler.
// It is serialized to JSON as-is.
//
// Override tells the error handler the message is safe to show to end users.
type HTTPError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Status   int    `json:"status"`
	Override bool   `json:"override"`

	// Errors holds field-level validation errors.
	Errors []FieldError `json:"errors"`

	Action *Action `json:"action"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is an *HTTPError. Code and status are not compared.
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)

	return ok
}

// WithStatus returns a copy of e answering with a different HTTP status.
// The code is kept so clients can still tell what kind of failure happened.
func (e *HTTPError) WithStatus(status int) *HTTPError {
	return &HTTPError{
		Code:     e.Code,
		Message:  e.Message,
		Status:   status,
		Override: e.Override,
		Errors:   e.Errors,
		Action:   e.Action,
	}
}

// MakeUpperCaseWithUnderscores turns "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
