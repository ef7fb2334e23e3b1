package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/event-scheduler/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type windowRequest struct {
	Days  []string `json:"days" validate:"required"`
	Start string   `json:"start" validate:"required,iso8601"`
	End   string   `json:"end" validate:"required,iso8601"`
}

func (r *windowRequest) Validate() error {
	return Struct(r,
		Field("days", r.Days, DaysRule),
		Field("start", TimeWindow{Start: r.Start, End: r.End}, TimeWindowRule),
	)
}

type idRequest struct {
	ID   string `param:"id" json:"-" validate:"required,objectid"`
	Name string `json:"name" validate:"required,alphanum"`
}

func (r *idRequest) Validate() error {
	return Struct(r)
}

func newContext(method, body string, params ...string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	if len(params) > 0 {
		var names, values []string
		for i := 0; i+1 < len(params); i += 2 {
			names = append(names, params[i])
			values = append(values, params[i+1])
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	return c
}

func fieldErrors(t *testing.T, err error) []errs.FieldError {
	t.Helper()

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "BAD_REQUEST", httpErr.Code)
	assert.Equal(t, "Validation failed", httpErr.Message)
	return httpErr.Errors
}

func TestInstance_RegistersCustomTags(t *testing.T) {
	v := instance()

	assert.NoError(t, v.Var("2024-01-01 10:00:00z", "iso8601"))
	assert.Error(t, v.Var("10am", "iso8601"))
	assert.NoError(t, v.Var("507f1f77bcf86cd799439011", "objectid"))
	assert.Error(t, v.Var("xyz", "objectid"))
}

func TestMustRegister_PanicsOnRejectedTag(t *testing.T) {
	instance()

	assert.Panics(t, func() {
		mustRegister("", func(validator.FieldLevel) bool { return true })
	})
}

func TestStruct_TagsThenRules(t *testing.T) {
	err := (&windowRequest{}).Validate()

	var failures CustomValidationErrors
	require.ErrorAs(t, err, &failures)

	fields := map[string]string{}
	for _, f := range failures {
		fields[f.Field] = f.Rule
	}
	assert.Equal(t, map[string]string{"days": "required", "start": "required", "end": "required"}, fields)
}

func TestStruct_RuleFailureReportedOnField(t *testing.T) {
	err := (&windowRequest{
		Days:  []string{"Mon"},
		Start: "2024-01-01T12:00:00Z",
		End:   "2024-01-01T10:00:00Z",
	}).Validate()

	var failures CustomValidationErrors
	require.ErrorAs(t, err, &failures)
	require.Len(t, failures, 1)
	assert.Equal(t, CustomValidationError{
		Field:   "start",
		Rule:    "start_before_end",
		Message: "end time must be after start time",
	}, failures[0])
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, (&windowRequest{
		Days:  []string{"Mon", "Wed"},
		Start: "2024-01-01T10:00:00Z",
		End:   "2024-01-01T12:00:00Z",
	}).Validate())
}

func TestBindAndValidate(t *testing.T) {
	t.Run("valid body and path", func(t *testing.T) {
		c := newContext(http.MethodPut, `{"name":"user1"}`, "id", "507f1f77bcf86cd799439011")
		req := &idRequest{}

		require.NoError(t, BindAndValidate(c, req))
		assert.Equal(t, "507f1f77bcf86cd799439011", req.ID)
		assert.Equal(t, "user1", req.Name)
	})

	t.Run("invalid object id", func(t *testing.T) {
		c := newContext(http.MethodPut, `{"name":"user1"}`, "id", "123")

		errors := fieldErrors(t, BindAndValidate(c, &idRequest{}))
		require.Len(t, errors, 1)
		assert.Equal(t, errs.FieldError{Field: "id", Rule: "objectid", Error: "must be a valid event identifier"}, errors[0])
	})

	t.Run("non alphanumeric name", func(t *testing.T) {
		c := newContext(http.MethodPut, `{"name":"user 1!"}`, "id", "507f1f77bcf86cd799439011")

		errors := fieldErrors(t, BindAndValidate(c, &idRequest{}))
		require.Len(t, errors, 1)
		assert.Equal(t, "name", errors[0].Field)
		assert.Equal(t, "alphanum", errors[0].Rule)
	})

	t.Run("string where array expected", func(t *testing.T) {
		c := newContext(http.MethodPost, `{"days":"Mon","start":"2024-01-01","end":"2024-01-02"}`)

		errors := fieldErrors(t, BindAndValidate(c, &windowRequest{}))
		require.Len(t, errors, 1)
		assert.Equal(t, errs.FieldError{Field: "days", Rule: "type", Error: "must be an array of strings"}, errors[0])
	})

	t.Run("malformed json", func(t *testing.T) {
		c := newContext(http.MethodPost, `{"days": ]}`)

		errors := fieldErrors(t, BindAndValidate(c, &windowRequest{}))
		require.Len(t, errors, 1)
		assert.Equal(t, "body", errors[0].Field)
		assert.Equal(t, "json", errors[0].Rule)
	})

	t.Run("empty body reports required fields", func(t *testing.T) {
		c := newContext(http.MethodPost, "")

		errors := fieldErrors(t, BindAndValidate(c, &windowRequest{}))
		assert.Len(t, errors, 3)
	})
}
