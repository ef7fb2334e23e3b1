package dberr

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/deppfellow/event-scheduler/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func toHTTPError(t *testing.T, err error) *errs.HTTPError {
	t.Helper()

	var httpErr *errs.HTTPError
	require.ErrorAs(t, HandleError(err), &httpErr)
	return httpErr
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(nil, "events", "find"))

	err := Wrap(mongo.ErrNoDocuments, "events", "find")
	assert.Equal(t, NotFound, ErrCode(err))
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
	assert.Equal(t, "find events: not_found: mongo: no documents in result", err.Error())

	again := Wrap(err, "other", "update")
	assert.Same(t, err, again, "already wrapped errors keep their origin")

	assert.Equal(t, Timeout, ErrCode(Wrap(context.DeadlineExceeded, "events", "insert")))
	assert.Equal(t, Other, ErrCode(errors.New("plain")))
}

func TestHandleError_NotFound(t *testing.T) {
	httpErr := toHTTPError(t, Wrap(mongo.ErrNoDocuments, "events", "find"))

	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "EVENT_NOT_FOUND", httpErr.Code)
	assert.Equal(t, "Event not found", httpErr.Message)
	assert.True(t, httpErr.Override)
}

func TestHandleError_DuplicateKey(t *testing.T) {
	dup := mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}},
	}

	httpErr := toHTTPError(t, Wrap(dup, "events", "insert"))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "EVENT_ALREADY_EXISTS", httpErr.Code)
}

func TestHandleError_Timeout(t *testing.T) {
	httpErr := toHTTPError(t, Wrap(context.DeadlineExceeded, "events", "find"))

	assert.Equal(t, http.StatusServiceUnavailable, httpErr.Status)
	require.NotNil(t, httpErr.Action)
	assert.Equal(t, errs.ActionTypeRetry, httpErr.Action.Type)
}

func TestHandleError_Unknown(t *testing.T) {
	httpErr := toHTTPError(t, errors.New("connection reset: secret host 10.0.0.1"))

	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
	assert.NotContains(t, httpErr.Message, "10.0.0.1")
	assert.False(t, httpErr.Override)
}

func TestHandleError_PassesHTTPErrorThrough(t *testing.T) {
	original := errs.NewTooManyRequestsError("slow down")
	assert.Same(t, original, HandleError(original))
}
