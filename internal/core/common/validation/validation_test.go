package validation

import (
	"regexp"
	"testing"
	"time"

	errors "github.com/frahmantamala/exeat-management/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fields(t *testing.T, err *errors.AppError) []string {
	t.Helper()
	require.NotNil(t, err)
	details, ok := err.Details.(errors.ValidationErrors)
	require.True(t, ok)
	var out []string
	for _, e := range details.Errors {
		out = append(out, e.Field)
	}
	return out
}

func TestRequiredAndLength(t *testing.T) {
	v := NewValidator()
	v.Field("first_name", "  ").Required()
	v.Field("reason", "x").Required().MaxLength(0)
	v.Field("password", "short").MinLength(8)

	err := v.Validate()
	assert.Equal(t, []string{"first_name", "reason", "password"}, fields(t, err))
	assert.Equal(t, errors.ErrCodeValidationFailed, err.Code)
}

func TestEmail(t *testing.T) {
	for _, good := range []string{"a@b.edu", "first.last@uni.ac.uk"} {
		v := NewValidator()
		v.Field("email", good).Required().Email()
		assert.Nil(t, v.Validate(), good)
	}
	for _, bad := range []string{"nope", "Bob <bob@x.com>", "a@localhost"} {
		v := NewValidator()
		v.Field("email", bad).Required().Email()
		assert.NotNil(t, v.Validate(), bad)
	}
}

func TestMatches(t *testing.T) {
	re := regexp.MustCompile(`^\d{4}/\d{4,5}$`)
	v := NewValidator()
	v.Field("matriculation_number", "2020/1234").Matches(re, "bad", errors.ErrCodeInvalidMatric)
	assert.Nil(t, v.Validate())

	v = NewValidator()
	v.Field("matriculation_number", "20/1").Matches(re, "bad", errors.ErrCodeInvalidMatric)
	err := v.Validate()
	details := err.Details.(errors.ValidationErrors)
	assert.Equal(t, string(errors.ErrCodeInvalidMatric), details.Errors[0].Code)
}

func TestBefore(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	v := NewValidator()
	v.Field("leave_start", start).Before(start, "leave_end", errors.ErrCodeInvalidLeaveWindow)
	assert.NotNil(t, v.Validate())

	v = NewValidator()
	v.Field("leave_start", start).Before(start.Add(time.Hour), "leave_end", errors.ErrCodeInvalidLeaveWindow)
	assert.Nil(t, v.Validate())
}

func TestIntBetween(t *testing.T) {
	v := NewValidator()
	v.Field("page_size", 101).IntBetween(1, 100, errors.ErrCodeInvalidQuery)
	v.Field("page", 1).IntBetween(1, 1<<30, errors.ErrCodeInvalidQuery)
	assert.Equal(t, []string{"page_size"}, fields(t, v.Validate()))
}
