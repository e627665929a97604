package service

import (
	"errors"
	"regexp"
	"time"
)

// DateLayout is the ISO-8601 calendar date layout used by the dataset.
const DateLayout = "2006-01-02"

var (
	// ErrInvalidFormat marks a date that is not a YYYY-MM-DD calendar date.
	ErrInvalidFormat = errors.New("invalid date format")
	// ErrOutOfRange marks a well-formed date outside the dataset's bounds.
	ErrOutOfRange = errors.New("date out of range")
	// ErrStoreUnavailable wraps any failure reaching or querying the store.
	ErrStoreUnavailable = errors.New("store unavailable")
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// DateError is a validation failure whose message is safe to show to callers.
type DateError struct {
	kind error
	msg  string
}

func (e *DateError) Error() string { return e.msg }

func (e *DateError) Unwrap() error { return e.kind }

func newDateError(kind error, msg string) *DateError {
	return &DateError{kind: kind, msg: msg}
}

// ParseDate accepts exactly YYYY-MM-DD naming a real calendar day.
func ParseDate(s string) (time.Time, error) {
	if !datePattern.MatchString(s) {
		return time.Time{}, ErrInvalidFormat
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidFormat
	}
	return t, nil
}
