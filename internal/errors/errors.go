package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/julianstephens/habitgrid/internal/logger"
)

// Kind classifies an error raised by the habits engine.
type Kind string

const (
	// Habit shape
	KindEmptyName        Kind = "empty_name"
	KindNameTooLong      Kind = "name_too_long"
	KindInvalidFrequency Kind = "invalid_frequency"
	KindEmptyDaySet      Kind = "empty_day_set"
	KindInvalidDayName   Kind = "invalid_day_name"
	KindInvalidColor     Kind = "invalid_color"
	KindInvalidVariant   Kind = "invalid_variant"

	// Entry shape
	KindMissingHabitID   Kind = "missing_habit_id"
	KindInvalidDate      Kind = "invalid_date"
	KindFutureDate       Kind = "future_date"
	KindRatingOutOfRange Kind = "rating_out_of_range"

	// Referential and domain rules
	KindHabitNotFound      Kind = "habit_not_found"
	KindEntryNotFound      Kind = "entry_not_found"
	KindNotScheduled       Kind = "not_scheduled_for_this_day"
	KindDuplicateEntry     Kind = "duplicate_entry"
	KindSystemDefinedHabit Kind = "system_defined_habit"

	// KindStorage wraps unexpected storage failures. It is the only retryable kind.
	KindStorage Kind = "storage"
)

// Sentinels for errors.Is matching. Only the Kind is compared.
var (
	ErrEmptyName          = &Error{Kind: KindEmptyName}
	ErrNameTooLong        = &Error{Kind: KindNameTooLong}
	ErrInvalidFrequency   = &Error{Kind: KindInvalidFrequency}
	ErrEmptyDaySet        = &Error{Kind: KindEmptyDaySet}
	ErrInvalidDayName     = &Error{Kind: KindInvalidDayName}
	ErrInvalidColor       = &Error{Kind: KindInvalidColor}
	ErrInvalidVariant     = &Error{Kind: KindInvalidVariant}
	ErrMissingHabitID     = &Error{Kind: KindMissingHabitID}
	ErrInvalidDate        = &Error{Kind: KindInvalidDate}
	ErrFutureDate         = &Error{Kind: KindFutureDate}
	ErrRatingOutOfRange   = &Error{Kind: KindRatingOutOfRange}
	ErrHabitNotFound      = &Error{Kind: KindHabitNotFound}
	ErrEntryNotFound      = &Error{Kind: KindEntryNotFound}
	ErrNotScheduled       = &Error{Kind: KindNotScheduled}
	ErrDuplicateEntry     = &Error{Kind: KindDuplicateEntry}
	ErrSystemDefinedHabit = &Error{Kind: KindSystemDefinedHabit}
	ErrStorage            = &Error{Kind: KindStorage}
)

// Error is the error type returned by validation, the completion store and the stats engine.
type Error struct {
	Kind    Kind
	Message string
	// Weekday names the offending day for KindNotScheduled
	Weekday string
	// Invalid lists every rejected value for KindInvalidDayName
	Invalid []string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Message != "" {
		b.WriteString(e.Message)
	} else {
		b.WriteString(string(e.Kind))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match when target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New creates an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Storage wraps an unexpected storage failure for the named operation.
// Errors that already carry a Kind pass through untouched.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) {
		return err
	}
	return Wrap(KindStorage, err, op+" failed")
}

// KindOf returns the Kind of err, or "" when err does not carry one.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Retryable reports whether the operation may succeed if retried unchanged.
func Retryable(err error) bool {
	return KindOf(err) == KindStorage
}

// IsValidation reports whether err is an input-shape error the caller must fix.
func IsValidation(err error) bool {
	switch KindOf(err) {
	case KindEmptyName, KindNameTooLong, KindInvalidFrequency, KindEmptyDaySet,
		KindInvalidDayName, KindInvalidColor, KindInvalidVariant,
		KindMissingHabitID, KindInvalidDate, KindFutureDate, KindRatingOutOfRange:
		return true
	}
	return false
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err, "kind", KindOf(err))
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
