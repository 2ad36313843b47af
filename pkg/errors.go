package eeglab

import (
	"errors"
	"fmt"
)

var (
	// ErrSchema is matched by every error caused by a dataset that does not
	// have the shape the decoder needs.
	ErrSchema = errors.New("schema violation")
	// ErrShortRead is matched when storage holds fewer samples than the
	// header implies.
	ErrShortRead = errors.New("short read")
)

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error { return e.Err }

// ErrMissingField represents a header field that is not present.
type ErrMissingField struct {
	Field string
}

func (e *ErrMissingField) Error() string {
	return fmt.Sprintf("missing field %q", e.Field)
}

func (e *ErrMissingField) Is(target error) bool { return target == ErrSchema }

// ErrFieldType represents a header field with an unexpected shape.
type ErrFieldType struct {
	Field string
	Want  string
	Got   any
}

func (e *ErrFieldType) Error() string {
	return fmt.Sprintf("field %q: expected %s, got %T", e.Field, e.Want, e.Got)
}

func (e *ErrFieldType) Is(target error) bool { return target == ErrSchema }

// ErrTrialCount is returned when a continuous recording has trials != 1.
type ErrTrialCount struct {
	Trials int
}

func (e *ErrTrialCount) Error() string {
	return fmt.Sprintf("the number of trials is %d, it must be 1 for raw files", e.Trials)
}

func (e *ErrTrialCount) Is(target error) bool { return target == ErrSchema }

// ErrAmbiguousAnnotation is returned when an epoch does not carry exactly one
// event label.
type ErrAmbiguousAnnotation struct {
	Trial  int
	Labels int
}

func (e *ErrAmbiguousAnnotation) Error() string {
	return fmt.Sprintf("ambiguous annotation on epoch %d: %d event labels, an epoch can have only one event", e.Trial, e.Labels)
}

func (e *ErrAmbiguousAnnotation) Is(target error) bool { return target == ErrSchema }

// ErrUnknownLabel is returned when an epoch label is missing from an explicit
// event id map.
type ErrUnknownLabel struct {
	Trial int
	Label string
}

func (e *ErrUnknownLabel) Error() string {
	return fmt.Sprintf("epoch %d: event label %q not present in event id map", e.Trial, e.Label)
}

func (e *ErrUnknownLabel) Is(target error) bool { return target == ErrSchema }

// ErrNoMatchingEvents is returned when a requested event id has no rows in the
// event table.
type ErrNoMatchingEvents struct {
	Label string
	Code  int
}

func (e *ErrNoMatchingEvents) Error() string {
	return fmt.Sprintf("no matching events found for %s (event id %d)", e.Label, e.Code)
}

func (e *ErrNoMatchingEvents) Is(target error) bool { return target == ErrSchema }

// ErrShortData is returned when a data file ends before the requested samples.
type ErrShortData struct {
	Filename string
	Want     int
	Got      int
}

func (e *ErrShortData) Error() string {
	return fmt.Sprintf("error reading %q: expected %d values, got %d", e.Filename, e.Want, e.Got)
}

func (e *ErrShortData) Is(target error) bool { return target == ErrShortRead }

// ErrCreateGroup represents an error when creating a group.
type ErrCreateGroup struct {
	GroupName string
	Err       error
}

func (e *ErrCreateGroup) Error() string {
	return fmt.Sprintf("error creating group %q: %v", e.GroupName, e.Err)
}

func (e *ErrCreateGroup) Unwrap() error { return e.Err }

// ErrCreateTable represents an error when creating a table.
type ErrCreateTable struct {
	TableName string
	Err       error
}

func (e *ErrCreateTable) Error() string {
	return fmt.Sprintf("error creating table %q: %v", e.TableName, e.Err)
}

func (e *ErrCreateTable) Unwrap() error { return e.Err }
