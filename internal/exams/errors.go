package exams

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an operation addresses an id that is not in
// the collection.
var ErrNotFound = errors.New("exam not found")

// ValidationError reports a draft field that failed validation.
type ValidationError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	switch e.Rule {
	case "required":
		return fmt.Sprintf("%s is required", e.Field)
	case "oneof":
		return fmt.Sprintf("%s has an unknown value", e.Field)
	}
	return fmt.Sprintf("%s is invalid (%s)", e.Field, e.Rule)
}

// IOError reports that a file could not be read while encoding it.
type IOError struct {
	Name string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("reading attachment %s: %v", e.Name, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// StorageError reports that the collection could not be written.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("saving exams (%s): %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
