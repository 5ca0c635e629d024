package ml

import (
	"fmt"
	"strings"
)

// InsufficientDataError is returned when a training set is empty or contains
// only one label class. Fatal to the train step.
type InsufficientDataError struct {
	Records int
	Classes int
}

func (e *InsufficientDataError) Error() string {
	if e.Records == 0 {
		return "cannot train on an empty dataset"
	}
	return fmt.Sprintf("cannot train on %d records spanning %d label class(es); need both success and failure samples",
		e.Records, e.Classes)
}

// SchemaMismatchError is returned when a dataset's columns do not match the
// feature schema a model was trained on. Fatal to the evaluate step.
type SchemaMismatchError struct {
	Want []string
	Got  []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("dataset columns do not match model feature schema: want [%s], got [%s]",
		strings.Join(e.Want, ", "), strings.Join(e.Got, ", "))
}
