package feed

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrOutputExists is returned when a conversion would overwrite a file
var ErrOutputExists = errors.New("already exists")

// MissingColumnError reports a column the conversion needs but the CSV lacks
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing column %q", e.Column)
}

// UnknownTypeError reports a `type` value with no media feed equivalent
type UnknownTypeError struct {
	Value string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown media type %q", e.Value)
}

// ExitMessage renders a conversion error the way the CLIs print it
func ExitMessage(err error) string {
	var missing *MissingColumnError
	var unknown *UnknownTypeError
	switch {
	case errors.Is(err, ErrOutputExists):
		return err.Error() + "; aborting"
	case errors.As(err, &missing):
		return "Missing key in input CSV: " + missing.Column
	case errors.As(err, &unknown):
		return "Missing key in input CSV: " + unknown.Value
	case errors.Is(err, fs.ErrNotExist):
		return "File doesn't exist: " + err.Error()
	case errors.Is(err, fs.ErrPermission):
		return "Permission error, failed to read file: " + err.Error()
	default:
		return err.Error()
	}
}
