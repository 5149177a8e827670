package domain

import (
	"errors"
	"fmt"
)

// ErrNoWords is returned by BuildWordCloud when the Details text holds no usable words.
var ErrNoWords = errors.New("no words to build a word cloud from")

// DataLoadError reports a dataset that could not be read or parsed. It is
// fatal: no partial dataset is ever returned alongside it.
type DataLoadError struct {
	Source string
	Line   int    // 1-based source line, 0 when not line specific
	Column string // offending column, empty when not column specific
	Err    error
}

func (e *DataLoadError) Error() string {
	switch {
	case e.Line > 0 && e.Column != "":
		return fmt.Sprintf("load dataset %s: line %d: column %q: %v", e.Source, e.Line, e.Column, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("load dataset %s: line %d: %v", e.Source, e.Line, e.Err)
	default:
		return fmt.Sprintf("load dataset %s: %v", e.Source, e.Err)
	}
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// MissingColumnError reports a column absent from the dataset header.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing column %q", e.Column)
}

// IsMissingColumn reports whether err is (or wraps) a MissingColumnError for column.
func IsMissingColumn(err error, column string) bool {
	var mce *MissingColumnError
	return errors.As(err, &mce) && mce.Column == column
}
