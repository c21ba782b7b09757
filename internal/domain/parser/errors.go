package parser

import (
	"errors"
	"fmt"
)

// Sentinel kinds for line rejections. A *ParseError unwraps to one of these.
var (
	ErrFieldCount = errors.New("wrong field count")
	ErrAge        = errors.New("invalid age")
	ErrSex        = errors.New("unrecognised sex")
	ErrTime       = errors.New("invalid time")
	ErrLineLength = errors.New("line too long")
	ErrLayout     = errors.New("unknown layout")
)

// ParseError describes one rejected input line.
type ParseError struct {
	Line   int    // 1-based line number, 0 when parsed outside a file
	Text   string // raw line
	Kind   error  // one of the sentinel kinds above
	Detail string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %v: %s", e.Line, e.Kind, e.Detail)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Detail)
}

func (e *ParseError) Unwrap() error { return e.Kind }

// Reason is a short metric-friendly label for the rejection kind.
func (e *ParseError) Reason() string {
	switch {
	case errors.Is(e.Kind, ErrFieldCount):
		return "field_count"
	case errors.Is(e.Kind, ErrAge):
		return "age"
	case errors.Is(e.Kind, ErrSex):
		return "sex"
	case errors.Is(e.Kind, ErrTime):
		return "time"
	case errors.Is(e.Kind, ErrLineLength):
		return "line_length"
	default:
		return "other"
	}
}

func newParseError(kind error, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
