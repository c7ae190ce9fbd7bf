package config

import "fmt"

// Error is a fatal, pre-run configuration problem: a bad directory, a malformed date
// window, an empty report selection or an invalid challan.yaml. Nothing has been read
// or written when one is returned.
type Error struct {
	Msg string
}

func (e *Error) Error() string {
	return "configuration: " + e.Msg
}

// Errorf builds an *Error from a format string.
func Errorf(format string, args ...any) *Error {
	return &Error{Msg: fmt.Sprintf(format, args...)}
}
