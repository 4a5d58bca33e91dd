package report

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyResult means no time entries were left after the date window or a
// filter; no output file is produced.
var ErrEmptyResult = errors.New("no time entries match the selection")

// FormatError is an unparseable date string.
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unrecognized date %q (expected one of D-M, D-M-Y, D.M, D.M.Y, D/M/Y, Y-M-D)", e.Input)
}

// NotFoundError is an unknown client or project name. Available lists the
// valid options for the operator.
type NotFoundError struct {
	Kind      string // "client" or "project"
	Name      string
	Available []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found, available: %s", e.Kind, e.Name, strings.Join(e.Available, ", "))
}

// AmbiguousClientError is a client name shared by more than one client id.
// The operator has to disambiguate; the filter never picks one silently.
type AmbiguousClientError struct {
	Name string
	IDs  []string
}

func (e *AmbiguousClientError) Error() string {
	return fmt.Sprintf("client name %q maps to multiple ids: %s", e.Name, strings.Join(e.IDs, ", "))
}
