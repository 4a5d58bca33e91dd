package clockify

import "fmt"

// TransportError wraps any HTTP or network failure talking to the
// time-tracking service. It is fatal to the containing fetch.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("clockify: %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
