package launchpad

import "fmt"

// TransportError reports a failed round trip: connection, DNS, or request
// construction. It is fatal to the fetch call that produced it.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DeserializationError reports a payload that parsed as something other than
// the expected record shape.
type DeserializationError struct {
	Err error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("decode response: %v", e.Err)
}

func (e *DeserializationError) Unwrap() error { return e.Err }

// InvalidProjectError reports a project name the service does not answer
// with a matching project record. It covers both non-JSON error bodies and
// well-formed JSON whose self_link does not match the requested URL; the
// service produces both shapes for bad names and callers cannot tell them
// apart.
type InvalidProjectError struct {
	Name string
}

func (e *InvalidProjectError) Error() string {
	return fmt.Sprintf("invalid project %q", e.Name)
}
