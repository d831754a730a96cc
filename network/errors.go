package network

import "fmt"

// NameResolutionError is returned when the platform resolver can not
// resolve a literal host.
type NameResolutionError struct {
	Host string
	Err  error
}

func (e *NameResolutionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("failed to resolve host [%s]: no addresses found", e.Host)
	}
	return fmt.Sprintf("failed to resolve host [%s]: %v", e.Host, e.Err)
}

func (e *NameResolutionError) Unwrap() error {
	return e.Err
}

// InterfaceNotFoundError is returned when a token matches neither a
// custom resolver, the local pseudo host nor an up, non-loopback
// interface.
type InterfaceNotFoundError struct {
	Name string
}

func (e *InterfaceNotFoundError) Error() string {
	return fmt.Sprintf("failed to find network interface for [%s]", e.Name)
}
