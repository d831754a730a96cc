package network

import (
	"fmt"
	"net"
	"strings"
)

// StackType is the preferred IP protocol family.
type StackType int

const (
	StackAny StackType = iota
	StackIPv4
	StackIPv6
)

func (s StackType) String() string {
	switch s {
	case StackIPv4:
		return "ipv4"
	case StackIPv6:
		return "ipv6"
	default:
		return "any"
	}
}

// ParseStackType parses ipv4, ipv6 or any. The empty string yields StackAny.
func ParseStackType(s string) (StackType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return StackAny, nil
	case "ipv4", "4":
		return StackIPv4, nil
	case "ipv6", "6":
		return StackIPv6, nil
	default:
		return StackAny, fmt.Errorf("invalid ip stack %q, expected one of [ipv4, ipv6, any]", s)
	}
}

// Interface describes a network interface as far as resolution cares.
type Interface struct {
	Index       int
	Name        string
	DisplayName string
	Up          bool
	Loopback    bool
}

// Utils is the OS facing side of resolution.
type Utils interface {
	// LocalAddress returns a sensible address of this host, preferring a
	// non-loopback address.
	LocalAddress() (net.IP, error)

	// AllInterfaces lists the interfaces in platform enumeration order.
	AllInterfaces() ([]Interface, error)

	// FirstNonLoopbackAddress returns the first non-loopback address of
	// iface matching stack.
	FirstNonLoopbackAddress(iface Interface, stack StackType) (net.IP, error)

	IPStackType() StackType
}
