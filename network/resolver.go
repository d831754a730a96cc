package network

import (
	"context"
	"net"
)

// Resolver looks up literal host names. *net.Resolver satisfies it.
type Resolver interface {
	// LookupIPAddr resolves a host to its IP addresses.
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}
