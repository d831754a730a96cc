// Package netutils enumerates the host's network interfaces and picks
// local addresses for the network package.
package netutils

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/czerwonk/hostaddr_exporter/network"
)

// NoAddressError is returned when an interface has no non-loopback
// address of the requested stack.
type NoAddressError struct {
	Interface string
	Stack     network.StackType
}

func (e *NoAddressError) Error() string {
	return fmt.Sprintf("no non-loopback %s address found on interface [%s]", e.Stack, e.Interface)
}

// Utils implements network.Utils on top of the net package.
type Utils struct {
	stack    network.StackType
	resolver network.Resolver

	interfaces func() ([]net.Interface, error)
	addrs      func(iface net.Interface) ([]net.Addr, error)
	hostname   func() (string, error)
}

// New returns Utils preferring addresses of the given stack. A nil
// resolver falls back to net.DefaultResolver.
func New(stack network.StackType, resolver network.Resolver) *Utils {
	if resolver == nil {
		resolver = net.DefaultResolver
	}

	return &Utils{
		stack:      stack,
		resolver:   resolver,
		interfaces: net.Interfaces,
		addrs:      func(iface net.Interface) ([]net.Addr, error) { return iface.Addrs() },
		hostname:   os.Hostname,
	}
}

func (u *Utils) IPStackType() network.StackType {
	return u.stack
}

func (u *Utils) AllInterfaces() ([]network.Interface, error) {
	ifaces, err := u.interfaces()
	if err != nil {
		return nil, fmt.Errorf("could not list network interfaces: %w", err)
	}

	result := make([]network.Interface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = toInterface(iface)
	}

	return result, nil
}

func (u *Utils) FirstNonLoopbackAddress(iface network.Interface, stack network.StackType) (net.IP, error) {
	ifaces, err := u.interfaces()
	if err != nil {
		return nil, fmt.Errorf("could not list network interfaces: %w", err)
	}

	for _, ni := range ifaces {
		if ni.Index != iface.Index || ni.Name != iface.Name {
			continue
		}

		ip, err := u.firstNonLoopback(ni, stack)
		if err != nil {
			return nil, err
		}
		if ip == nil {
			return nil, &NoAddressError{Interface: iface.Name, Stack: stack}
		}
		return ip, nil
	}

	return nil, &network.InterfaceNotFoundError{Name: iface.Name}
}

// LocalAddress returns the address the host name resolves to unless it is
// a loopback address. Otherwise the first non-loopback address of any up
// interface is used, and loopback as the last resort.
func (u *Utils) LocalAddress() (net.IP, error) {
	if ip := u.hostAddress(); ip != nil {
		return ip, nil
	}

	ifaces, err := u.interfaces()
	if err != nil {
		return nil, fmt.Errorf("could not list network interfaces: %w", err)
	}

	for _, ni := range ifaces {
		if ni.Flags&net.FlagUp == 0 || ni.Flags&net.FlagLoopback != 0 {
			continue
		}

		ip, err := u.firstNonLoopback(ni, u.stack)
		if err != nil {
			return nil, err
		}
		if ip != nil {
			return ip, nil
		}
	}

	if u.stack == network.StackIPv6 {
		return net.IPv6loopback, nil
	}
	return net.IPv4(127, 0, 0, 1), nil
}

func (u *Utils) hostAddress() net.IP {
	name, err := u.hostname()
	if err != nil || name == "" {
		return nil
	}

	addrs, err := u.resolver.LookupIPAddr(context.Background(), name)
	if err != nil {
		return nil
	}

	for _, addr := range addrs {
		if !addr.IP.IsLoopback() && matchesStack(addr.IP, u.stack) {
			return addr.IP
		}
	}

	return nil
}

func (u *Utils) firstNonLoopback(ni net.Interface, stack network.StackType) (net.IP, error) {
	addrs, err := u.addrs(ni)
	if err != nil {
		return nil, fmt.Errorf("could not get addresses of interface %s: %w", ni.Name, err)
	}

	for _, addr := range addrs {
		ip := addrIP(addr)
		if ip == nil || ip.IsLoopback() {
			continue
		}
		if matchesStack(ip, stack) {
			return ip, nil
		}
	}

	return nil, nil
}

func toInterface(iface net.Interface) network.Interface {
	return network.Interface{
		Index:       iface.Index,
		Name:        iface.Name,
		DisplayName: iface.Name,
		Up:          iface.Flags&net.FlagUp != 0,
		Loopback:    iface.Flags&net.FlagLoopback != 0,
	}
}

func addrIP(addr net.Addr) net.IP {
	switch a := addr.(type) {
	case *net.IPNet:
		return a.IP
	case *net.IPAddr:
		return a.IP
	default:
		return nil
	}
}

func matchesStack(ip net.IP, stack network.StackType) bool {
	switch stack {
	case network.StackIPv4:
		return ip.To4() != nil
	case network.StackIPv6:
		return ip.To4() == nil
	default:
		return true
	}
}
