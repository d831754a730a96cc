package network

import (
	"context"
	"errors"
	"net"
)

type fakeSettings map[string]string

func (s fakeSettings) Get(key string) string {
	return s[key]
}

func (s fakeSettings) GetDefault(key, defaultKey string) string {
	if v := s[key]; v != "" {
		return v
	}
	return s[defaultKey]
}

type fakeUtils struct {
	local  net.IP
	ifaces []Interface
	addrs  map[string]net.IP
	stack  StackType
}

func (u *fakeUtils) LocalAddress() (net.IP, error) {
	return u.local, nil
}

func (u *fakeUtils) AllInterfaces() ([]Interface, error) {
	return u.ifaces, nil
}

func (u *fakeUtils) FirstNonLoopbackAddress(iface Interface, stack StackType) (net.IP, error) {
	return u.addrs[iface.Name], nil
}

func (u *fakeUtils) IPStackType() StackType {
	return u.stack
}

type fakeResolver map[string][]net.IPAddr

var errNoSuchHost = errors.New("no such host")

func (r fakeResolver) LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error) {
	addrs, found := r[host]
	if !found {
		return nil, errNoSuchHost
	}
	return addrs, nil
}

func newTestUtils() *fakeUtils {
	return &fakeUtils{
		local: net.ParseIP("192.168.1.10"),
		ifaces: []Interface{
			{Index: 1, Name: "lo", DisplayName: "lo", Up: true, Loopback: true},
			{Index: 2, Name: "eth0", DisplayName: "Ethernet 0", Up: true},
			{Index: 3, Name: "eth1", DisplayName: "eth1", Up: false},
		},
		addrs: map[string]net.IP{
			"lo":   net.ParseIP("127.0.0.1"),
			"eth0": net.ParseIP("10.0.0.5"),
			"eth1": net.ParseIP("10.0.1.5"),
		},
	}
}

func newTestResolver() fakeResolver {
	return fakeResolver{
		"x.example.com": {{IP: net.ParseIP("203.0.113.1")}},
		"y.example.com": {{IP: net.ParseIP("203.0.113.2")}},
		"z.example.com": {{IP: net.ParseIP("203.0.113.3")}, {IP: net.ParseIP("203.0.113.4")}},
		"any.example":   {{IP: net.IPv4zero}},
		"empty.example": {},
	}
}

func newTestService(settings fakeSettings) *Service {
	return NewService(settings, newTestUtils(), newTestResolver())
}
