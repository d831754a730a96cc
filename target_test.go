package main

import (
	"net"
	"testing"
)

func Test_ipVersion_String(t *testing.T) {
	tests := []struct {
		name string
		ipv  ipVersion
		want string
	}{
		{
			"ipv6",
			ipv6,
			"6",
		},
		{
			"ipv4",
			ipv4,
			"4",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ipv.String(); got != tt.want {
				t.Errorf("IPVersion.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_getIPVersion(t *testing.T) {
	tests := []struct {
		name string
		addr net.IPAddr
		want ipVersion
	}{
		{
			"ipv4",
			net.IPAddr{IP: net.ParseIP("127.0.0.1")},
			ipv4,
		},
		{
			"ipv6",
			net.IPAddr{IP: net.ParseIP("::1")},
			ipv6,
		},
		{
			"ipv4-mapped",
			net.IPAddr{IP: net.ParseIP("::ffff:10.0.0.1")},
			ipv4,
		},
		{
			"ipv6-global",
			net.IPAddr{IP: net.ParseIP("2607:f8b0:4005:810::200e")},
			ipv6,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getIPVersion(tt.addr); got != tt.want {
				t.Errorf("getIPVersion() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_target_nameForIP(t *testing.T) {
	tests := []struct {
		name string
		addr net.IPAddr
		want string
	}{
		{
			"ipv4-localhost",
			net.IPAddr{IP: net.ParseIP("127.0.0.1")},
			"publish 127.0.0.1 4",
		},
		{
			"ipv6-localhost",
			net.IPAddr{IP: net.ParseIP("::1")},
			"publish ::1 6",
		},
		{
			"ipv4-private",
			net.IPAddr{IP: net.ParseIP("10.0.0.5")},
			"publish 10.0.0.5 4",
		},
	}
	for _, tt := range tests {
		tr := &target{role: rolePublish}
		t.Run(tt.name, func(t *testing.T) {
			if got := tr.nameForIP(tt.addr); got != tt.want {
				t.Errorf("target.nameForIP() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_listenAddress(t *testing.T) {
	tests := []struct {
		name string
		ip   net.IP
		want string
	}{
		{"all interfaces", nil, ":9428"},
		{"ipv4", net.ParseIP("10.0.0.5"), "10.0.0.5:9428"},
		{"ipv6", net.ParseIP("2001:db8::1"), "[2001:db8::1]:9428"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := listenAddress(tt.ip, 9428); got != tt.want {
				t.Errorf("listenAddress() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_rttUnitFromString(t *testing.T) {
	tests := map[string]rttUnit{
		"ms":   rttInMills,
		"s":    rttInSeconds,
		"both": rttBoth,
		"us":   rttInvalid,
	}
	for s, want := range tests {
		if got := rttUnitFromString(s); got != want {
			t.Errorf("rttUnitFromString(%q) = %v, want %v", s, got, want)
		}
	}
}
