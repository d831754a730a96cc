package network

import (
	"context"
	"fmt"
	"net"
	"runtime"
	"strconv"
	"syscall"

	units "github.com/docker/go-units"
)

const (
	TCPNoDelaySetting           = "network.tcp.no_delay"
	TCPKeepAliveSetting         = "network.tcp.keep_alive"
	TCPReuseAddressSetting      = "network.tcp.reuse_address"
	TCPSendBufferSizeSetting    = "network.tcp.send_buffer_size"
	TCPReceiveBufferSizeSetting = "network.tcp.receive_buffer_size"
)

// TCPSettings are socket options applied to listeners and accepted
// connections. Zero buffer sizes keep the OS defaults.
type TCPSettings struct {
	NoDelay           bool
	KeepAlive         bool
	ReuseAddress      bool
	SendBufferSize    int64
	ReceiveBufferSize int64
}

// DefaultTCPSettings returns the settings used for unset keys.
func DefaultTCPSettings() TCPSettings {
	return TCPSettings{
		NoDelay:      true,
		KeepAlive:    true,
		ReuseAddress: runtime.GOOS != "windows",
	}
}

// TCPSettingsFrom reads the network.tcp.* keys. Buffer sizes accept
// units, e.g. 64kb or 1mb.
func TCPSettingsFrom(settings Settings) (TCPSettings, error) {
	t := DefaultTCPSettings()

	bools := []struct {
		key string
		val *bool
	}{
		{TCPNoDelaySetting, &t.NoDelay},
		{TCPKeepAliveSetting, &t.KeepAlive},
		{TCPReuseAddressSetting, &t.ReuseAddress},
	}
	for _, b := range bools {
		s := settings.Get(b.key)
		if s == "" {
			continue
		}
		v, err := strconv.ParseBool(s)
		if err != nil {
			return t, fmt.Errorf("invalid value for %s: %w", b.key, err)
		}
		*b.val = v
	}

	sizes := []struct {
		key string
		val *int64
	}{
		{TCPSendBufferSizeSetting, &t.SendBufferSize},
		{TCPReceiveBufferSizeSetting, &t.ReceiveBufferSize},
	}
	for _, sz := range sizes {
		s := settings.Get(sz.key)
		if s == "" {
			continue
		}
		v, err := units.RAMInBytes(s)
		if err != nil {
			return t, fmt.Errorf("invalid value for %s: %w", sz.key, err)
		}
		if v < 0 {
			return t, fmt.Errorf("invalid value for %s: must not be negative", sz.key)
		}
		*sz.val = v
	}

	return t, nil
}

// ListenConfig returns a net.ListenConfig applying the socket level options.
func (t TCPSettings) ListenConfig() *net.ListenConfig {
	lc := &net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				sockErr = t.control(fd)
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}
	if !t.KeepAlive {
		lc.KeepAlive = -1
	}

	return lc
}

// Listen announces on the address and applies the settings to every
// accepted connection.
func (t TCPSettings) Listen(ctx context.Context, network, address string) (net.Listener, error) {
	l, err := t.ListenConfig().Listen(ctx, network, address)
	if err != nil {
		return nil, err
	}

	return &tcpListener{Listener: l, settings: t}, nil
}

// ApplyConn sets no-delay and keep-alive on TCP connections. Other
// connection types are left alone.
func (t TCPSettings) ApplyConn(conn net.Conn) error {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}

	if err := tc.SetNoDelay(t.NoDelay); err != nil {
		return err
	}
	return tc.SetKeepAlive(t.KeepAlive)
}

type tcpListener struct {
	net.Listener
	settings TCPSettings
}

func (l *tcpListener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}

	if err := l.settings.ApplyConn(conn); err != nil {
		conn.Close()
		return nil, err
	}

	return conn, nil
}
