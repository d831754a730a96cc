package network

import (
	"context"
	"net"
	"testing"
)

func TestTCPSettingsFrom(t *testing.T) {
	tests := []struct {
		name     string
		settings fakeSettings
		want     TCPSettings
		wantErr  bool
	}{
		{
			name:     "defaults",
			settings: fakeSettings{},
			want:     DefaultTCPSettings(),
		},
		{
			name: "all set",
			settings: fakeSettings{
				TCPNoDelaySetting:           "false",
				TCPKeepAliveSetting:         "false",
				TCPReuseAddressSetting:      "true",
				TCPSendBufferSizeSetting:    "64kb",
				TCPReceiveBufferSizeSetting: "1mb",
			},
			want: TCPSettings{
				NoDelay:           false,
				KeepAlive:         false,
				ReuseAddress:      true,
				SendBufferSize:    64 * 1024,
				ReceiveBufferSize: 1024 * 1024,
			},
		},
		{
			name:     "invalid bool",
			settings: fakeSettings{TCPNoDelaySetting: "sometimes"},
			wantErr:  true,
		},
		{
			name:     "invalid size",
			settings: fakeSettings{TCPSendBufferSizeSetting: "lots"},
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TCPSettingsFrom(tt.settings)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("TCPSettingsFrom() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTCPSettingsListen(t *testing.T) {
	settings := TCPSettings{
		NoDelay:           false,
		KeepAlive:         true,
		ReuseAddress:      true,
		SendBufferSize:    32 * 1024,
		ReceiveBufferSize: 32 * 1024,
	}

	l, err := settings.Listen(context.Background(), "tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() failed: %v", err)
	}
	defer l.Close()

	accepted := make(chan error, 1)
	go func() {
		conn, err := l.Accept()
		if err == nil {
			conn.Close()
		}
		accepted <- err
	}()

	conn, err := net.Dial("tcp4", l.Addr().String())
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	defer conn.Close()

	if err := <-accepted; err != nil {
		t.Errorf("Accept() failed: %v", err)
	}
}
