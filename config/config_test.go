package config

import (
	"os"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestParseConfig(t *testing.T) {
	f, err := os.Open("testdata/config_test.yml")
	if err != nil {
		t.Error("failed to open file", err)
		t.FailNow()
	}

	c, err := FromYAML(f)
	f.Close()
	if err != nil {
		t.Error("failed to parse", err)
		t.FailNow()
	}

	if expected := uint16(9500); c.Web.ListenPort != expected {
		t.Errorf("expected web.listen-port to be %d, got %d", expected, c.Web.ListenPort)
	}
	if expected := "/custom-metrics"; c.Web.TelemetryPath != expected {
		t.Errorf("expected web.telemetry-path to be %q, got %q", expected, c.Web.TelemetryPath)
	}
	if expected := "1.1.1.1"; c.DNS.Nameserver != expected {
		t.Errorf("expected dns.nameserver to be %q, got %q", expected, c.DNS.Nameserver)
	}

	if expected := 2 * time.Second; time.Duration(c.Ping.Interval) != expected {
		t.Errorf("expected ping.interval to be %v, got %v", expected, c.Ping.Interval)
	}
	if expected := 3 * time.Second; time.Duration(c.Ping.Timeout) != expected {
		t.Errorf("expected ping.timeout to be %v, got %v", expected, c.Ping.Timeout)
	}
	if expected := 42; c.Ping.History != expected {
		t.Errorf("expected ping.history-size to be %d, got %d", expected, c.Ping.History)
	}
	if expected := 120; c.Ping.Size != uint16(expected) {
		t.Errorf("expected ping.payload-size to be %d, got %d", expected, c.Ping.Size)
	}

	if expected := (CloudConfig{EC2: true, Tailscale: true}); c.Cloud != expected {
		t.Errorf("expected cloud to be %+v, got %+v", expected, c.Cloud)
	}

	settings := map[string]string{
		"network.host":                 "#local#",
		"network.bind_host":            "0.0.0.0",
		"network.publish_host":         "#eth0#",
		"network.ip_stack":             "ipv4",
		"network.tcp.no_delay":         "false",
		"network.tcp.send_buffer_size": "64kb",
		"transport.profile":            "default",
		"http.port":                    "9200",
	}
	if !reflect.DeepEqual(settings, c.Settings) {
		t.Errorf("expected settings %v, got %v", settings, c.Settings)
	}
}

func TestParseEmptyConfig(t *testing.T) {
	c, err := FromYAML(strings.NewReader(""))
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	if len(c.Settings) != 0 {
		t.Errorf("expected no settings, got %v", c.Settings)
	}
}

func TestParseConfigRejectsLists(t *testing.T) {
	_, err := FromYAML(strings.NewReader("network:\n  host:\n    - a\n    - b\n"))
	if err == nil {
		t.Error("expected error for list valued setting")
	}
}
