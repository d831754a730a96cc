package config

import (
	"reflect"
	"testing"
)

func TestStore(t *testing.T) {
	settings := map[string]string{
		"network.host":      "#local#",
		"network.bind_host": "",
	}
	s := NewStore(settings)

	// the store keeps its own copy
	settings["network.host"] = "changed"

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"get", s.Get("network.host"), "#local#"},
		{"get missing", s.Get("network.publish_host"), ""},
		{"default used for empty value", s.GetDefault("network.bind_host", "network.host"), "#local#"},
		{"default used for missing key", s.GetDefault("network.publish_host", "network.host"), "#local#"},
		{"both missing", s.GetDefault("a", "b"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}

	s.Update(map[string]string{"network.bind_host": "#eth0#"})
	if got := s.GetDefault("network.bind_host", "network.host"); got != "#eth0#" {
		t.Errorf("after update got %q, want %q", got, "#eth0#")
	}
	if keys := s.Keys(); !reflect.DeepEqual(keys, []string{"network.bind_host"}) {
		t.Errorf("Keys() = %v", keys)
	}
}

func TestEnvName(t *testing.T) {
	if got := EnvName("network.tcp.send_buffer_size"); got != "NETWORK_TCP_SEND_BUFFER_SIZE" {
		t.Errorf("EnvName() = %q", got)
	}
}

func TestApplyEnvFile(t *testing.T) {
	settings := map[string]string{
		"network.publish_host": "#eth0#",
		"http.port":            "9200",
	}

	err := ApplyEnvFile("testdata/app.env", settings)
	if err != nil {
		t.Fatalf("failed to apply env file: %v", err)
	}

	expected := map[string]string{
		"network.publish_host":   "#tailscale#",
		"network.tcp.keep_alive": "false",
		"http.port":              "9300",
	}
	if !reflect.DeepEqual(expected, settings) {
		t.Errorf("expected %v, got %v", expected, settings)
	}
}

func TestApplyEnvFileMissing(t *testing.T) {
	if err := ApplyEnvFile("testdata/does-not-exist.env", map[string]string{}); err == nil {
		t.Error("expected error for missing env file")
	}
}
