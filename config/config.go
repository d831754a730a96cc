package config

import (
	"bytes"
	"fmt"
	"io"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// Config represents configuration for the exporter
type Config struct {
	Web struct {
		ListenPort    uint16 `yaml:"listen-port"`
		TelemetryPath string `yaml:"telemetry-path"`
	} `yaml:"web"`

	Ping struct {
		Disabled bool     `yaml:"disabled"`
		Interval duration `yaml:"interval"`
		Timeout  duration `yaml:"timeout"`
		History  int      `yaml:"history-size"`
		Size     uint16   `yaml:"payload-size"`
	} `yaml:"ping"`

	DNS struct {
		Nameserver string `yaml:"nameserver"`
	} `yaml:"dns"`

	Cloud CloudConfig `yaml:"cloud"`

	// Settings holds the flattened network section and everything below
	// settings, keyed like network.bind_host.
	Settings map[string]string `yaml:"-"`
}

// CloudConfig enables the custom name resolvers.
type CloudConfig struct {
	EC2        bool `yaml:"ec2"`
	GCE        bool `yaml:"gce"`
	Tailscale  bool `yaml:"tailscale"`
	Kubernetes bool `yaml:"kubernetes"`
}

type duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler interface.
func (d *duration) UnmarshalYAML(unmashal func(interface{}) error) error {
	var s string
	if err := unmashal(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = duration(dur)
	return nil
}

// Duration is a convenience getter.
func (d duration) Duration() time.Duration {
	return time.Duration(d)
}

// Set updates the underlying duration.
func (d *duration) Set(dur time.Duration) {
	*d = duration(dur)
}

// FromYAML reads YAML from reader and unmarshals it to Config
func FromYAML(r io.Reader) (*Config, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	c := &Config{}
	err = yaml.NewDecoder(bytes.NewReader(b)).Decode(c)
	if err != nil && err != io.EOF {
		return nil, err
	}

	var raw map[interface{}]interface{}
	err = yaml.Unmarshal(b, &raw)
	if err != nil {
		return nil, err
	}

	c.Settings = make(map[string]string)
	if network, found := raw["network"]; found {
		if err := flatten("network", network, c.Settings); err != nil {
			return nil, err
		}
	}
	if settings, found := raw["settings"]; found {
		if err := flatten("", settings, c.Settings); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func flatten(prefix string, v interface{}, out map[string]string) error {
	switch x := v.(type) {
	case map[interface{}]interface{}:
		for k, child := range x {
			key := fmt.Sprint(k)
			if prefix != "" {
				key = prefix + "." + key
			}
			if err := flatten(key, child, out); err != nil {
				return err
			}
		}
	case []interface{}:
		return fmt.Errorf("setting %s: lists are not supported", prefix)
	case nil:
	default:
		if prefix == "" {
			return fmt.Errorf("setting value %v has no key", x)
		}
		out[prefix] = fmt.Sprint(x)
	}

	return nil
}
