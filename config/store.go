package config

import (
	"sort"
	"strings"
	"sync/atomic"

	"github.com/joho/godotenv"

	"github.com/czerwonk/hostaddr_exporter/network"
)

// Store is a network.Settings backed by a map that can be replaced
// atomically on reload.
type Store struct {
	settings atomic.Pointer[map[string]string]
}

// NewStore creates a store holding a copy of settings.
func NewStore(settings map[string]string) *Store {
	s := &Store{}
	s.Update(settings)
	return s
}

func (s *Store) Get(key string) string {
	return (*s.settings.Load())[key]
}

func (s *Store) GetDefault(key, defaultKey string) string {
	m := *s.settings.Load()
	if v := m[key]; v != "" {
		return v
	}
	return m[defaultKey]
}

// Update replaces all settings.
func (s *Store) Update(settings map[string]string) {
	m := make(map[string]string, len(settings))
	for k, v := range settings {
		m[k] = v
	}
	s.settings.Store(&m)
}

// Keys returns the sorted keys of all non-empty settings.
func (s *Store) Keys() []string {
	m := *s.settings.Load()
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

var knownKeys = []string{
	network.GlobalNetworkHostSetting,
	network.GlobalNetworkBindHostSetting,
	network.GlobalNetworkPublishHostSetting,
	network.IPStackSetting,
	network.TCPNoDelaySetting,
	network.TCPKeepAliveSetting,
	network.TCPReuseAddressSetting,
	network.TCPSendBufferSizeSetting,
	network.TCPReceiveBufferSizeSetting,
}

// EnvName returns the environment variable name overriding key, e.g.
// NETWORK_BIND_HOST for network.bind_host.
func EnvName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// ApplyEnvFile overrides settings with the variables of a dotenv file.
// Only variables named after a known network key or a key already present
// in settings are applied.
func ApplyEnvFile(path string, settings map[string]string) error {
	env, err := godotenv.Read(path)
	if err != nil {
		return err
	}

	ApplyEnv(env, settings)
	return nil
}

// ApplyEnv overrides settings with matching entries of env.
func ApplyEnv(env map[string]string, settings map[string]string) {
	keys := make(map[string]string)
	for _, k := range knownKeys {
		keys[EnvName(k)] = k
	}
	for k := range settings {
		keys[EnvName(k)] = k
	}

	for name, value := range env {
		if key, found := keys[name]; found {
			settings[key] = value
		}
	}
}
