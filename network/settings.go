package network

const (
	GlobalNetworkHostSetting        = "network.host"
	GlobalNetworkBindHostSetting    = "network.bind_host"
	GlobalNetworkPublishHostSetting = "network.publish_host"
	IPStackSetting                  = "network.ip_stack"
)

// Settings is a read-only view on flat, dotted configuration keys.
// An empty string means the key is not set.
type Settings interface {
	Get(key string) string

	// GetDefault returns the value of key, or the value of defaultKey when
	// key is not set.
	GetDefault(key, defaultKey string) string
}
