package cloud

import (
	"context"
	"fmt"
	"net"

	"cloud.google.com/go/compute/metadata"

	"github.com/czerwonk/hostaddr_exporter/network"
)

const (
	GCEPrivateIP = "gce:privateIp"
	GCEPublicIP  = "gce:publicIp"
)

type metadataClient interface {
	GetWithContext(ctx context.Context, suffix string) (string, error)
}

// GCEResolver resolves addresses of the running instance using the GCE
// metadata server.
type GCEResolver struct {
	client metadataClient
}

// NewGCEResolver creates a resolver. A nil client uses the default
// metadata client, which honors GCE_METADATA_HOST.
func NewGCEResolver(client metadataClient) *GCEResolver {
	if client == nil {
		client = metadata.NewClient(nil)
	}

	return &GCEResolver{client: client}
}

// Register adds #gce:privateIp# and #gce:publicIp# to svc.
func (r *GCEResolver) Register(svc *network.Service) {
	svc.AddCustomNameResolver(GCEPrivateIP, r.ipResolver("instance/network-interfaces/0/ip"))
	svc.AddCustomNameResolver(GCEPublicIP, r.ipResolver("instance/network-interfaces/0/access-configs/0/external-ip"))
}

func (r *GCEResolver) ipResolver(suffix string) network.CustomNameResolver {
	return network.CustomNameResolverFunc(func(ctx context.Context) (net.IP, error) {
		s, err := r.client.GetWithContext(ctx, suffix)
		if err != nil {
			return nil, fmt.Errorf("failed to get gce metadata %s: %w", suffix, err)
		}
		return parseIP("gce metadata "+suffix, s)
	})
}
