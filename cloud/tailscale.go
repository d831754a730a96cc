package cloud

import (
	"context"
	"fmt"
	"net"
	"net/netip"

	"tailscale.com/client/tailscale"
	"tailscale.com/ipn/ipnstate"

	"github.com/czerwonk/hostaddr_exporter/network"
)

const (
	Tailscale     = "tailscale"
	TailscaleIPv4 = "tailscale:ipv4"
	TailscaleIPv6 = "tailscale:ipv6"
)

type statusClient interface {
	Status(ctx context.Context) (*ipnstate.Status, error)
}

// TailscaleResolver resolves the tailnet addresses of this node using the
// local tailscaled API.
type TailscaleResolver struct {
	client statusClient
}

// NewTailscaleResolver creates a resolver. A nil client talks to the
// local tailscaled.
func NewTailscaleResolver(client statusClient) *TailscaleResolver {
	if client == nil {
		client = &tailscale.LocalClient{}
	}

	return &TailscaleResolver{client: client}
}

// Register adds #tailscale#, #tailscale:ipv4# and #tailscale:ipv6# to svc.
// #tailscale# prefers the IPv4 address.
func (r *TailscaleResolver) Register(svc *network.Service) {
	svc.AddCustomNameResolver(Tailscale, r.ipResolver(network.StackAny))
	svc.AddCustomNameResolver(TailscaleIPv4, r.ipResolver(network.StackIPv4))
	svc.AddCustomNameResolver(TailscaleIPv6, r.ipResolver(network.StackIPv6))
}

func (r *TailscaleResolver) ipResolver(stack network.StackType) network.CustomNameResolver {
	return network.CustomNameResolverFunc(func(ctx context.Context) (net.IP, error) {
		st, err := r.client.Status(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get tailscale status: %w", err)
		}

		addr, found := pickTailscaleIP(st.TailscaleIPs, stack)
		if !found {
			return nil, fmt.Errorf("tailscale node has no %s address", stack)
		}

		return net.IP(addr.AsSlice()), nil
	})
}

func pickTailscaleIP(addrs []netip.Addr, stack network.StackType) (netip.Addr, bool) {
	var v6 netip.Addr
	for _, a := range addrs {
		if a.Is4() {
			if stack != network.StackIPv6 {
				return a, true
			}
			continue
		}
		if !v6.IsValid() {
			v6 = a
		}
	}

	if stack != network.StackIPv4 && v6.IsValid() {
		return v6, true
	}
	return netip.Addr{}, false
}
