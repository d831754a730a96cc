// Package cloud provides custom name resolvers that look up the address of
// this host from cloud provider metadata, tailscale or kubernetes.
package cloud

import (
	"context"
	"fmt"
	"net"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/czerwonk/hostaddr_exporter/config"
	"github.com/czerwonk/hostaddr_exporter/network"
)

// Register adds the custom name resolvers enabled in cfg to svc. Host
// names returned by metadata services are resolved using resolver.
func Register(svc *network.Service, cfg config.CloudConfig, resolver network.Resolver) error {
	if resolver == nil {
		resolver = net.DefaultResolver
	}

	if cfg.EC2 {
		NewEC2Resolver(nil, resolver).Register(svc)
	}

	if cfg.GCE {
		NewGCEResolver(nil).Register(svc)
	}

	if cfg.Tailscale {
		NewTailscaleResolver(nil).Register(svc)
	}

	if cfg.Kubernetes {
		r, err := NewK8sResolver()
		if err != nil {
			return err
		}
		r.Register(svc)
	}

	for _, name := range svc.CustomNameResolvers() {
		log.Infof("Registered custom name resolver %s", name)
	}

	return nil
}

func parseIP(source, value string) (net.IP, error) {
	value = strings.TrimSpace(value)
	ip := net.ParseIP(value)
	if ip == nil {
		return nil, fmt.Errorf("%s returned invalid ip address %q", source, value)
	}
	return ip, nil
}

func lookupFirst(ctx context.Context, resolver network.Resolver, host string) (net.IP, error) {
	host = strings.TrimSpace(host)
	addrs, err := resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, &network.NameResolutionError{Host: host, Err: err}
	}
	if len(addrs) == 0 {
		return nil, &network.NameResolutionError{Host: host}
	}
	return addrs[0].IP, nil
}
