// Package network resolves bind and publish addresses from host
// settings, #token# pseudo hosts and registered custom resolvers.
package network

import (
	"context"
	"net"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// Service resolves host settings to IP addresses.
type Service struct {
	settings Settings
	utils    Utils
	resolver Resolver

	customNameResolvers atomic.Pointer[resolverMap]
}

// NewService creates a Service with an empty resolver registry. A nil
// resolver falls back to net.DefaultResolver.
func NewService(settings Settings, utils Utils, resolver Resolver) *Service {
	if resolver == nil {
		resolver = net.DefaultResolver
	}

	s := &Service{
		settings: settings,
		utils:    utils,
		resolver: resolver,
	}
	s.customNameResolvers.Store(&resolverMap{})

	return s
}

// ResolveBindHostAddress resolves the address to bind sockets to. The
// fallback order is bindHost, network.bind_host, network.host and
// defaultValue2. A nil address without error means nothing is configured.
func (s *Service) ResolveBindHostAddress(ctx context.Context, bindHost, defaultValue2 string) (net.IP, error) {
	return s.ResolveInetAddress(ctx, bindHost,
		s.settings.GetDefault(GlobalNetworkBindHostSetting, GlobalNetworkHostSetting), defaultValue2)
}

// ResolvePublishHostAddress resolves the address advertised to peers. The
// fallback order is publishHost, network.publish_host, network.host and
// defaultValue2. An unset or wildcard result is replaced by the local
// address.
func (s *Service) ResolvePublishHostAddress(ctx context.Context, publishHost, defaultValue2 string) (net.IP, error) {
	addr, err := s.ResolveInetAddress(ctx, publishHost,
		s.settings.GetDefault(GlobalNetworkPublishHostSetting, GlobalNetworkHostSetting), defaultValue2)
	if err != nil {
		return nil, err
	}

	// never advertise a wildcard address
	if addr == nil || addr.IsUnspecified() {
		log.WithField("address", addr).Debug("publish address unset or wildcard, using local address")
		return s.utils.LocalAddress()
	}

	return addr, nil
}

// ResolveInetAddress resolves the first non-empty of host, defaultValue1
// and defaultValue2. It returns nil, nil if all of them are empty.
func (s *Service) ResolveInetAddress(ctx context.Context, host, defaultValue1, defaultValue2 string) (net.IP, error) {
	if host == "" {
		host = defaultValue1
	}
	if host == "" {
		host = defaultValue2
	}
	if host == "" {
		return nil, nil
	}

	if !isToken(host) {
		return s.lookupHost(ctx, host)
	}

	if r, found := s.lookupCustomNameResolver(host); found {
		log.WithField("token", host).Debug("resolving using custom name resolver")
		return r.Resolve(ctx)
	}

	name := stripToken(host)
	if name == "local" {
		return s.utils.LocalAddress()
	}

	return s.resolveInterface(name)
}

func (s *Service) lookupHost(ctx context.Context, host string) (net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		return ip, nil
	}

	addrs, err := s.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, &NameResolutionError{Host: host, Err: err}
	}
	if len(addrs) == 0 {
		return nil, &NameResolutionError{Host: host}
	}

	return addrs[0].IP, nil
}

func (s *Service) resolveInterface(name string) (net.IP, error) {
	ifaces, err := s.utils.AllInterfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if !iface.Up || iface.Loopback {
			continue
		}
		if name == iface.Name || name == iface.DisplayName {
			log.WithFields(log.Fields{"token": name, "interface": iface.Name}).Debug("resolving using network interface")
			return s.utils.FirstNonLoopbackAddress(iface, s.utils.IPStackType())
		}
	}

	return nil, &InterfaceNotFoundError{Name: name}
}
