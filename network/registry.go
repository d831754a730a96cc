package network

import (
	"context"
	"net"
	"sort"
	"strings"
)

const tokenDelimiter = "#"

// LocalHost resolves to the local address of this host.
const LocalHost = tokenDelimiter + "local" + tokenDelimiter

// CustomNameResolver resolves exactly one token, e.g. #ec2:privateIp#.
type CustomNameResolver interface {
	Resolve(ctx context.Context) (net.IP, error)
}

// CustomNameResolverFunc adapts a function to a CustomNameResolver.
type CustomNameResolverFunc func(ctx context.Context) (net.IP, error)

// Resolve calls f(ctx).
func (f CustomNameResolverFunc) Resolve(ctx context.Context) (net.IP, error) {
	return f(ctx)
}

type resolverMap map[string]CustomNameResolver

// CanonicalName wraps name into #name# unless it already is a token.
func CanonicalName(name string) string {
	if isToken(name) {
		return name
	}
	return tokenDelimiter + name + tokenDelimiter
}

func isToken(s string) bool {
	return len(s) >= 2*len(tokenDelimiter) &&
		strings.HasPrefix(s, tokenDelimiter) &&
		strings.HasSuffix(s, tokenDelimiter)
}

func stripToken(s string) string {
	return s[len(tokenDelimiter) : len(s)-len(tokenDelimiter)]
}

// AddCustomNameResolver registers r under the canonical form of name.
// A later registration with the same name replaces the earlier one.
// Resolutions that already loaded the previous snapshot are unaffected.
func (s *Service) AddCustomNameResolver(name string, r CustomNameResolver) {
	name = CanonicalName(name)

	current := s.customNameResolvers.Load()
	next := make(resolverMap, len(*current)+1)
	for k, v := range *current {
		next[k] = v
	}
	next[name] = r

	s.customNameResolvers.Store(&next)
}

// CustomNameResolvers returns the sorted names of all registered resolvers.
func (s *Service) CustomNameResolvers() []string {
	m := *s.customNameResolvers.Load()
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Service) lookupCustomNameResolver(name string) (CustomNameResolver, bool) {
	r, found := (*s.customNameResolvers.Load())[name]
	return r, found
}
