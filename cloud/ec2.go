package cloud

import (
	"context"
	"fmt"
	"io"
	"net"

	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"

	"github.com/czerwonk/hostaddr_exporter/network"
)

const (
	EC2PrivateIP  = "ec2:privateIp"
	EC2PublicIP   = "ec2:publicIp"
	EC2PrivateDNS = "ec2:privateDns"
	EC2PublicDNS  = "ec2:publicDns"
)

type imdsClient interface {
	GetMetadata(ctx context.Context, params *imds.GetMetadataInput, optFns ...func(*imds.Options)) (*imds.GetMetadataOutput, error)
}

// EC2Resolver resolves addresses of the running instance using the EC2
// instance metadata service.
type EC2Resolver struct {
	client   imdsClient
	resolver network.Resolver
}

// NewEC2Resolver creates a resolver. A nil client uses the default IMDS
// endpoint.
func NewEC2Resolver(client imdsClient, resolver network.Resolver) *EC2Resolver {
	if client == nil {
		client = imds.New(imds.Options{})
	}
	if resolver == nil {
		resolver = net.DefaultResolver
	}

	return &EC2Resolver{client: client, resolver: resolver}
}

// Register adds #ec2:privateIp#, #ec2:publicIp#, #ec2:privateDns# and
// #ec2:publicDns# to svc.
func (r *EC2Resolver) Register(svc *network.Service) {
	svc.AddCustomNameResolver(EC2PrivateIP, r.ipResolver("local-ipv4"))
	svc.AddCustomNameResolver(EC2PublicIP, r.ipResolver("public-ipv4"))
	svc.AddCustomNameResolver(EC2PrivateDNS, r.dnsResolver("local-hostname"))
	svc.AddCustomNameResolver(EC2PublicDNS, r.dnsResolver("public-hostname"))
}

func (r *EC2Resolver) ipResolver(path string) network.CustomNameResolver {
	return network.CustomNameResolverFunc(func(ctx context.Context) (net.IP, error) {
		s, err := r.metadata(ctx, path)
		if err != nil {
			return nil, err
		}
		return parseIP("ec2 metadata "+path, s)
	})
}

func (r *EC2Resolver) dnsResolver(path string) network.CustomNameResolver {
	return network.CustomNameResolverFunc(func(ctx context.Context) (net.IP, error) {
		s, err := r.metadata(ctx, path)
		if err != nil {
			return nil, err
		}
		return lookupFirst(ctx, r.resolver, s)
	})
}

func (r *EC2Resolver) metadata(ctx context.Context, path string) (string, error) {
	out, err := r.client.GetMetadata(ctx, &imds.GetMetadataInput{Path: path})
	if err != nil {
		return "", fmt.Errorf("failed to get ec2 metadata %s: %w", path, err)
	}
	defer out.Content.Close()

	b, err := io.ReadAll(out.Content)
	if err != nil {
		return "", fmt.Errorf("failed to read ec2 metadata %s: %w", path, err)
	}

	return string(b), nil
}
