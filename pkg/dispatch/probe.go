package dispatch

import (
	"context"
	"fmt"
	"net"
	"strings"
)

// DefaultProbeHost is the well-known hostname resolved by the stock probe.
const DefaultProbeHost = "one.one.one.one"

// Probe is a pre-flight reachability heuristic. A non-nil error means the
// network is considered unavailable and the dispatch is aborted.
type Probe interface {
	Check(ctx context.Context) error
}

// DNSProbe treats a successful DNS lookup of a fixed hostname as evidence the
// network is usable.
type DNSProbe struct {
	host     string
	resolver *net.Resolver
}

// NewDNSProbe builds a DNSProbe for the given hostname, falling back to
// DefaultProbeHost when empty.
func NewDNSProbe(host string) *DNSProbe {
	host = strings.TrimSpace(host)
	if host == "" {
		host = DefaultProbeHost
	}
	return &DNSProbe{host: host, resolver: net.DefaultResolver}
}

// Check resolves the probe hostname.
func (p *DNSProbe) Check(ctx context.Context) error {
	addrs, err := p.resolver.LookupHost(ctx, p.host)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", p.host, err)
	}
	if len(addrs) == 0 {
		return fmt.Errorf("resolve %s: no addresses", p.host)
	}
	return nil
}
