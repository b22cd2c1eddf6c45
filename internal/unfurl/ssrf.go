// unfurl/ssrf.go
package unfurl

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"sync"
)

var blockedHostsExact = map[string]bool{
	"localhost":                 true,
	"0.0.0.0":                   true,
	"127.0.0.1":                 true,
	"::1":                       true,
	"metadata.google.internal":  true,
	"169.254.169.254":           true,
}

var blockedHostSuffixes = []string{".localhost", ".local", ".internal"}

// reservedV4 lists the IPv4 CIDR ranges a fetch target may never resolve to.
var reservedV4 = mustParseCIDRs([]string{
	"0.0.0.0/8", "10.0.0.0/8", "100.64.0.0/10", "127.0.0.0/8",
	"169.254.0.0/16", "172.16.0.0/12", "192.0.0.0/24", "192.0.2.0/24",
	"192.168.0.0/16", "198.18.0.0/15", "224.0.0.0/4", "240.0.0.0/4",
})

var reservedV6 = mustParseCIDRs([]string{
	"::1/128", "fc00::/7", "fe80::/10", "2001:db8::/32",
})

func mustParseCIDRs(cidrs []string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			panic(fmt.Sprintf("unfurl: invalid CIDR literal %q: %v", c, err))
		}
		nets = append(nets, n)
	}
	return nets
}

// isReservedIP reports whether ip falls in any address range that must
// never be reached by an outbound unfurl fetch, resolving IPv4-mapped IPv6
// addresses down to their embedded IPv4 form first.
func isReservedIP(ip net.IP) bool {
	if ip == nil {
		return true
	}
	if ip.Equal(net.IPv6unspecified) || ip.Equal(net.IPv4zero) {
		return true
	}
	if v4 := ip.To4(); v4 != nil {
		for _, n := range reservedV4 {
			if n.Contains(v4) {
				return true
			}
		}
		return false
	}
	for _, n := range reservedV6 {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func isBlockedHostname(host string) bool {
	h := strings.ToLower(host)
	if blockedHostsExact[h] {
		return true
	}
	for _, suffix := range blockedHostSuffixes {
		if strings.HasSuffix(h, suffix) {
			return true
		}
	}
	return false
}

// HostnameSafetyCache memoizes per-hostname DNS-resolution safety decisions
// for the life of the process, since repeated lookups for the same site are
// common and DNS rebinding checks are the costliest part of the guard.
type HostnameSafetyCache struct {
	mu      sync.RWMutex
	decided map[string]bool
	resolve func(ctx context.Context, host string) ([]net.IP, error)
}

func NewHostnameSafetyCache() *HostnameSafetyCache {
	return &HostnameSafetyCache{
		decided: make(map[string]bool),
		resolve: func(ctx context.Context, host string) ([]net.IP, error) {
			return net.DefaultResolver.LookupIP(ctx, "ip", host)
		},
	}
}

// IsHostnameSafe resolves host's A/AAAA records and rejects it if any
// resolved address is reserved, guarding against an attacker returning one
// public and one private address for the same name.
func (c *HostnameSafetyCache) IsHostnameSafe(ctx context.Context, host string) (bool, error) {
	c.mu.RLock()
	safe, ok := c.decided[host]
	c.mu.RUnlock()
	if ok {
		return safe, nil
	}

	ips, err := c.resolve(ctx, host)
	if err != nil {
		return false, fmt.Errorf("resolve %s: %w", host, err)
	}

	safe = len(ips) > 0
	for _, ip := range ips {
		if isReservedIP(ip) {
			safe = false
			break
		}
	}

	c.mu.Lock()
	c.decided[host] = safe
	c.mu.Unlock()

	return safe, nil
}

// CheckURL runs every static (non-DNS) SSRF check against target: scheme,
// credentials, blocked hostname, and literal reserved IPs. It does not
// perform DNS resolution — call IsHostnameSafe separately for non-literal
// hosts, since that requires a context and may block.
func CheckURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("unsafe target: unparseable url")
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsafe target: scheme must be http or https")
	}

	if u.User != nil {
		return nil, fmt.Errorf("unsafe target: url must not contain credentials")
	}

	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("unsafe target: missing host")
	}

	if isBlockedHostname(host) {
		return nil, fmt.Errorf("unsafe target: blocked hostname")
	}

	if ip := net.ParseIP(host); ip != nil {
		if isReservedIP(ip) {
			return nil, fmt.Errorf("unsafe target: reserved IP literal")
		}
	}

	return u, nil
}
