package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// IPExtractor resolves the client address of a request.
type IPExtractor interface {
	ExtractIP(r *http.Request) (string, error)
}

// RemoteAddrExtractor trusts only the TCP peer address.
type RemoteAddrExtractor struct{}

func (RemoteAddrExtractor) ExtractIP(r *http.Request) (string, error) {
	return hostOf(r.RemoteAddr)
}

// TrustedProxyExtractor honours X-Forwarded-For and X-Real-IP only when the
// TCP peer is one of the configured proxies.
type TrustedProxyExtractor struct {
	proxies []netip.Prefix
}

// ParseTrustedProxies parses a comma-separated list of IPs and CIDRs,
// e.g. "10.0.0.0/8, 192.168.1.1".
func ParseTrustedProxies(list string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if p, err := netip.ParsePrefix(item); err == nil {
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, fmt.Errorf("invalid IP or CIDR %q", item)
		}
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

// NewIPExtractor returns a TrustedProxyExtractor when proxies are given and a
// RemoteAddrExtractor otherwise.
func NewIPExtractor(proxies []netip.Prefix) IPExtractor {
	if len(proxies) == 0 {
		return RemoteAddrExtractor{}
	}
	return &TrustedProxyExtractor{proxies: proxies}
}

func (e *TrustedProxyExtractor) ExtractIP(r *http.Request) (string, error) {
	peer, err := hostOf(r.RemoteAddr)
	if err != nil {
		return "", err
	}
	if !e.trusted(peer) {
		if r.Header.Get("X-Forwarded-For") != "" || r.Header.Get("X-Real-IP") != "" {
			slog.Warn("ignoring forwarding headers from untrusted peer",
				slog.String("remote_addr", r.RemoteAddr))
		}
		return peer, nil
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String(), nil
		}
	}
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String(), nil
	}
	return peer, nil
}

func (e *TrustedProxyExtractor) trusted(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range e.proxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func hostOf(addr string) (string, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		if ip := net.ParseIP(addr); ip != nil {
			return ip.String(), nil
		}
		return "", fmt.Errorf("invalid address format: %s", addr)
	}
	return host, nil
}
