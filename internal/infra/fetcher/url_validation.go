package fetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"byte-highlight/internal/usecase/importer"
)

// validateURL allows only http(s) URLs and, when denyPrivateIPs is set,
// rejects hosts that resolve to loopback, private or link-local addresses.
func validateURL(ctx context.Context, urlStr string, denyPrivateIPs bool) error {
	u, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("%w: parse error: %v", importer.ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme '%s' not allowed (only http/https)", importer.ErrInvalidURL, u.Scheme)
	}
	hostname := u.Hostname()
	if hostname == "" {
		return fmt.Errorf("%w: empty hostname", importer.ErrInvalidURL)
	}
	if !denyPrivateIPs {
		return nil
	}

	ips, err := net.DefaultResolver.LookupIPAddr(ctx, hostname)
	if err != nil {
		return fmt.Errorf("%w: DNS lookup failed for %s: %v", importer.ErrInvalidURL, hostname, err)
	}
	for _, ip := range ips {
		if isPrivateIP(ip.IP) {
			return fmt.Errorf("%w: hostname '%s' resolves to private IP %s", importer.ErrPrivateIP, hostname, ip.IP)
		}
	}
	return nil
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}

// newClient builds an HTTP client whose redirects are re-validated.
func newClient(cfg Config) *http.Client {
	return &http.Client{
		Timeout: cfg.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > cfg.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", importer.ErrTooManyRedirects, len(via))
			}
			if err := validateURL(req.Context(), req.URL.String(), cfg.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}
}
