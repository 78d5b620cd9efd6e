package entity

import (
	"fmt"
	"net"
	"net/url"
)

// maxURLLength defines the maximum allowed length for URLs to prevent DoS attacks.
const maxURLLength = 2048

// ValidateURL checks that rawURL is an absolute http(s) URL with a host.
// It does not resolve the host; use ValidateFetchURL for URLs the server will request.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return &ValidationError{Field: "url", Message: "URL is required"}
	}
	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   "url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return &ValidationError{Field: "url", Message: "Please enter a valid URL"}
	}

	// HTTPまたはHTTPSスキームのみ許可
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &ValidationError{Field: "url", Message: "URL must use http or https scheme"}
	}
	if parsedURL.Host == "" {
		return &ValidationError{Field: "url", Message: "URL must have a valid host"}
	}
	return nil
}

// ValidateFetchURL validates a URL the server is about to fetch (feed import).
// On top of ValidateURL it blocks hosts resolving to private networks.
func ValidateFetchURL(rawURL string) error {
	if err := ValidateURL(rawURL); err != nil {
		return err
	}
	parsedURL, _ := url.Parse(rawURL)

	// SSRF対策: プライベートIPアドレスをブロック
	host := parsedURL.Hostname()
	if ip := net.ParseIP(host); ip != nil {
		if isPrivateIP(ip) {
			return &ValidationError{Field: "url", Message: "url cannot point to private network"}
		}
		return nil
	}
	ips, err := net.LookupIP(host)
	if err == nil {
		for _, ip := range ips {
			if isPrivateIP(ip) {
				return &ValidationError{Field: "url", Message: "url cannot point to private network"}
			}
		}
	}
	return nil
}

// isPrivateIP checks if an IP address is in a private or restricted range:
// loopback, link-local (including cloud metadata) and RFC 1918 networks.
func isPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsPrivate() {
		return true
	}

	privateIPv4Ranges := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"169.254.0.0/16",
	}
	for _, cidr := range privateIPv4Ranges {
		_, subnet, _ := net.ParseCIDR(cidr)
		if subnet.Contains(ip) {
			return true
		}
	}
	return false
}
