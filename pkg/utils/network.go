package utils

import "strings"

// Headers commonly set by proxies and CDNs, checked in order.
var ipHeaders = []string{
	"x-forwarded-for",
	"x-real-ip",
	"cf-connecting-ip",
	"fastly-client-ip",
}

// ClientIP resolves the client identifier for rate limiting and
// blacklisting. get must look headers up case-insensitively; peerAddr is
// the transport-level remote address used as a fallback.
func ClientIP(get func(key string) string, peerAddr string) string {
	for _, header := range ipHeaders {
		value := get(header)
		if value == "" {
			continue
		}

		ip := strings.TrimSpace(strings.Split(value, ",")[0])
		if ip != "" {
			return ip
		}
	}

	if peerAddr != "" {
		return peerAddr
	}

	return "unknown"
}
