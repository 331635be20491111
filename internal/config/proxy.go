package config

import "strings"

const hiddenProxyLabel = "Proxy configured (details hidden)"

// HasProxy reports whether outbound engine traffic is routed through a proxy.
func (c *Config) HasProxy() bool {
	return c.Engine.ProxyURL != ""
}

// ProxyDisplay returns a log-safe rendition of the proxy URL. Credentials are never
// included: only the part after the last '@' is shown.
func (c *Config) ProxyDisplay() string {
	return RedactProxy(c.Engine.ProxyURL)
}

// RedactProxy hides credentials embedded in a proxy URL.
func RedactProxy(proxyURL string) string {
	if proxyURL == "" {
		return ""
	}
	if idx := strings.LastIndex(proxyURL, "@"); idx >= 0 {
		return proxyURL[idx+1:]
	}
	return hiddenProxyLabel
}
