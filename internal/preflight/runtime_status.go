package preflight

import (
	"net/url"
	"strings"

	"vidscribe/internal/config"
)

// CheckProxy reports the configured proxy without revealing credentials.
func CheckProxy(cfg *config.Config) Result {
	const name = "Proxy"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if !cfg.HasProxy() {
		return Result{Name: name, Passed: true, Detail: "Not configured"}
	}
	parsed, err := url.Parse(strings.TrimSpace(cfg.Engine.ProxyURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return Result{Name: name, Detail: "Invalid proxy URL: " + cfg.ProxyDisplay()}
	}
	return Result{Name: name, Passed: true, Detail: cfg.ProxyDisplay()}
}
