package server

import (
	"net/url"
	"strings"
)

// NormalizeOrigin validates a browser Origin header value and reduces it to
// scheme://host[:port] in lowercase. Default ports are stripped so that
// "https://a.example:443" and "https://a.example" compare equal.
func NormalizeOrigin(origin string) (string, bool) {
	trimmed := strings.TrimSpace(origin)
	if trimmed == "" {
		return "", false
	}

	u, err := url.Parse(trimmed)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", false
	}

	host := strings.ToLower(u.Host)
	host = strings.TrimSuffix(host, defaultPort(scheme))

	return scheme + "://" + host, true
}

func defaultPort(scheme string) string {
	if scheme == "http" {
		return ":80"
	}
	return ":443"
}

// OriginChecker returns an upgrader CheckOrigin func. An empty allowlist
// accepts every origin, which is the development posture; production
// deployments list the web frontends.
func OriginChecker(allowed []string) func(origin string) bool {
	normalized := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		if n, ok := NormalizeOrigin(a); ok {
			normalized[n] = struct{}{}
		}
	}

	return func(origin string) bool {
		if len(normalized) == 0 {
			return true
		}
		// Non-browser clients (the native consult CLI) send no Origin.
		if origin == "" {
			return true
		}
		n, ok := NormalizeOrigin(origin)
		if !ok {
			return false
		}
		_, ok = normalized[n]
		return ok
	}
}
