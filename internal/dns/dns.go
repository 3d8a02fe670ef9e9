package dns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// publicDNS are queried if the local lookup fails. Well-known,
// high-availability providers.
var publicDNS = []string{
	"1.1.1.1", // Cloudflare
	"1.0.0.1", // Cloudflare
	"8.8.8.8", // Google
	"8.8.4.4", // Google
	"9.9.9.9", // Quad9
}

const lookupTimeout = 2 * time.Second

// Lookup resolves a hostname to an IP address. It tries the system resolver
// first and falls back to public DNS providers, returning the first answer.
func Lookup(ctx context.Context, address string) (string, error) {
	if ip := net.ParseIP(address); ip != nil {
		return address, nil
	}

	if ip, err := localLookupIP(ctx, address); err == nil {
		return ip, nil
	}

	return remoteLookupRace(ctx, address)
}

func localLookupIP(ctx context.Context, address string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	r := &net.Resolver{}
	ips, err := r.LookupHost(ctx, address)
	if err != nil {
		return "", err
	}
	if len(ips) == 0 {
		return "", errors.New("no IP addresses found")
	}
	return ips[0], nil
}

// remoteLookupRace queries all public resolvers concurrently; the first
// successful answer wins.
func remoteLookupRace(ctx context.Context, address string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	results := make(chan string, len(publicDNS))
	for _, server := range publicDNS {
		go func(server string) {
			r := &net.Resolver{
				PreferGo: true,
				Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
					d := net.Dialer{Timeout: lookupTimeout}
					return d.DialContext(ctx, network, net.JoinHostPort(server, "53"))
				},
			}
			ips, err := r.LookupHost(ctx, address)
			if err != nil || len(ips) == 0 {
				return
			}
			select {
			case results <- ips[0]:
			default:
			}
		}(server)
	}

	select {
	case ip := <-results:
		return ip, nil
	case <-ctx.Done():
		return "", fmt.Errorf("dns lookup failed for %s: %w", address, ctx.Err())
	}
}
