package config

import (
	"fmt"
	"os"
	"strings"
)

// Default configuration values (production).
const (
	DefaultDomain     = "consult.furever.app"
	DefaultSTUN       = "stun:stun.l.google.com:19302"
	DefaultListenAddr = ":8080"
)

// Config holds the signaling core's configuration, shared by the hub
// server and the native client.
type Config struct {
	// Domain is the hub's public domain.
	Domain string

	// WebSocketURL is constructed from the domain.
	WebSocketURL string

	// ICE servers for the peer-connection capability.
	STUNServer string
	TURNServer string
	TURNUser   string
	TURNPass   string

	// Server side.
	ListenAddr     string
	AllowedOrigins []string
}

// Options carries CLI flag overrides into Load.
type Options struct {
	Domain     string
	STUNServer string
	TURNServer string
	TURNUser   string
	TURNPass   string
	ListenAddr string
	Origins    string
}

// Load reads configuration with the following priority:
// 1. CLI flags (passed via Options) - highest priority
// 2. Environment variables
// 3. Hardcoded defaults - lowest priority
func Load(opts Options) (*Config, error) {
	domain := firstNonEmpty(opts.Domain, os.Getenv("DOMAIN"), DefaultDomain)
	stunServer := firstNonEmpty(opts.STUNServer, os.Getenv("STUN_SERVER"), DefaultSTUN)
	turnServer := firstNonEmpty(opts.TURNServer, os.Getenv("TURN_SERVER"))
	turnUser := firstNonEmpty(opts.TURNUser, os.Getenv("TURN_USERNAME"))
	turnPass := firstNonEmpty(opts.TURNPass, os.Getenv("TURN_PASSWORD"))
	listenAddr := firstNonEmpty(opts.ListenAddr, os.Getenv("LISTEN_ADDR"), DefaultListenAddr)
	origins := firstNonEmpty(opts.Origins, os.Getenv("ALLOWED_ORIGINS"))

	if turnServer != "" && (turnUser == "" || turnPass == "") {
		return nil, fmt.Errorf("TURN server configured without credentials")
	}

	return &Config{
		Domain:         domain,
		WebSocketURL:   fmt.Sprintf("wss://%s/ws", domain),
		STUNServer:     stunServer,
		TURNServer:     turnServer,
		TURNUser:       turnUser,
		TURNPass:       turnPass,
		ListenAddr:     listenAddr,
		AllowedOrigins: splitOrigins(origins),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitOrigins(origins string) []string {
	if origins == "" {
		return nil
	}
	parts := strings.Split(origins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// GetSTUNServers returns STUN server URLs as strings.
func (c *Config) GetSTUNServers() []string {
	return []string{c.STUNServer}
}

// GetTURNServers returns TURN server URLs if a TURN host is configured.
func (c *Config) GetTURNServers() []string {
	if c.TURNServer == "" {
		return nil
	}
	return []string{
		fmt.Sprintf("turn:%s:3478?transport=udp", c.TURNServer),
		fmt.Sprintf("turn:%s:3478?transport=tcp", c.TURNServer),
		fmt.Sprintf("turns:%s:5349?transport=tcp", c.TURNServer),
	}
}

// GetTURNCredentials returns the TURN username and password.
func (c *Config) GetTURNCredentials() (string, string) {
	return c.TURNUser, c.TURNPass
}
