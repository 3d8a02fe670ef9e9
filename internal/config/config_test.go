package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DOMAIN", "STUN_SERVER", "TURN_SERVER", "LISTEN_ADDR", "ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, DefaultDomain, cfg.Domain)
	assert.Equal(t, "wss://consult.furever.app/ws", cfg.WebSocketURL)
	assert.Equal(t, DefaultSTUN, cfg.STUNServer)
	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Empty(t, cfg.TURNServer)
	assert.Nil(t, cfg.AllowedOrigins)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("DOMAIN", "staging.furever.app")
	t.Setenv("STUN_SERVER", "stun:stun.example.com:3478")
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("ALLOWED_ORIGINS", "https://app.furever.example, http://localhost:3000 ,")

	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, "staging.furever.app", cfg.Domain)
	assert.Equal(t, "wss://staging.furever.app/ws", cfg.WebSocketURL)
	assert.Equal(t, "stun:stun.example.com:3478", cfg.STUNServer)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, []string{"https://app.furever.example", "http://localhost:3000"}, cfg.AllowedOrigins)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("DOMAIN", "staging.furever.app")
	t.Setenv("LISTEN_ADDR", ":9090")

	cfg, err := Load(Options{Domain: "local.furever.app", ListenAddr: ":8081"})
	require.NoError(t, err)

	assert.Equal(t, "local.furever.app", cfg.Domain)
	assert.Equal(t, ":8081", cfg.ListenAddr)
}

func TestLoadTURNRequiresCredentials(t *testing.T) {
	_, err := Load(Options{TURNServer: "turn.furever.app"})
	require.Error(t, err)

	_, err = Load(Options{TURNServer: "turn.furever.app", TURNUser: "vet"})
	require.Error(t, err)

	cfg, err := Load(Options{TURNServer: "turn.furever.app", TURNUser: "vet", TURNPass: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "turn.furever.app", cfg.TURNServer)
}

func TestGetTURNServers(t *testing.T) {
	cfg := &Config{}
	assert.Nil(t, cfg.GetTURNServers())

	cfg.TURNServer = "turn.furever.app"
	assert.Equal(t, []string{
		"turn:turn.furever.app:3478?transport=udp",
		"turn:turn.furever.app:3478?transport=tcp",
		"turns:turn.furever.app:5349?transport=tcp",
	}, cfg.GetTURNServers())
}

func TestGetTURNCredentials(t *testing.T) {
	cfg := &Config{TURNUser: "vet", TURNPass: "secret"}

	user, pass := cfg.GetTURNCredentials()
	assert.Equal(t, "vet", user)
	assert.Equal(t, "secret", pass)
}
