package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeOrigin(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		want   string
		ok     bool
	}{
		{"plain https", "https://app.furever.example", "https://app.furever.example", true},
		{"default https port stripped", "https://app.furever.example:443", "https://app.furever.example", true},
		{"default http port stripped", "http://localhost:80", "http://localhost", true},
		{"custom port kept", "http://localhost:3000", "http://localhost:3000", true},
		{"uppercase lowered", "HTTPS://App.Furever.Example", "https://app.furever.example", true},
		{"surrounding whitespace", "  https://app.furever.example  ", "https://app.furever.example", true},
		{"empty", "", "", false},
		{"missing scheme", "app.furever.example", "", false},
		{"unsupported scheme", "ftp://app.furever.example", "", false},
		{"garbage", "https://", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeOrigin(tt.origin)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOriginChecker(t *testing.T) {
	check := OriginChecker([]string{"https://app.furever.example", "http://localhost:3000"})

	assert.True(t, check("https://app.furever.example"))
	assert.True(t, check("https://app.furever.example:443"))
	assert.True(t, check("http://localhost:3000"))
	assert.False(t, check("https://evil.example"))
	assert.False(t, check("http://localhost:4000"))
	assert.False(t, check("not a url"))

	// Native clients send no Origin header at all.
	assert.True(t, check(""))
}

func TestOriginCheckerEmptyAllowlist(t *testing.T) {
	check := OriginChecker(nil)

	assert.True(t, check("https://anything.example"))
	assert.True(t, check(""))
}
