package dns

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupIPLiteralPassthrough(t *testing.T) {
	for _, addr := range []string{"127.0.0.1", "192.168.1.20", "::1"} {
		got, err := Lookup(context.Background(), addr)
		require.NoError(t, err)
		assert.Equal(t, addr, got)
	}
}

func TestLookupLocalhost(t *testing.T) {
	got, err := Lookup(context.Background(), "localhost")
	require.NoError(t, err)
	assert.Contains(t, []string{"127.0.0.1", "::1"}, got)
}
