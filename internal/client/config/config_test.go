package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, "http://localhost:8080", cfg.ServerEndpointAddr)
	assert.Equal(t, 5*time.Minute, cfg.TokenTTL)
}

func TestParseFlags(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"client", "-a", "http://relay.example.com", "-t", "120"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, "http://relay.example.com", cfg.ServerEndpointAddr)
	assert.Equal(t, 2*time.Minute, cfg.TokenTTL)
}

func TestParseJson(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	file, err := os.CreateTemp(t.TempDir(), "config*.json")
	require.NoError(t, err)

	_, err = file.WriteString(`{"server_endpoint_addr": "http://relay.example.com", "token_ttl": "90s"}`)
	require.NoError(t, err)
	require.NoError(t, file.Close())

	os.Args = []string{"client", "-c", file.Name()}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "http://relay.example.com", cfg.ServerEndpointAddr)
	assert.Equal(t, 90*time.Second, cfg.TokenTTL)
}
