package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: ":9090"
spotify:
  client_id: spotify-id
  client_secret: spotify-secret
  redirect_uri: https://app.example.com/callback
ticketmaster:
  api_key: tm-key
seatgeek:
  client_id: sg-client
search:
  city: Denver
  state_code: CO
  radius_miles: 100
  batch_size: 10
  batch_delay: 250ms
scoring:
  popularity_weight: 0.2
storage:
  postgres_dsn: postgres://localhost/concerts
  clickhouse_dsn: clickhouse://localhost/analytics
`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", c.Server.ListenAddress)
	assert.Equal(t, "spotify-id", c.Spotify.ClientID)
	assert.Equal(t, "tm-key", c.Ticketmaster.APIKey)
	assert.Equal(t, "sg-client", c.SeatGeek.ClientID)
	assert.Equal(t, "Denver", c.Search.City)
	assert.Equal(t, "CO", c.Search.StateCode)
	assert.Equal(t, 100, c.Search.RadiusMiles)
	assert.Equal(t, 10, c.Search.BatchSize)
	assert.Equal(t, 250*time.Millisecond, c.Search.BatchDelay)
	assert.Equal(t, 0.2, c.Scoring.PopularityWeight)
	assert.Equal(t, "postgres://localhost/concerts", c.Storage.PostgresDSN)

	// Unset fields still get defaults
	assert.Equal(t, 10*time.Second, c.Server.ReadTimeout)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `spotify: {client_id: id}`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.Server.ListenAddress)
	assert.Equal(t, "Austin", c.Search.City)
	assert.Equal(t, "TX", c.Search.StateCode)
	assert.Equal(t, 50, c.Search.RadiusMiles)
	assert.Equal(t, 20, c.Search.BatchSize)
	assert.Equal(t, 500*time.Millisecond, c.Search.BatchDelay)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not: a map")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, ":8080", c.Server.ListenAddress)
	assert.Equal(t, 20, c.Search.BatchSize)
}
