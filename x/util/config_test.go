package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigLoad(t *testing.T) {
	content := `
server:
  dsn: "host=localhost user=postgres password=secret dbname=forge"
  redisAddr: "localhost:6379"
  memcachedAddr: "localhost:11211"
forge:
  allowedOrigins:
    - "http://localhost:5173"
`

	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte(content), 0644)
	assert.NoError(t, err)

	config := Config{}
	err = config.Load(path)
	assert.NoError(t, err)

	assert.Equal(t, "localhost:6379", config.Server.RedisAddr)
	assert.Contains(t, config.Forge.AllowedOrigins, "http://localhost:5173")

	// defaults kick in when omitted
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "candymachines", config.Forge.EventChannel)
}
