package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/saulo-duarte/studio-ops/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	s, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 3, s.RecentWeeks)
	assert.Equal(t, "https://api.monday.com/v2", s.Monday.APIURL)
	assert.Equal(t, 30*time.Second, s.HTTPTimeout)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studio-ops.toml")
	content := `
port = "9000"
recent_weeks = 5
http_timeout = "10s"
cors_origins = ["https://ops.example.com"]

[monday]
api_token = "from-file"

[storage]
bucket = "documents"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("MONDAY_API_TOKEN", "from-env")
	t.Setenv("SCORECARD_RECENT_WEEKS", "4")

	s, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", s.Port)
	assert.Equal(t, 4, s.RecentWeeks)
	assert.Equal(t, 10*time.Second, s.HTTPTimeout)
	assert.Equal(t, []string{"https://ops.example.com"}, s.CORSOrigins)
	assert.Equal(t, "from-env", s.Monday.APIToken)
	assert.Equal(t, "documents", s.Storage.Bucket)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("port = ["), 0o600))
	t.Setenv("CONFIG_FILE", path)

	_, err := config.Load()
	assert.Error(t, err)
}
