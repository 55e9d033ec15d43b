package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSiteMap(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sitemap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSiteMaps(t *testing.T) {
	path := writeSiteMap(t, `
electrical:
  SiteA: [101, 102]
  SiteB: [103]
gas:
  SiteA: [201]
`)

	maps, err := LoadSiteMaps(path)
	require.NoError(t, err)
	assert.Equal(t, []int64{101, 102}, maps.Electrical["SiteA"])
	assert.Equal(t, []int64{103}, maps.Electrical["SiteB"])
	assert.Equal(t, []int64{201}, maps.Gas["SiteA"])
}

func TestLoadSiteMapsDuplicateDeviceRejected(t *testing.T) {
	path := writeSiteMap(t, `
electrical:
  SiteA: [101]
  SiteB: [101]
`)

	_, err := LoadSiteMaps(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device 101")
}

func TestLoadSiteMapsDualMeteredAcrossMappingsAllowed(t *testing.T) {
	// The same device may feed an electrical and a gas site; uniqueness is
	// per mapping, not global.
	path := writeSiteMap(t, `
electrical:
  SiteA: [101]
gas:
  SiteA: [101]
`)

	_, err := LoadSiteMaps(path)
	assert.NoError(t, err)
}

func TestLoadSiteMapsMissingFile(t *testing.T) {
	_, err := LoadSiteMaps(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
