package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	settings, err := Load()
	require.NoError(t, err, "expected defaults to load without a config file")

	assert.Equal(t, "Vigia", settings.Main.Name, "expected default instance name")
	assert.Equal(t, "http://localhost:5000", settings.Server.BaseURL, "expected default server URL")
	assert.Equal(t, 10*time.Second, settings.Server.Timeout, "expected default request timeout")
	assert.Equal(t, 1*time.Second, settings.Station.DetectionInterval, "expected 1s detection cadence")
	assert.Equal(t, 5*time.Second, settings.Station.VideoInterval, "expected 5s video discovery cadence")
}

func TestEnvOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("VIGIA_SERVER_BASEURL", "http://station.local:8080")
	t.Setenv("VIGIA_STATION_USERNAME", "operator")

	settings, err := Load()
	require.NoError(t, err, "expected load with env overrides")

	assert.Equal(t, "http://station.local:8080", settings.Server.BaseURL, "expected env override for server URL")
	assert.Equal(t, "operator", settings.Station.Username, "expected env override for username")
}

func TestLoadFromExplicitFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "server:\n  baseurl: http://planta.local:5000\nstation:\n  confirmphrase: autorizar\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	settings, err := LoadFrom(path)
	require.NoError(t, err, "expected explicit config file to load")
	assert.Equal(t, "http://planta.local:5000", settings.Server.BaseURL, "expected value from explicit file")
	assert.Equal(t, "autorizar", settings.Station.ConfirmPhrase)

	_, err = LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "expected a missing explicit file to fail")
}

func TestSaveSettingsRoundTrip(t *testing.T) {
	settings := &Settings{}
	settings.Main.Name = "Planta Norte"
	settings.Server.BaseURL = "http://10.0.0.5:5000"
	settings.Station.DetectionInterval = 2 * time.Second

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, SaveSettings(settings, path), "expected save to create directories and write")

	data, err := os.ReadFile(path)
	require.NoError(t, err, "expected written file to be readable")
	assert.Contains(t, string(data), "Planta Norte", "expected instance name in yaml output")
	assert.Contains(t, string(data), "10.0.0.5", "expected server URL in yaml output")
}
