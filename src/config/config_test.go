package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const configJSON = `{
	"data_dir": "./data",
	"output_dir": "./out",
	"log_name": "delayinsight.log",
	"log_max_size": "10 * 1024 * 1024",
	"flights_sheet": "flights",
	"weather_sheet": "weather",
	"delay_threshold_min": 30,
	"join_variant": "calendar_hour",
	"schedule_interval": "0s",
	"email": {
		"server": "imap.example.com:993",
		"username": "analyst",
		"password": "",
		"target_subject": "dataset",
		"check_interval": "5m"
	},
	"send_email": {
		"server": "smtp.example.com:465",
		"username": "analyst",
		"password": "",
		"subject": "delay report",
		"recipients": ["ops@example.com"]
	}
}`

const dataConfigJSON = `{
	"predictors": ["wind_speed", "visib"],
	"summary_columns": ["distance", "dep_delay"],
	"column_aliases": {"departure_delay": "dep_delay"}
}`

func writeConfigDir(t *testing.T, cfgBody, dcfgBody string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(cfgBody), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dataconfig.json"), []byte(dcfgBody), 0644))
	return dir
}

func TestLoadConfigOnce(t *testing.T) {
	dir := writeConfigDir(t, configJSON, dataConfigJSON)

	cfg, dcfg, err := LoadConfig(dir, "config.json", "dataconfig.json")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.NotNil(t, dcfg)

	assert.Equal(t, "weather", cfg.WeatherSheet)
	assert.Equal(t, 30.0, cfg.DelayThresholdMin)
	assert.Equal(t, 5*time.Minute, time.Duration(cfg.Email.CheckInterval))
	assert.Equal(t, []string{"wind_speed", "visib"}, dcfg.Predictors)
	assert.Equal(t, map[string]string{"departure_delay": "dep_delay"}, dcfg.ColumnAliases)

	// A second call returns the same instances without re-reading.
	cfg2, dcfg2, err := LoadConfig(dir, "other.json", "other.json")
	require.NoError(t, err)
	assert.Same(t, cfg, cfg2)
	assert.Same(t, dcfg, dcfg2)
}

func TestLoadConfigsMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, _, err := loadConfigs(dir, "config.json", "dataconfig.json")
	assert.Error(t, err)
}

func TestLoadConfigsMalformedJSON(t *testing.T) {
	dir := writeConfigDir(t, "{not json", "{also not json")
	_, _, err := loadConfigs(dir, "config.json", "dataconfig.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestApplyEnvSecrets(t *testing.T) {
	t.Setenv("IMAP_PASSWORD", "imap-secret")
	t.Setenv("SMTP_PASSWORD", "smtp-secret")

	var cfg Config
	cfg.Email.Username = "analyst"
	applyEnvSecrets(&cfg)

	assert.Equal(t, "analyst", cfg.Email.Username)
	assert.Equal(t, "imap-secret", cfg.Email.Password)
	assert.Equal(t, "smtp-secret", cfg.SendEmail.Password)
}

func TestDurationJSON(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"90s"`), &d))
	assert.Equal(t, 90*time.Second, time.Duration(d))

	out, err := json.Marshal(Duration(2 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, `"2h0m0s"`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &d))
}
