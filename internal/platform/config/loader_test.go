package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestLoader_Load(t *testing.T) {
	// 创建临时配置文件
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	configContent := `
server:
  ip: "127.0.0.1"
  port: 8080
log:
  log_level: "DEBUG"
  log_dir: "/tmp/logs"
  log_file: "test.log"
pipeline:
  provider_timeout: 5s
providers:
  detect:
    type: http
    url: http://detector:9000/detect
    threshold: 0.5
`
	require.NoError(t, os.WriteFile(configFile, []byte(configContent), 0o644))

	res, err := NewLoader().WithDotEnv(false).WithPath(configFile).WithEnv(envMap(nil)).Load()
	require.NoError(t, err)

	cfg := res.Config
	assert.Equal(t, configFile, res.Path)
	assert.Equal(t, "127.0.0.1", cfg.Server.IP)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "DEBUG", cfg.Log.Level)
	assert.Equal(t, 5*time.Second, cfg.Pipeline.ProviderTimeout)
	assert.Equal(t, "http://detector:9000/detect", cfg.Providers.Detect.BaseURL)
	assert.InDelta(t, 0.5, cfg.Providers.Detect.Threshold, 1e-9)
	// 未配置的字段保留默认值
	assert.Equal(t, 10, cfg.Providers.Detect.MaxResults)
	assert.Equal(t, "en-US-AriaNeural", cfg.Providers.TTS.Voice)
}

func TestLoader_MissingFileFallsBackToDefaults(t *testing.T) {
	res, err := NewLoader().
		WithDotEnv(false).
		WithPath(filepath.Join(t.TempDir(), "absent.yaml")).
		WithEnv(envMap(nil)).
		Load()
	require.NoError(t, err)

	assert.Empty(t, res.Path)
	assert.Equal(t, DefaultConfig(), res.Config)
}

func TestLoader_EnvOverrides(t *testing.T) {
	res, err := NewLoader().
		WithDotEnv(false).
		WithPath(filepath.Join(t.TempDir(), "absent.yaml")).
		WithEnv(envMap(map[string]string{
			"ACCESSWORLD_PORT":         "9001",
			"OPENAI_API_KEY":           "sk-test",
			"OPENAI_BASE_URL":          "http://llm.local/v1",
			"ACCESSWORLD_CACHE_DRIVER": "redis",
			"REDIS_ADDR":               "127.0.0.1:6379",
		})).
		Load()
	require.NoError(t, err)

	cfg := res.Config
	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, "sk-test", cfg.Providers.ASR.APIKey)
	assert.Equal(t, "sk-test", cfg.Providers.Caption.APIKey)
	assert.Equal(t, "http://llm.local/v1", cfg.Providers.Translate.BaseURL)
	assert.Empty(t, cfg.Providers.Detect.APIKey)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, "127.0.0.1:6379", cfg.Cache.Redis.Addr)
}

func TestLoader_InvalidPortEnv(t *testing.T) {
	_, err := NewLoader().
		WithDotEnv(false).
		WithPath(filepath.Join(t.TempDir(), "absent.yaml")).
		WithEnv(envMap(map[string]string{"ACCESSWORLD_PORT": "eighty"})).
		Load()
	assert.Error(t, err)
}

func TestLoader_MalformedYAML(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("server: [oops"), 0o644))

	_, err := NewLoader().WithDotEnv(false).WithPath(configFile).WithEnv(envMap(nil)).Load()
	assert.Error(t, err)
}

func TestLoader_Validate(t *testing.T) {
	loader := NewLoader()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "invalid server port", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "negative timeout", mutate: func(c *Config) { c.Pipeline.ProviderTimeout = -time.Second }, wantErr: true},
		{name: "unsupported default language", mutate: func(c *Config) { c.Pipeline.DefaultLanguage = "ja" }, wantErr: true},
		{name: "threshold above one", mutate: func(c *Config) { c.Providers.Detect.Threshold = 1.5 }, wantErr: true},
		{name: "unknown cache driver", mutate: func(c *Config) { c.Cache.Driver = "memcached" }, wantErr: true},
		{name: "redis without addr", mutate: func(c *Config) { c.Cache.Driver = "redis" }, wantErr: true},
		{name: "auth without secret", mutate: func(c *Config) { c.Auth.Enabled = true }, wantErr: true},
		{name: "min larger than max image", mutate: func(c *Config) { c.Image.MinFileSize = c.Image.MaxFileSize + 1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := loader.Validate(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.Error(t, loader.Validate(nil))
}
