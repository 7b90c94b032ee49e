package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up when no explicit path is set.
const DefaultPath = "config.yaml"

var (
	supportedLanguages = map[string]struct{}{"en": {}, "hi": {}, "fr": {}, "es": {}, "de": {}, "zh": {}}
	cacheDrivers       = map[string]struct{}{"memory": {}, "redis": {}, "none": {}}
)

// Loader reads the YAML configuration, applies .env and environment overrides, and validates the result.
type Loader struct {
	useDotEnv bool
	path      string
	lookupEnv func(string) (string, bool)
}

// NewLoader creates a loader that reads config.yaml from the working directory.
func NewLoader() *Loader {
	return &Loader{
		useDotEnv: true,
		path:      DefaultPath,
		lookupEnv: os.LookupEnv,
	}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// WithPath overrides the configuration file path.
func (l *Loader) WithPath(path string) *Loader {
	if path != "" {
		l.path = path
	}
	return l
}

// WithEnv overrides the environment lookup (useful for tests).
func (l *Loader) WithEnv(lookup func(string) (string, bool)) *Loader {
	if lookup != nil {
		l.lookupEnv = lookup
	}
	return l
}

// Result captures the loaded configuration and its origin path.
type Result struct {
	Config *Config
	Path   string
}

// Load reads the file on top of DefaultConfig. A missing file is not an error.
func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		if err := godotenv.Load(); err != nil {
			fmt.Println("未找到 .env 文件，使用系统环境变量")
		}
	}

	cfg := DefaultConfig()
	path := l.path
	if path == DefaultPath {
		if v, ok := l.lookupEnv("ACCESSWORLD_CONFIG"); ok && v != "" {
			path = v
		}
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		path = ""
	default:
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}

	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := l.Validate(cfg); err != nil {
		return nil, err
	}

	return &Result{Config: cfg, Path: path}, nil
}

func (l *Loader) applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v, ok := l.lookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	if v, ok := l.lookupEnv("ACCESSWORLD_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ACCESSWORLD_PORT 不是有效端口: %w", err)
		}
		cfg.Server.Port = port
	}
	str("ACCESSWORLD_LOG_LEVEL", &cfg.Log.Level)
	str("ACCESSWORLD_JWT_SECRET", &cfg.Auth.Secret)
	if v, ok := l.lookupEnv("ACCESSWORLD_AUTH_ENABLED"); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ACCESSWORLD_AUTH_ENABLED 无效: %w", err)
		}
		cfg.Auth.Enabled = enabled
	}

	// OpenAI 兼容凭据对所有 openai 类型的提供者生效，文件中单独配置的优先
	var apiKey, baseURL string
	str("OPENAI_API_KEY", &apiKey)
	str("OPENAI_BASE_URL", &baseURL)
	for _, mc := range []*ModelConfig{
		&cfg.Providers.ASR.ModelConfig,
		&cfg.Providers.Caption.ModelConfig,
		&cfg.Providers.Translate.ModelConfig,
	} {
		if mc.Type != "openai" {
			continue
		}
		if mc.APIKey == "" {
			mc.APIKey = apiKey
		}
		if mc.BaseURL == "" {
			mc.BaseURL = baseURL
		}
	}

	str("ACCESSWORLD_DETECT_URL", &cfg.Providers.Detect.BaseURL)
	str("ACCESSWORLD_DEPTH_URL", &cfg.Providers.Depth.BaseURL)
	str("ACCESSWORLD_TTS_VOICE", &cfg.Providers.TTS.Voice)
	str("ACCESSWORLD_CACHE_DRIVER", &cfg.Cache.Driver)
	str("REDIS_ADDR", &cfg.Cache.Redis.Addr)
	str("REDIS_PASSWORD", &cfg.Cache.Redis.Password)
	return nil
}

// Validate performs basic sanity checks on the configuration.
func (l *Loader) Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("配置为空")
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("无效的服务端口: %d", cfg.Server.Port)
	}
	if cfg.Pipeline.ProviderTimeout < 0 {
		return fmt.Errorf("provider_timeout 不能为负数: %s", cfg.Pipeline.ProviderTimeout)
	}
	if lang := cfg.Pipeline.DefaultLanguage; lang != "" {
		if _, ok := supportedLanguages[lang]; !ok {
			return fmt.Errorf("不支持的默认语言: %s", lang)
		}
	}
	if t := cfg.Providers.Detect.Threshold; t < 0 || t > 1 {
		return fmt.Errorf("检测阈值必须在 [0,1] 之间: %v", t)
	}
	if cfg.Providers.TTS.MaxChars < 0 {
		return fmt.Errorf("tts max_chars 不能为负数: %d", cfg.Providers.TTS.MaxChars)
	}
	if cfg.Image.MinFileSize < 0 || (cfg.Image.MaxFileSize > 0 && cfg.Image.MinFileSize > cfg.Image.MaxFileSize) {
		return fmt.Errorf("图片大小限制无效: min=%d max=%d", cfg.Image.MinFileSize, cfg.Image.MaxFileSize)
	}
	driver := strings.ToLower(cfg.Cache.Driver)
	if driver != "" {
		if _, ok := cacheDrivers[driver]; !ok {
			return fmt.Errorf("不支持的缓存驱动: %s", cfg.Cache.Driver)
		}
	}
	if driver == "redis" && cfg.Cache.Redis.Addr == "" {
		return errors.New("redis 缓存需要配置 cache.redis.addr")
	}
	if cfg.Auth.Enabled && cfg.Auth.Secret == "" {
		return errors.New("启用认证时必须配置 auth.secret")
	}
	return nil
}
