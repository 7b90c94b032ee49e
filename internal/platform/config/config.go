package config

import (
	"time"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Web       WebConfig       `yaml:"web"`
	Auth      AuthConfig      `yaml:"auth"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Image     SecurityConfig  `yaml:"image"`
	Providers ProvidersConfig `yaml:"providers"`
	Cache     CacheConfig     `yaml:"cache"`
}

type ServerConfig struct {
	IP              string        `yaml:"ip"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

type WebConfig struct {
	Enabled       bool   `yaml:"enabled"`
	StaticDir     string `yaml:"static_dir"`
	WebSocketPath string `yaml:"websocket_path"`
}

// AuthConfig 控制 /api 与 /ws 的 Bearer token 校验
type AuthConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Secret   string        `yaml:"secret"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

type PipelineConfig struct {
	ProviderTimeout time.Duration `yaml:"provider_timeout"`
	DefaultLanguage string        `yaml:"default_language"`
}

type SecurityConfig struct {
	MaxFileSize    int64    `yaml:"max_file_size"`
	MinFileSize    int64    `yaml:"min_file_size"`
	MaxPixels      int64    `yaml:"max_pixels"`
	MaxWidth       int      `yaml:"max_width"`
	MaxHeight      int      `yaml:"max_height"`
	AllowedFormats []string `yaml:"allowed_formats"`
	EnableDeepScan bool     `yaml:"enable_deep_scan"`
}

type ProvidersConfig struct {
	ASR       ASRConfig       `yaml:"asr"`
	Caption   CaptionConfig   `yaml:"caption"`
	Detect    DetectConfig    `yaml:"detect"`
	Depth     DepthConfig     `yaml:"depth"`
	Translate TranslateConfig `yaml:"translate"`
	TTS       TTSConfig       `yaml:"tts"`
}

// ModelConfig 是 openai 兼容接口与 HTTP 推理服务共用的连接参数
type ModelConfig struct {
	Type        string        `yaml:"type"`
	ModelName   string        `yaml:"model_name"`
	BaseURL     string        `yaml:"url"`
	APIKey      string        `yaml:"api_key"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

type ASRConfig struct {
	ModelConfig `yaml:",inline"`
	Language    string `yaml:"language"`
}

type CaptionConfig struct {
	ModelConfig `yaml:",inline"`
	Prompt      string `yaml:"prompt"`
}

type DetectConfig struct {
	ModelConfig `yaml:",inline"`
	Threshold   float64 `yaml:"threshold"`
	MaxResults  int     `yaml:"max_results"`
}

type DepthConfig struct {
	ModelConfig `yaml:",inline"`
}

type TranslateConfig struct {
	ModelConfig `yaml:",inline"`
	LoadTimeout time.Duration `yaml:"load_timeout"`
}

type TTSConfig struct {
	Type     string `yaml:"type"`
	Voice    string `yaml:"voice"`
	Rate     string `yaml:"rate"`
	Volume   string `yaml:"volume"`
	Pitch    string `yaml:"pitch"`
	MaxChars int    `yaml:"max_chars"`
}

// CacheConfig 语音合成结果缓存
type CacheConfig struct {
	Driver     string           `yaml:"driver"`
	TTL        time.Duration    `yaml:"ttl"`
	MaxEntries int              `yaml:"max_entries"`
	Redis      RedisCacheConfig `yaml:"redis"`
}

type RedisCacheConfig struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}
