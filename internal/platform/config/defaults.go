package config

import "time"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			IP:              "0.0.0.0",
			Port:            8000,
			ReadTimeout:     60 * time.Second,
			WriteTimeout:    120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxUploadBytes:  20 << 20,
		},
		Log: LogConfig{
			Level: "INFO",
			Dir:   "data/logs",
			File:  "server.log",
		},
		Web: WebConfig{
			Enabled:       true,
			StaticDir:     "./web",
			WebSocketPath: "/ws/analyze",
		},
		Auth: AuthConfig{
			Enabled:  false,
			TokenTTL: 24 * time.Hour,
		},
		Pipeline: PipelineConfig{
			ProviderTimeout: 30 * time.Second,
			DefaultLanguage: "en",
		},
		Image: SecurityConfig{
			MaxFileSize:    10 * 1024 * 1024,
			MinFileSize:    100,
			MaxPixels:      40_000_000,
			MaxWidth:       8192,
			MaxHeight:      8192,
			AllowedFormats: []string{"jpeg", "jpg", "png", "webp", "gif"},
			EnableDeepScan: true,
		},
		Providers: ProvidersConfig{
			ASR: ASRConfig{
				ModelConfig: ModelConfig{
					Type:      "openai",
					ModelName: "whisper-1",
					Timeout:   60 * time.Second,
				},
				Language: "en",
			},
			Caption: CaptionConfig{
				ModelConfig: ModelConfig{
					Type:      "openai",
					ModelName: "gpt-4o-mini",
					MaxTokens: 100,
					Timeout:   30 * time.Second,
				},
				Prompt: "Describe this scene for a visually impaired pedestrian in one short sentence.",
			},
			Detect: DetectConfig{
				ModelConfig: ModelConfig{
					Type:    "http",
					BaseURL: "http://127.0.0.1:5001/detect",
					Timeout: 30 * time.Second,
				},
				Threshold:  0.70,
				MaxResults: 10,
			},
			Depth: DepthConfig{
				ModelConfig: ModelConfig{
					Type:    "http",
					BaseURL: "http://127.0.0.1:5002/depth",
					Timeout: 30 * time.Second,
				},
			},
			Translate: TranslateConfig{
				ModelConfig: ModelConfig{
					Type:      "openai",
					ModelName: "gpt-4o-mini",
					Timeout:   30 * time.Second,
				},
				LoadTimeout: 2 * time.Minute,
			},
			TTS: TTSConfig{
				Type:     "edge",
				Voice:    "en-US-AriaNeural",
				Rate:     "+0%",
				Volume:   "+0%",
				Pitch:    "+0Hz",
				MaxChars: 580,
			},
		},
		Cache: CacheConfig{
			Driver:     "memory",
			TTL:        30 * time.Minute,
			MaxEntries: 500,
			Redis: RedisCacheConfig{
				Prefix: "accessworld:tts:",
			},
		},
	}
}
