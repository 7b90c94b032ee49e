package openai

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Config Whisper 兼容接口配置
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	Language string
	Timeout  time.Duration
}

// Provider 使用 OpenAI 兼容的 /audio/transcriptions 接口
type Provider struct {
	client *openai.Client
	config Config
}

func NewProvider(config Config) *Provider {
	if config.Model == "" {
		config.Model = openai.Whisper1
	}
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if config.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: config.Timeout}
	}
	return &Provider{client: openai.NewClientWithConfig(clientConfig), config: config}
}

func (p *Provider) Name() string { return "openai:" + p.config.Model }

func (p *Provider) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if filename == "" {
		filename = "audio.webm"
	}
	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    p.config.Model,
		FilePath: filename,
		Reader:   bytes.NewReader(audio),
		Language: p.config.Language,
	})
	if err != nil {
		return "", fmt.Errorf("whisper transcription: %w", err)
	}
	return resp.Text, nil
}
