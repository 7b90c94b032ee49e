package remote

import (
	"context"

	"accessworld-server-go/internal/platform/inference"
)

// Provider 调用独立部署的 Whisper 推理服务
type Provider struct {
	client   *inference.Client
	language string
}

func NewProvider(client *inference.Client, language string) *Provider {
	return &Provider{client: client, language: language}
}

func (p *Provider) Name() string { return "http:" + p.client.BaseURL() }

func (p *Provider) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if filename == "" {
		filename = "audio.webm"
	}
	var fields map[string]string
	if p.language != "" {
		fields = map[string]string{"language": p.language}
	}
	var out struct {
		Text string `json:"text"`
	}
	if err := p.client.PostFile(ctx, "", "audio", filename, audio, fields, &out); err != nil {
		return "", err
	}
	return out.Text, nil
}
