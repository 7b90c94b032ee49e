package remote

import (
	"context"

	"accessworld-server-go/internal/platform/inference"
)

// Provider 调用独立部署的图像描述推理服务（BLIP 等）
type Provider struct {
	client *inference.Client
}

func NewProvider(client *inference.Client) *Provider {
	return &Provider{client: client}
}

func (p *Provider) Name() string { return "http:" + p.client.BaseURL() }

func (p *Provider) Caption(ctx context.Context, image []byte) (string, error) {
	var out struct {
		Caption string `json:"caption"`
	}
	if err := p.client.PostFile(ctx, "", "image", "image.jpg", image, nil, &out); err != nil {
		return "", err
	}
	return out.Caption, nil
}
