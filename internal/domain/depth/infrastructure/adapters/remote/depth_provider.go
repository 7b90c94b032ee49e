package remote

import (
	"context"

	"accessworld-server-go/internal/domain/depth"
	"accessworld-server-go/internal/platform/inference"
)

// Provider 调用 DPT 等单目深度估计服务，服务返回 {"width","height","depth":[...]}
type Provider struct {
	client *inference.Client
}

func NewProvider(client *inference.Client) *Provider {
	return &Provider{client: client}
}

func (p *Provider) Name() string { return "http:" + p.client.BaseURL() }

func (p *Provider) Estimate(ctx context.Context, image []byte) (depth.Map, error) {
	var out depth.Map
	if err := p.client.PostFile(ctx, "", "image", "image.jpg", image, nil, &out); err != nil {
		return depth.Map{}, err
	}
	return out, nil
}
