package remote

import (
	"context"

	"accessworld-server-go/internal/domain/detect"
	"accessworld-server-go/internal/platform/inference"
)

// Provider 调用 DETR 等检测推理服务，服务返回 {"detections":[{label,score,box}]}
type Provider struct {
	client *inference.Client
}

func NewProvider(client *inference.Client) *Provider {
	return &Provider{client: client}
}

func (p *Provider) Name() string { return "http:" + p.client.BaseURL() }

func (p *Provider) Detect(ctx context.Context, image []byte) ([]detect.Raw, error) {
	var out struct {
		Detections []detect.Raw `json:"detections"`
	}
	if err := p.client.PostFile(ctx, "", "image", "image.jpg", image, nil, &out); err != nil {
		return nil, err
	}
	return out.Detections, nil
}
