package remote

import (
	"context"
	"errors"

	"accessworld-server-go/internal/domain/translate"
	"accessworld-server-go/internal/platform/inference"
)

// Backend 调用 MarianMT 推理服务：POST /load 预热模型，POST /translate 执行翻译
type Backend struct {
	client *inference.Client
}

func NewBackend(client *inference.Client) *Backend {
	return &Backend{client: client}
}

func (b *Backend) Name() string { return "http:" + b.client.BaseURL() }

func (b *Backend) Load(ctx context.Context, _ string, modelID string) (translate.Model, error) {
	if modelID == "" {
		return nil, errors.New("model id is required")
	}
	if err := b.client.PostJSON(ctx, "load", map[string]string{"model": modelID}, nil); err != nil {
		return nil, err
	}
	return &marianModel{client: b.client, modelID: modelID}, nil
}

type marianModel struct {
	client  *inference.Client
	modelID string
}

func (m *marianModel) Translate(ctx context.Context, text string) (string, error) {
	var out struct {
		Translation string `json:"translation"`
	}
	err := m.client.PostJSON(ctx, "translate", map[string]string{
		"model": m.modelID,
		"text":  text,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Translation, nil
}
