package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"accessworld-server-go/internal/utils"
)

const defaultPrompt = "Describe this scene for a visually impaired pedestrian in one short sentence."

// Config OpenAI 兼容视觉模型配置
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Prompt      string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// Provider 通过 OpenAI 兼容的视觉接口生成场景描述
type Provider struct {
	client *openai.Client
	config Config
	logger *utils.Logger
}

func NewProvider(config Config, logger *utils.Logger) (*Provider, error) {
	if config.Model == "" {
		return nil, errors.New("caption model_name is required")
	}
	if config.Prompt == "" {
		config.Prompt = defaultPrompt
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 100
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if config.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: config.Timeout}
	}

	return &Provider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		logger: logger,
	}, nil
}

func (p *Provider) Name() string { return "openai:" + p.config.Model }

// Caption 发送单张图片并返回模型的一句话描述
func (p *Provider) Caption(ctx context.Context, image []byte) (string, error) {
	format := imageFormat(image)
	dataURL := fmt.Sprintf("data:image/%s;base64,%s", format, base64.StdEncoding.EncodeToString(image))

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.config.Model,
		MaxTokens:   p.config.MaxTokens,
		Temperature: p.config.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: p.config.Prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailLow,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("vision chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("vision chat completion returned no choices")
	}
	p.logger.DebugTag("字幕", "OpenAI Vision 调用成功 model=%s tokens=%d", p.config.Model, resp.Usage.TotalTokens)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// imageFormat 根据文件头推断 data URL 的图片子类型
func imageFormat(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	default:
		return "jpeg"
	}
}
