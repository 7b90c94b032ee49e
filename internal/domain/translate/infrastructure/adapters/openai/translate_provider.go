package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"accessworld-server-go/internal/domain/translate"
)

// Config OpenAI 兼容翻译配置
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// Backend 使用对话补全接口完成翻译，加载不产生网络请求
type Backend struct {
	client *openai.Client
	config Config
}

func NewBackend(config Config) (*Backend, error) {
	if config.Model == "" {
		return nil, errors.New("translate model_name is required")
	}
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if config.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: config.Timeout}
	}
	return &Backend{client: openai.NewClientWithConfig(clientConfig), config: config}, nil
}

func (b *Backend) Name() string { return "openai:" + b.config.Model }

func (b *Backend) Load(_ context.Context, lang, _ string) (translate.Model, error) {
	name := translate.LanguageName(lang)
	if name == "" {
		return nil, fmt.Errorf("unsupported language %q", lang)
	}
	return &chatModel{
		backend: b,
		prompt: fmt.Sprintf("You translate short assistive announcements from English to %s. "+
			"Reply with the translation only, keeping warnings and numbers intact.", name),
	}, nil
}

type chatModel struct {
	backend *Backend
	prompt  string
}

func (m *chatModel) Translate(ctx context.Context, text string) (string, error) {
	resp, err := m.backend.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       m.backend.config.Model,
		Temperature: m.backend.config.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: m.prompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return "", fmt.Errorf("translate chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("translate chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
