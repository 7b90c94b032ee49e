package edge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wujunwei928/edge-tts-go/edge_tts"

	"accessworld-server-go/internal/utils"
)

const defaultVoice = "en-US-AriaNeural"

// Config Edge TTS配置
type Config struct {
	Voice          string
	Rate           string
	Volume         string
	Pitch          string
	ReceiveTimeout time.Duration
}

type streamer interface {
	Stream() ([]byte, error)
}

type communicateFunc func(text string, opts ...edge_tts.CommunicateOption) (streamer, error)

// Provider 通过 Edge 在线语音合成生成 MP3 音频
type Provider struct {
	config      Config
	communicate communicateFunc
	logger      *utils.Logger
}

// NewProvider 创建 Edge TTS 提供者
func NewProvider(config Config, logger *utils.Logger) *Provider {
	if config.Voice == "" {
		config.Voice = defaultVoice
	}
	if config.Rate == "" {
		config.Rate = "+0%"
	}
	if config.Volume == "" {
		config.Volume = "+0%"
	}
	if config.Pitch == "" {
		config.Pitch = "+0Hz"
	}
	if config.ReceiveTimeout <= 0 {
		config.ReceiveTimeout = 20 * time.Second
	}
	return &Provider{
		config: config,
		communicate: func(text string, opts ...edge_tts.CommunicateOption) (streamer, error) {
			return edge_tts.NewCommunicate(text, opts...)
		},
		logger: logger,
	}
}

func (p *Provider) Name() string { return "edge" }

// Voice 返回当前使用的语音
func (p *Provider) Voice() string { return p.config.Voice }

// Synthesize 合成音频（同步模式，返回 MP3 数据）
func (p *Provider) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, errors.New("text cannot be empty")
	}

	conn, err := p.communicate(text,
		edge_tts.SetVoice(p.config.Voice),
		edge_tts.SetRate(p.config.Rate),
		edge_tts.SetVolume(p.config.Volume),
		edge_tts.SetPitch(p.config.Pitch),
		edge_tts.SetReceiveTimeout(int(p.config.ReceiveTimeout/time.Second)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Edge TTS communicator: %w", err)
	}

	type result struct {
		audio []byte
		err   error
	}
	done := make(chan result, 1)
	start := time.Now()
	go func() {
		audio, err := conn.Stream()
		done <- result{audio: audio, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("edge TTS synthesis failed: %w", res.err)
		}
		if len(res.audio) == 0 {
			return nil, errors.New("edge TTS returned no audio")
		}
		p.logger.DebugTag("TTS", "Edge 语音合成耗时: %v, 大小: %d字节", time.Since(start), len(res.audio))
		return res.audio, nil
	}
}
