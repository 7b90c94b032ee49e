package asr

import (
	"context"

	"accessworld-server-go/internal/domain/perception"
	platformerrors "accessworld-server-go/internal/platform/errors"
	"accessworld-server-go/internal/utils"
)

// Provider 语音识别后端
type Provider interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
	Name() string
}

// Service 把识别失败转换为空文本
type Service struct {
	provider Provider
	logger   *utils.Logger
}

func NewService(provider Provider, logger *utils.Logger) *Service {
	return &Service{provider: provider, logger: logger}
}

// Transcribe returns the cleaned transcript, or "" with Degraded set on failure.
func (s *Service) Transcribe(ctx context.Context, audio []byte, filename string) perception.Outcome[string] {
	if len(audio) == 0 {
		return perception.Degrade("", platformerrors.New(platformerrors.KindProvider, "asr", "empty audio"))
	}
	text, err := s.provider.Transcribe(ctx, audio, filename)
	if err != nil {
		s.logger.WarnTag("ASR", "%s 识别失败: %v", s.provider.Name(), err)
		return perception.Degrade("", platformerrors.Wrap(platformerrors.KindProvider, "asr", s.provider.Name(), err))
	}
	text = utils.CleanText(text)
	if text == "" {
		// 静音或无法识别，不视为后端故障
		s.logger.DebugTag("ASR", "识别结果为空")
		return perception.OK("")
	}
	s.logger.InfoTag("ASR", "识别完成，长度=%d", len([]rune(text)))
	return perception.OK(text)
}
