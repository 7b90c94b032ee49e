package caption

import (
	"context"
	"errors"
	"strings"

	"accessworld-server-go/internal/domain/perception"
	platformerrors "accessworld-server-go/internal/platform/errors"
	"accessworld-server-go/internal/utils"
)

// Fallback is returned whenever the captioning backend fails.
const Fallback = "Unable to describe the scene."

// Provider is a captioning backend.
type Provider interface {
	Caption(ctx context.Context, image []byte) (string, error)
	Name() string
}

// Service turns backend errors into the documented fallback.
type Service struct {
	provider Provider
	logger   *utils.Logger
}

func NewService(provider Provider, logger *utils.Logger) *Service {
	return &Service{provider: provider, logger: logger}
}

// Caption describes the image. An empty caption counts as a failure.
func (s *Service) Caption(ctx context.Context, image []byte) perception.Outcome[string] {
	text, err := s.provider.Caption(ctx, image)
	if err == nil {
		text = utils.CleanText(text)
		if text == "" {
			err = errors.New("empty caption")
		}
	}
	if err != nil {
		s.logger.WarnTag("字幕", "%s 生成描述失败: %v", s.provider.Name(), err)
		return perception.Degrade(Fallback, platformerrors.Wrap(platformerrors.KindProvider, "caption", s.provider.Name(), err))
	}
	s.logger.DebugTag("字幕", "描述: %s", text)
	return perception.OK(strings.TrimSpace(text))
}
