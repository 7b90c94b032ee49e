package depth

import (
	"context"

	"accessworld-server-go/internal/domain/perception"
	platformerrors "accessworld-server-go/internal/platform/errors"
	"accessworld-server-go/internal/utils"
)

// Provider 深度估计后端，返回相对深度图
type Provider interface {
	Estimate(ctx context.Context, image []byte) (Map, error)
	Name() string
}

type Service struct {
	provider Provider
	logger   *utils.Logger
}

func NewService(provider Provider, logger *utils.Logger) *Service {
	return &Service{provider: provider, logger: logger}
}

// Analyze classifies the three zones. Any failure, including a malformed map,
// yields perception.UnknownDepth.
func (s *Service) Analyze(ctx context.Context, image []byte) perception.Outcome[perception.DepthResult] {
	m, err := s.provider.Estimate(ctx, image)
	if err != nil {
		s.logger.WarnTag("深度", "%s 深度估计失败: %v", s.provider.Name(), err)
		return perception.Degrade(perception.UnknownDepth(), platformerrors.Wrap(platformerrors.KindProvider, "depth", s.provider.Name(), err))
	}
	left, center, right, err := ZonePercents(m)
	if err != nil {
		s.logger.WarnTag("深度", "深度图无效: %v", err)
		return perception.Degrade(perception.UnknownDepth(), platformerrors.Wrap(platformerrors.KindProvider, "depth", "invalid depth map", err))
	}
	result := perception.NewDepthResult(left, center, right)
	s.logger.DebugTag("深度", "left=%.1f center=%.1f right=%.1f safe=%v", left, center, right, result.SafeToWalk)
	return perception.OK(result)
}
