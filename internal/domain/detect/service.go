package detect

import (
	"context"
	"sort"

	"accessworld-server-go/internal/domain/perception"
	platformerrors "accessworld-server-go/internal/platform/errors"
	"accessworld-server-go/internal/utils"
)

const (
	DefaultThreshold  = 0.70
	DefaultMaxResults = 10
)

// Raw is one unfiltered detection as reported by a backend.
type Raw struct {
	Label string     `json:"label"`
	Score float64    `json:"score"`
	Box   [4]float64 `json:"box"`
}

// Provider 目标检测后端，返回未过滤的结果
type Provider interface {
	Detect(ctx context.Context, image []byte) ([]Raw, error)
	Name() string
}

// Options tunes post-processing.
type Options struct {
	Threshold  float64
	MaxResults int
}

type Service struct {
	provider Provider
	opts     Options
	logger   *utils.Logger
}

func NewService(provider Provider, opts Options, logger *utils.Logger) *Service {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	return &Service{provider: provider, opts: opts, logger: logger}
}

// Detect returns detections at or above the threshold, highest confidence
// first, truncated to MaxResults. Failure yields an empty list.
func (s *Service) Detect(ctx context.Context, image []byte) perception.Outcome[[]perception.DetectionResult] {
	raw, err := s.provider.Detect(ctx, image)
	if err != nil {
		s.logger.WarnTag("检测", "%s 检测失败: %v", s.provider.Name(), err)
		return perception.Degrade([]perception.DetectionResult{}, platformerrors.Wrap(platformerrors.KindProvider, "detect", s.provider.Name(), err))
	}
	results := Postprocess(raw, s.opts.Threshold, s.opts.MaxResults)
	s.logger.DebugTag("检测", "原始=%d 保留=%d", len(raw), len(results))
	return perception.OK(results)
}

// Postprocess filters, sorts and rounds raw detections. Confidence keeps three
// decimals and box coordinates one.
func Postprocess(raw []Raw, threshold float64, limit int) []perception.DetectionResult {
	out := make([]perception.DetectionResult, 0, len(raw))
	for _, r := range raw {
		if r.Label == "" || r.Score < threshold {
			continue
		}
		d := perception.DetectionResult{
			Label:      r.Label,
			Confidence: perception.Round(r.Score, 3),
		}
		for i, v := range r.Box {
			d.Box[i] = perception.Round(v, 1)
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
