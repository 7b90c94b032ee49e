package tts

import (
	"context"
	"errors"

	"accessworld-server-go/internal/domain/eventbus"
	"accessworld-server-go/internal/domain/perception"
	platformerrors "accessworld-server-go/internal/platform/errors"
	"accessworld-server-go/internal/utils"
)

const (
	DefaultMaxChars = 580
	truncateSuffix  = "..."
)

var errCircuitOpen = errors.New("circuit breaker is open")

// Provider 语音合成后端
type Provider interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	Voice() string
	Name() string
}

// Publisher receives cache-hit events.
type Publisher interface {
	PublishAsync(topic string, args ...interface{})
}

type Options struct {
	// MaxChars bounds the spoken text; longer input is cut and suffixed with "...".
	MaxChars  int
	Cache     Cache
	Breaker   *CircuitBreaker
	Publisher Publisher
}

type Service struct {
	provider  Provider
	maxChars  int
	cache     Cache
	breaker   *CircuitBreaker
	publisher Publisher
	logger    *utils.Logger
}

func NewService(provider Provider, opts Options, logger *utils.Logger) *Service {
	if opts.MaxChars <= 0 {
		opts.MaxChars = DefaultMaxChars
	}
	if opts.Cache == nil {
		opts.Cache = noopCache{}
	}
	if opts.Breaker == nil {
		opts.Breaker = NewCircuitBreaker(5, 0)
	}
	return &Service{
		provider:  provider,
		maxChars:  opts.MaxChars,
		cache:     opts.Cache,
		breaker:   opts.Breaker,
		publisher: opts.Publisher,
		logger:    logger,
	}
}

// PrepareText applies the length bound used before synthesis.
func PrepareText(text string, maxChars int) string {
	return utils.TruncateRunes(text, maxChars, truncateSuffix)
}

// Synthesize renders text to audio. Failures yield empty audio.
func (s *Service) Synthesize(ctx context.Context, text string) perception.Outcome[[]byte] {
	text = PrepareText(utils.RemoveControlCharacters(text), s.maxChars)
	if text == "" {
		return perception.OK([]byte{})
	}

	key := utils.HashKey(s.provider.Name(), s.provider.Voice(), text)
	if audio, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.WarnTag("缓存", "读取语音缓存失败(%s): %v", s.cache.Driver(), err)
	} else if ok {
		s.logger.DebugTag("TTS", "使用缓存音频，长度=%d", len(audio))
		if s.publisher != nil {
			s.publisher.PublishAsync(eventbus.EventSpeechCacheHit, eventbus.SpeechCacheEventData{Key: key, Driver: s.cache.Driver()})
		}
		return perception.OK(audio)
	}

	if !s.breaker.Allow() {
		return perception.Degrade([]byte{}, platformerrors.Wrap(platformerrors.KindProvider, "tts", s.provider.Name(), errCircuitOpen))
	}

	audio, err := s.provider.Synthesize(ctx, text)
	if err != nil {
		s.breaker.RecordFailure()
		s.logger.ErrorTag("TTS", "语音合成失败: %v", err)
		return perception.Degrade([]byte{}, platformerrors.Wrap(platformerrors.KindProvider, "tts", s.provider.Name(), err))
	}
	s.breaker.RecordSuccess()

	if err := s.cache.Set(ctx, key, audio); err != nil {
		s.logger.WarnTag("缓存", "写入语音缓存失败(%s): %v", s.cache.Driver(), err)
	}
	if d, err := AudioDuration(audio); err == nil {
		s.logger.InfoTag("TTS", "音频合成完成，大小: %d字节，时长: %s", len(audio), d)
	} else {
		s.logger.InfoTag("TTS", "音频合成完成，大小: %d字节", len(audio))
	}
	return perception.OK(audio)
}

// Close releases the cache.
func (s *Service) Close() error {
	return s.cache.Close()
}
