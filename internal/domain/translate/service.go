package translate

import (
	"context"
	"strings"
	"time"

	"accessworld-server-go/internal/domain/eventbus"
	"accessworld-server-go/internal/domain/perception"
	platformerrors "accessworld-server-go/internal/platform/errors"
	"accessworld-server-go/internal/utils"
)

const defaultLoadTimeout = 2 * time.Minute

// Model translates English text into one fixed target language.
type Model interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Backend 按语言加载翻译模型
type Backend interface {
	Load(ctx context.Context, lang, modelID string) (Model, error)
	Name() string
}

// Publisher receives model-loaded events.
type Publisher interface {
	PublishAsync(topic string, args ...interface{})
}

type Options struct {
	// LoadTimeout bounds a model load. Loads are detached from the requesting
	// context so one cancelled request does not abort a load others wait on.
	LoadTimeout time.Duration
	Publisher   Publisher
}

type Service struct {
	backend     Backend
	cache       *modelCache
	loadTimeout time.Duration
	publisher   Publisher
	logger      *utils.Logger
}

func NewService(backend Backend, opts Options, logger *utils.Logger) *Service {
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = defaultLoadTimeout
	}
	return &Service{
		backend:     backend,
		cache:       newModelCache(),
		loadTimeout: opts.LoadTimeout,
		publisher:   opts.Publisher,
		logger:      logger,
	}
}

// Supported lists "en" and every translation target.
func (s *Service) Supported() []string {
	return SupportedCodes()
}

// Loaded lists the languages whose models are cached.
func (s *Service) Loaded() []string {
	return s.cache.languages()
}

// Translate returns (outcome, true) for supported languages and (zero, false)
// otherwise. English is returned unchanged. Backend failures degrade to the
// English input text.
func (s *Service) Translate(ctx context.Context, text, lang string) (perception.Outcome[string], bool) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == English {
		return perception.OK(text), true
	}
	target, ok := lookup(lang)
	if !ok {
		return perception.Outcome[string]{}, false
	}
	if strings.TrimSpace(text) == "" {
		return perception.OK(text), true
	}

	model, err := s.model(ctx, target)
	if err != nil {
		s.logger.ErrorTag("翻译", "加载模型 %s 失败: %v", target.model, err)
		return perception.Degrade(text, platformerrors.Wrap(platformerrors.KindProvider, "translate.load", target.code, err)), true
	}

	translated, err := model.Translate(ctx, text)
	if err != nil {
		s.logger.WarnTag("翻译", "翻译到 %s 失败: %v", target.code, err)
		return perception.Degrade(text, platformerrors.Wrap(platformerrors.KindProvider, "translate", target.code, err)), true
	}
	return perception.OK(strings.TrimSpace(translated)), true
}

func (s *Service) model(ctx context.Context, target language) (Model, error) {
	start := time.Now()
	m, loaded, err := s.cache.get(ctx, target.code, func(ctx context.Context) (Model, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
		defer cancel()
		s.logger.InfoTag("翻译", "加载翻译模型 %s (%s)", target.model, s.backend.Name())
		return s.backend.Load(loadCtx, target.code, target.model)
	})
	if err != nil {
		return nil, err
	}
	if loaded {
		elapsed := time.Since(start)
		s.logger.InfoTag("翻译", "翻译模型 %s 已就绪，耗时 %s", target.model, elapsed)
		if s.publisher != nil {
			s.publisher.PublishAsync(eventbus.EventTranslateModelLoaded, eventbus.TranslateEventData{
				Language: target.code,
				Model:    target.model,
				Duration: elapsed,
			})
		}
	}
	return m, nil
}
