package providers

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"

	"accessworld-server-go/internal/domain/asr"
	asropenai "accessworld-server-go/internal/domain/asr/infrastructure/adapters/openai"
	asrremote "accessworld-server-go/internal/domain/asr/infrastructure/adapters/remote"
	"accessworld-server-go/internal/domain/caption"
	captionopenai "accessworld-server-go/internal/domain/caption/infrastructure/adapters/openai"
	captionremote "accessworld-server-go/internal/domain/caption/infrastructure/adapters/remote"
	"accessworld-server-go/internal/domain/depth"
	depthremote "accessworld-server-go/internal/domain/depth/infrastructure/adapters/remote"
	"accessworld-server-go/internal/domain/detect"
	detectremote "accessworld-server-go/internal/domain/detect/infrastructure/adapters/remote"
	"accessworld-server-go/internal/domain/pipeline"
	"accessworld-server-go/internal/domain/translate"
	translateopenai "accessworld-server-go/internal/domain/translate/infrastructure/adapters/openai"
	translateremote "accessworld-server-go/internal/domain/translate/infrastructure/adapters/remote"
	"accessworld-server-go/internal/domain/tts"
	ttsedge "accessworld-server-go/internal/domain/tts/infrastructure/adapters/edge"
	"accessworld-server-go/internal/platform/config"
	platformerrors "accessworld-server-go/internal/platform/errors"
	"accessworld-server-go/internal/platform/inference"
	"accessworld-server-go/internal/utils"
)

// Provider types accepted in the providers config section.
const (
	TypeOpenAI = "openai"
	TypeHTTP   = "http"
	TypeEdge   = "edge"
)

// Publisher is satisfied by the event bus.
type Publisher interface {
	PublishAsync(topic string, args ...interface{})
}

// Dependencies are the shared collaborators handed to every provider.
type Dependencies struct {
	Logger      *utils.Logger
	Publisher   Publisher
	SpeechCache tts.Cache
}

// Manager builds the provider bundle once at startup and owns its resources.
type Manager struct {
	logger     *utils.Logger
	providers  pipeline.Providers
	translator *translate.Service
	speech     *tts.Service
	backends   map[string]string
	remotes    map[string]*inference.Client

	closeOnce sync.Once
}

// NewManager constructs every provider declared in cfg. Any unknown type or
// missing setting fails the whole bundle.
func NewManager(cfg *config.Config, deps Dependencies) (*Manager, error) {
	if cfg == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "providers.new", "providers manager requires config")
	}
	logger := deps.Logger
	if logger == nil {
		logger = utils.DefaultLogger
	}

	m := &Manager{
		logger:   logger,
		backends: make(map[string]string),
		remotes:  make(map[string]*inference.Client),
	}
	pc := cfg.Providers

	var errs []error
	if err := m.buildTranscriber(pc.ASR); err != nil {
		errs = append(errs, err)
	}
	if err := m.buildCaptioner(pc.Caption); err != nil {
		errs = append(errs, err)
	}
	if err := m.buildDetector(pc.Detect); err != nil {
		errs = append(errs, err)
	}
	if err := m.buildDepth(pc.Depth); err != nil {
		errs = append(errs, err)
	}
	if err := m.buildTranslator(pc.Translate, deps.Publisher); err != nil {
		errs = append(errs, err)
	}
	if err := m.buildSynthesizer(pc.TTS, deps); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindConfig, "providers.new", "invalid provider configuration", err)
	}
	if err := m.providers.Validate(); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindBootstrap, "providers.new", "incomplete provider bundle", err)
	}

	names := make([]string, 0, len(m.backends))
	for name, backend := range m.backends {
		names = append(names, name+"="+backend)
	}
	sort.Strings(names)
	logger.InfoTag("引导", "感知模型已就绪: %s", strings.Join(names, ", "))
	return m, nil
}

// Providers returns the capability bundle for the orchestrator.
func (m *Manager) Providers() pipeline.Providers {
	return m.providers
}

// Backends maps each capability to the backend serving it.
func (m *Manager) Backends() map[string]string {
	return maps.Clone(m.backends)
}

// LoadedLanguages lists translation languages with a warm model.
func (m *Manager) LoadedLanguages() []string {
	if m.translator == nil {
		return nil
	}
	return m.translator.Loaded()
}

// Probe checks every HTTP inference service and reports "ok" or the error.
func (m *Manager) Probe(ctx context.Context) map[string]string {
	status := make(map[string]string, len(m.remotes))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for name, client := range m.remotes {
		wg.Add(1)
		go func(name string, client *inference.Client) {
			defer wg.Done()
			result := "ok"
			if err := client.Health(ctx); err != nil {
				result = err.Error()
			}
			mu.Lock()
			status[name] = result
			mu.Unlock()
		}(name, client)
	}
	wg.Wait()
	return status
}

// Close releases the speech cache.
func (m *Manager) Close() error {
	var err error
	m.closeOnce.Do(func() {
		if m.speech != nil {
			err = m.speech.Close()
		}
	})
	return err
}

func (m *Manager) remote(name string, mc config.ModelConfig) (*inference.Client, error) {
	if mc.BaseURL == "" {
		return nil, fmt.Errorf("%s: url is required for type %q", name, TypeHTTP)
	}
	opts := []inference.Option{inference.WithTimeout(mc.Timeout)}
	if mc.APIKey != "" {
		opts = append(opts, inference.WithAPIKey(mc.APIKey))
	}
	client := inference.NewClient(mc.BaseURL, opts...)
	m.remotes[name] = client
	return client, nil
}

func unknownType(name, typ string) error {
	return fmt.Errorf("%s: unsupported provider type %q", name, typ)
}

func (m *Manager) buildTranscriber(c config.ASRConfig) error {
	var provider asr.Provider
	switch c.Type {
	case TypeOpenAI:
		provider = asropenai.NewProvider(asropenai.Config{
			APIKey:   c.APIKey,
			BaseURL:  c.BaseURL,
			Model:    c.ModelName,
			Language: c.Language,
			Timeout:  c.Timeout,
		})
	case TypeHTTP:
		client, err := m.remote(pipeline.ProviderTranscriber, c.ModelConfig)
		if err != nil {
			return err
		}
		provider = asrremote.NewProvider(client, c.Language)
	default:
		return unknownType(pipeline.ProviderTranscriber, c.Type)
	}
	m.backends[pipeline.ProviderTranscriber] = provider.Name()
	m.providers.Transcriber = asr.NewService(provider, m.logger)
	return nil
}

func (m *Manager) buildCaptioner(c config.CaptionConfig) error {
	var provider caption.Provider
	switch c.Type {
	case TypeOpenAI:
		p, err := captionopenai.NewProvider(captionopenai.Config{
			APIKey:      c.APIKey,
			BaseURL:     c.BaseURL,
			Model:       c.ModelName,
			Prompt:      c.Prompt,
			MaxTokens:   c.MaxTokens,
			Temperature: float32(c.Temperature),
			Timeout:     c.Timeout,
		}, m.logger)
		if err != nil {
			return err
		}
		provider = p
	case TypeHTTP:
		client, err := m.remote(pipeline.ProviderCaptioner, c.ModelConfig)
		if err != nil {
			return err
		}
		provider = captionremote.NewProvider(client)
	default:
		return unknownType(pipeline.ProviderCaptioner, c.Type)
	}
	m.backends[pipeline.ProviderCaptioner] = provider.Name()
	m.providers.Captioner = caption.NewService(provider, m.logger)
	return nil
}

func (m *Manager) buildDetector(c config.DetectConfig) error {
	if c.Type != TypeHTTP {
		return unknownType(pipeline.ProviderDetector, c.Type)
	}
	client, err := m.remote(pipeline.ProviderDetector, c.ModelConfig)
	if err != nil {
		return err
	}
	provider := detectremote.NewProvider(client)
	m.backends[pipeline.ProviderDetector] = provider.Name()
	m.providers.Detector = detect.NewService(provider, detect.Options{
		Threshold:  c.Threshold,
		MaxResults: c.MaxResults,
	}, m.logger)
	return nil
}

func (m *Manager) buildDepth(c config.DepthConfig) error {
	if c.Type != TypeHTTP {
		return unknownType(pipeline.ProviderDepth, c.Type)
	}
	client, err := m.remote(pipeline.ProviderDepth, c.ModelConfig)
	if err != nil {
		return err
	}
	provider := depthremote.NewProvider(client)
	m.backends[pipeline.ProviderDepth] = provider.Name()
	m.providers.Depth = depth.NewService(provider, m.logger)
	return nil
}

func (m *Manager) buildTranslator(c config.TranslateConfig, publisher Publisher) error {
	var backend translate.Backend
	switch c.Type {
	case TypeOpenAI:
		b, err := translateopenai.NewBackend(translateopenai.Config{
			APIKey:      c.APIKey,
			BaseURL:     c.BaseURL,
			Model:       c.ModelName,
			Temperature: float32(c.Temperature),
			Timeout:     c.Timeout,
		})
		if err != nil {
			return err
		}
		backend = b
	case TypeHTTP:
		client, err := m.remote(pipeline.ProviderTranslator, c.ModelConfig)
		if err != nil {
			return err
		}
		backend = translateremote.NewBackend(client)
	default:
		return unknownType(pipeline.ProviderTranslator, c.Type)
	}

	opts := translate.Options{LoadTimeout: c.LoadTimeout}
	if publisher != nil {
		opts.Publisher = publisher
	}
	m.translator = translate.NewService(backend, opts, m.logger)
	m.backends[pipeline.ProviderTranslator] = backend.Name()
	m.providers.Translator = m.translator
	return nil
}

func (m *Manager) buildSynthesizer(c config.TTSConfig, deps Dependencies) error {
	var provider tts.Provider
	switch c.Type {
	case TypeEdge, "":
		provider = ttsedge.NewProvider(ttsedge.Config{
			Voice:  c.Voice,
			Rate:   c.Rate,
			Volume: c.Volume,
			Pitch:  c.Pitch,
		}, m.logger)
	default:
		return unknownType(pipeline.ProviderSynthesizer, c.Type)
	}

	opts := tts.Options{MaxChars: c.MaxChars, Cache: deps.SpeechCache}
	if deps.Publisher != nil {
		opts.Publisher = deps.Publisher
	}
	m.speech = tts.NewService(provider, opts, m.logger)
	m.backends[pipeline.ProviderSynthesizer] = provider.Name() + ":" + provider.Voice()
	m.providers.Synthesizer = m.speech
	return nil
}
