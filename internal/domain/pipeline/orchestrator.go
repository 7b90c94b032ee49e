package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"accessworld-server-go/internal/domain/eventbus"
	"accessworld-server-go/internal/domain/perception"
	platformerrors "accessworld-server-go/internal/platform/errors"
	"accessworld-server-go/internal/platform/observability"
	"accessworld-server-go/internal/utils"
)

const (
	defaultProviderTimeout = 30 * time.Second
	english                = "en"
)

// Publisher receives pipeline events. AsyncEventBus satisfies it.
type Publisher interface {
	PublishAsync(topic string, args ...interface{})
}

// Options tunes an Orchestrator.
type Options struct {
	// ProviderTimeout bounds every single provider call. Zero means 30s.
	ProviderTimeout time.Duration
	DefaultLanguage string
	Publisher       Publisher
	Logger          *utils.Logger
}

// Orchestrator runs the fixed per-request perception pipeline.
type Orchestrator struct {
	providers       Providers
	timeout         time.Duration
	defaultLanguage string
	publisher       Publisher
	logger          *utils.Logger
}

// New validates the provider bundle and returns a ready orchestrator.
func New(providers Providers, opts Options) (*Orchestrator, error) {
	if err := providers.Validate(); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindPipeline, "pipeline.new", "provider bundle incomplete", err)
	}
	timeout := opts.ProviderTimeout
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}
	lang := strings.ToLower(strings.TrimSpace(opts.DefaultLanguage))
	if lang == "" {
		lang = english
	}
	return &Orchestrator{
		providers:       providers,
		timeout:         timeout,
		defaultLanguage: lang,
		publisher:       opts.Publisher,
		logger:          opts.Logger,
	}, nil
}

// SupportedLanguages lists translation targets including "en".
func (o *Orchestrator) SupportedLanguages() []string {
	return o.providers.Translator.Supported()
}

// Transcribe converts a spoken question to text. It never fails; a degraded
// outcome carries an empty transcript.
func (o *Orchestrator) Transcribe(ctx context.Context, audio []byte, filename string) perception.Outcome[string] {
	requestID := o.requestID(ctx)
	out := stage(ctx, o, ProviderTranscriber, func(ctx context.Context) perception.Outcome[string] {
		return o.providers.Transcriber.Transcribe(ctx, audio, filename)
	})
	if out.Degraded {
		o.reportDegraded(ctx, requestID, ProviderTranscriber, out.Err)
	}
	return out
}

// Run executes the pipeline for one image. It always returns a complete
// result; providers that failed contribute their fallback values and are
// listed in Degraded.
func (o *Orchestrator) Run(ctx context.Context, req Request) PipelineResult {
	start := time.Now()
	requestID := o.requestID(ctx)
	ctx = WithRequestID(ctx, requestID)

	language := strings.ToLower(strings.TrimSpace(req.Language))
	if language == "" {
		language = o.defaultLanguage
	}
	intent := Classify(req.Query)

	var (
		caption perception.Outcome[string]
		objects perception.Outcome[[]perception.DetectionResult]
		depth   perception.Outcome[perception.DepthResult]
	)
	var g errgroup.Group
	g.Go(func() error {
		caption = stage(ctx, o, ProviderCaptioner, func(ctx context.Context) perception.Outcome[string] {
			return o.providers.Captioner.Caption(ctx, req.Image)
		})
		return nil
	})
	g.Go(func() error {
		objects = stage(ctx, o, ProviderDetector, func(ctx context.Context) perception.Outcome[[]perception.DetectionResult] {
			return o.providers.Detector.Detect(ctx, req.Image)
		})
		return nil
	})
	g.Go(func() error {
		depth = stage(ctx, o, ProviderDepth, func(ctx context.Context) perception.Outcome[perception.DepthResult] {
			return o.providers.Depth.Analyze(ctx, req.Image)
		})
		return nil
	})
	_ = g.Wait()

	detections := objects.Value
	if detections == nil {
		detections = []perception.DetectionResult{}
	}
	hazards := HazardsIn(detections)
	safe := IsSafe(depth.Value, hazards)

	answer := Compose(intent, caption.Value, detections, hazards, depth.Value, safe)

	translated := answer
	var translation perception.Outcome[string]
	var translationPresent bool
	if language != english {
		translation, translationPresent = stageTranslate(ctx, o, answer, language)
		if translationPresent && translation.Value != "" {
			translated = translation.Value
		}
	}

	// 语音合成始终使用英文答案
	speech := stage(ctx, o, ProviderSynthesizer, func(ctx context.Context) perception.Outcome[[]byte] {
		return o.providers.Synthesizer.Synthesize(ctx, answer)
	})

	var degraded []string
	for _, d := range []struct {
		name     string
		degraded bool
		err      error
	}{
		{ProviderCaptioner, caption.Degraded, caption.Err},
		{ProviderDetector, objects.Degraded, objects.Err},
		{ProviderDepth, depth.Degraded, depth.Err},
		{ProviderTranslator, translationPresent && translation.Degraded, translation.Err},
		{ProviderSynthesizer, speech.Degraded, speech.Err},
	} {
		if d.degraded {
			degraded = append(degraded, d.name)
			o.reportDegraded(ctx, requestID, d.name, d.err)
		}
	}

	result := PipelineResult{
		RequestID:      requestID,
		Query:          req.Query,
		Intent:         intent,
		Description:    caption.Value,
		Objects:        detections,
		Hazards:        hazards,
		Depth:          depth.Value,
		Answer:         answer,
		TranslatedText: translated,
		Audio:          speech.Value,
		Language:       language,
		SafeToWalk:     safe,
		Degraded:       degraded,
	}
	if result.Degraded == nil {
		result.Degraded = []string{}
	}

	elapsed := time.Since(start)
	o.logger.InfoTag("管线", "请求完成 request=%s intent=%s lang=%s safe=%v hazards=%d degraded=%d 耗时=%s",
		requestID, intent, language, safe, len(hazards), len(degraded), elapsed)
	observability.RecordMetric(ctx, "pipeline_requests", 1, map[string]string{"intent": string(intent)})
	if o.publisher != nil {
		o.publisher.PublishAsync(eventbus.EventPipelineCompleted, eventbus.PipelineEventData{
			RequestID:  requestID,
			Intent:     string(intent),
			Language:   language,
			SafeToWalk: safe,
			Hazards:    hazards,
			Degraded:   degraded,
			Duration:   elapsed,
		})
	}
	return result
}

// stage runs one provider call under the per-provider timeout and a span.
func stage[T any](ctx context.Context, o *Orchestrator, name string, call func(context.Context) perception.Outcome[T]) perception.Outcome[T] {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	ctx, end := observability.StartSpan(ctx, "pipeline", name)
	out := call(ctx)
	end(out.Err)
	return out
}

func stageTranslate(ctx context.Context, o *Orchestrator, text, lang string) (perception.Outcome[string], bool) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	ctx, end := observability.StartSpan(ctx, "pipeline", ProviderTranslator)
	out, ok := o.providers.Translator.Translate(ctx, text, lang)
	end(out.Err)
	if !ok {
		o.logger.DebugTag("翻译", "不支持的语言 %s，使用英文答案", lang)
	}
	return out, ok
}

func (o *Orchestrator) requestID(ctx context.Context) string {
	if id, ok := RequestIDFrom(ctx); ok {
		return id
	}
	return uuid.NewString()
}

func (o *Orchestrator) reportDegraded(ctx context.Context, requestID, provider string, err error) {
	msg := "fallback value"
	if err != nil {
		msg = err.Error()
	}
	o.logger.WarnTag("管线", "提供者降级 request=%s provider=%s: %s", requestID, provider, msg)
	observability.RecordMetric(ctx, "provider_degraded", 1, map[string]string{"provider": provider})
	if o.publisher != nil {
		o.publisher.PublishAsync(eventbus.EventProviderDegraded, eventbus.ProviderEventData{
			RequestID: requestID,
			Provider:  provider,
			Error:     msg,
		})
	}
}
