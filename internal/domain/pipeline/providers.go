package pipeline

import (
	"context"
	"errors"

	"accessworld-server-go/internal/domain/perception"
)

// Provider names used in PipelineResult.Degraded and emitted events.
const (
	ProviderTranscriber = "asr"
	ProviderCaptioner   = "caption"
	ProviderDetector    = "detect"
	ProviderDepth       = "depth"
	ProviderTranslator  = "translate"
	ProviderSynthesizer = "tts"
)

// Transcriber turns speech audio into text. Fallback is "".
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) perception.Outcome[string]
}

// Captioner describes an image in one sentence.
type Captioner interface {
	Caption(ctx context.Context, image []byte) perception.Outcome[string]
}

// Detector returns detections sorted by confidence, at most ten.
type Detector interface {
	Detect(ctx context.Context, image []byte) perception.Outcome[[]perception.DetectionResult]
}

// DepthAnalyzer classifies the three image zones by proximity.
type DepthAnalyzer interface {
	Analyze(ctx context.Context, image []byte) perception.Outcome[perception.DepthResult]
}

// Translator translates English text. The bool is false when lang is unsupported.
type Translator interface {
	Translate(ctx context.Context, text, lang string) (perception.Outcome[string], bool)
	Supported() []string
}

// SpeechSynthesizer renders English text to encoded audio.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) perception.Outcome[[]byte]
}

// Providers is the ready-to-use capability bundle handed to the orchestrator.
type Providers struct {
	Transcriber Transcriber
	Captioner   Captioner
	Detector    Detector
	Depth       DepthAnalyzer
	Translator  Translator
	Synthesizer SpeechSynthesizer
}

// Validate fails when any capability is missing.
func (p Providers) Validate() error {
	var errs []error
	if p.Transcriber == nil {
		errs = append(errs, errors.New("transcriber is nil"))
	}
	if p.Captioner == nil {
		errs = append(errs, errors.New("captioner is nil"))
	}
	if p.Detector == nil {
		errs = append(errs, errors.New("detector is nil"))
	}
	if p.Depth == nil {
		errs = append(errs, errors.New("depth analyzer is nil"))
	}
	if p.Translator == nil {
		errs = append(errs, errors.New("translator is nil"))
	}
	if p.Synthesizer == nil {
		errs = append(errs, errors.New("speech synthesizer is nil"))
	}
	return errors.Join(errs...)
}
