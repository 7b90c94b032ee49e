package vision

import (
	"context"

	"accessworld-server-go/internal/domain/image"
	"accessworld-server-go/internal/domain/perception"
	"accessworld-server-go/internal/domain/pipeline"
)

// Analyzer is the pipeline surface the handlers need. *pipeline.Orchestrator
// satisfies it.
type Analyzer interface {
	Run(ctx context.Context, req pipeline.Request) pipeline.PipelineResult
	Transcribe(ctx context.Context, audio []byte, filename string) perception.Outcome[string]
	SupportedLanguages() []string
}

// ImageProcessor validates uploaded images. *image.Pipeline satisfies it.
type ImageProcessor interface {
	Process(ctx context.Context, input image.Input) (*image.Output, error)
}

// VoiceResponse is returned by POST /api/voice.
type VoiceResponse struct {
	Transcript  string `json:"transcript"`
	LengthChars int    `json:"length_chars"`
}

// allowedAudio 浏览器录音可能使用的类型；部分浏览器上传 WebM 时使用 octet-stream
var allowedAudio = map[string]bool{
	"audio/wav":                true,
	"audio/wave":               true,
	"audio/x-wav":              true,
	"audio/webm":               true,
	"audio/ogg":                true,
	"audio/mpeg":               true,
	"audio/mp4":                true,
	"application/octet-stream": true,
}

const minAudioBytes = 100
