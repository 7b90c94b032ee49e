package pipeline

import (
	"context"

	"accessworld-server-go/internal/domain/perception"
)

// Request is one analysis call. Empty Language means the configured default.
type Request struct {
	Image    []byte
	Language string
	Query    string
}

// PipelineResult is the unified per-request answer. Audio encodes to base64
// under audio_b64 when marshalled.
type PipelineResult struct {
	RequestID      string                       `json:"request_id"`
	Query          string                       `json:"query"`
	Intent         Intent                       `json:"intent"`
	Description    string                       `json:"description"`
	Objects        []perception.DetectionResult `json:"objects"`
	Hazards        []string                     `json:"hazards"`
	Depth          perception.DepthResult       `json:"depth"`
	Answer         string                       `json:"answer"`
	TranslatedText string                       `json:"translated_text"`
	Audio          []byte                       `json:"audio_b64"`
	Language       string                       `json:"language"`
	SafeToWalk     bool                         `json:"safe_to_walk"`
	Degraded       []string                     `json:"degraded"`
}

type requestIDKey struct{}

// WithRequestID attaches the request ID used for the result and emitted events.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request ID stored in ctx, if any.
func RequestIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}
