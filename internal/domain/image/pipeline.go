package image

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"accessworld-server-go/internal/platform/config"
	"accessworld-server-go/internal/utils"
)

// Pipeline reads uploads with a size cap and validates them.
type Pipeline struct {
	validator *SecurityValidator
	logger    *utils.Logger
	security  *config.SecurityConfig

	processed atomic.Int64
	accepted  atomic.Int64
	failed    atomic.Int64
	incidents atomic.Int64
}

// Options configures the pipeline behaviour.
type Options struct {
	Security *config.SecurityConfig
	Logger   *utils.Logger
}

// Input describes a streaming image payload.
type Input struct {
	Reader         io.Reader
	DeclaredFormat string
	Source         string
}

// Output contains the validated image.
type Output struct {
	Bytes      []byte
	Format     string
	Validation ValidationResult
}

// NewPipeline constructs an upload pipeline.
func NewPipeline(opts Options) (*Pipeline, error) {
	if opts.Security == nil {
		return nil, fmt.Errorf("security config is required")
	}
	if opts.Logger == nil {
		opts.Logger = utils.DefaultLogger
	}
	return &Pipeline{
		validator: NewSecurityValidator(opts.Security, opts.Logger),
		logger:    opts.Logger,
		security:  opts.Security,
	}, nil
}

// Process reads at most MaxFileSize+1 bytes from the input and validates them.
func (p *Pipeline) Process(ctx context.Context, input Input) (*Output, error) {
	if input.Reader == nil {
		return nil, fmt.Errorf("image reader is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	maxSize := p.security.MaxFileSize
	if maxSize <= 0 {
		maxSize = 10 * 1024 * 1024
	}
	limited := &io.LimitedReader{R: input.Reader, N: maxSize + 1}
	buf := bytes.NewBuffer(make([]byte, 0, 32*1024))
	if _, err := io.Copy(buf, limited); err != nil {
		return nil, fmt.Errorf("stream image bytes: %w", err)
	}
	if limited.N <= 0 {
		p.record(ValidationResult{SecurityRisk: "file too large"})
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrTooLarge, maxSize)
	}

	validation := p.validator.ValidateBytes(buf.Bytes(), input.DeclaredFormat)
	return p.finish(buf.Bytes(), validation, input.Source)
}

// ProcessBase64 validates a base64 image such as a WebSocket frame.
func (p *Pipeline) ProcessBase64(ctx context.Context, data, source string) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, validation := p.validator.ValidateBase64(data)
	return p.finish(raw, validation, source)
}

func (p *Pipeline) finish(raw []byte, validation ValidationResult, source string) (*Output, error) {
	p.record(validation)
	if !validation.IsValid {
		p.logger.DebugTag("图片", "拒绝上传 source=%s risk=%s: %v", source, validation.SecurityRisk, validation.Error)
		if validation.Error != nil {
			return nil, validation.Error
		}
		return nil, fmt.Errorf("image validation failed")
	}
	return &Output{Bytes: raw, Format: validation.Format, Validation: validation}, nil
}

func (p *Pipeline) record(result ValidationResult) {
	p.processed.Add(1)
	if result.IsValid {
		p.accepted.Add(1)
		return
	}
	p.failed.Add(1)
	if result.SecurityRisk != "" {
		p.incidents.Add(1)
	}
}

// Metrics returns a snapshot of validation counters.
func (p *Pipeline) Metrics() Metrics {
	return Metrics{
		TotalProcessed:    p.processed.Load(),
		Accepted:          p.accepted.Load(),
		FailedValidations: p.failed.Load(),
		SecurityIncidents: p.incidents.Load(),
	}
}
