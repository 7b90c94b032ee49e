package image

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"accessworld-server-go/internal/platform/config"
	"accessworld-server-go/internal/utils"
)

// SecurityValidator performs layered checks against uploaded images before
// they reach the perception providers.
type SecurityValidator struct {
	config *config.SecurityConfig
	logger *utils.Logger
}

// NewSecurityValidator constructs a new validator instance.
func NewSecurityValidator(config *config.SecurityConfig, logger *utils.Logger) *SecurityValidator {
	return &SecurityValidator{
		config: config,
		logger: logger,
	}
}

var imageSignatures = map[string][]byte{
	"jpeg": {0xFF, 0xD8},
	"png":  {0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A},
	"gif":  {0x47, 0x49, 0x46, 0x38},
	"webp": {0x52, 0x49, 0x46, 0x46},
}

// ValidateBase64 validates a base64 payload, with or without a data URL prefix.
func (v *SecurityValidator) ValidateBase64(data string) ([]byte, ValidationResult) {
	declared := ""
	if strings.HasPrefix(data, "data:") {
		comma := strings.IndexByte(data, ',')
		if comma < 0 {
			return nil, ValidationResult{Error: fmt.Errorf("malformed data url"), SecurityRisk: "invalid base64 encoding"}
		}
		declared = FormatFromContentType(strings.TrimSuffix(strings.TrimPrefix(data[:comma], "data:"), ";base64"))
		data = data[comma+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data))
	if err != nil {
		return nil, ValidationResult{Error: fmt.Errorf("decode base64: %w", err), SecurityRisk: "invalid base64 encoding"}
	}
	return raw, v.ValidateBytes(raw, declared)
}

// ValidateBytes validates raw bytes. declaredFormat may be a MIME type or a
// codec name; empty skips the allow-list check on the declaration.
func (v *SecurityValidator) ValidateBytes(raw []byte, declaredFormat string) ValidationResult {
	declaredFormat = FormatFromContentType(declaredFormat)
	result := ValidationResult{FileSize: int64(len(raw))}

	if int64(len(raw)) < v.minSize() {
		result.Error = ErrEmpty
		return result
	}

	if v.config.MaxFileSize > 0 && int64(len(raw)) > v.config.MaxFileSize {
		result.Error = fmt.Errorf("%w: %d bytes (max %d bytes)", ErrTooLarge, len(raw), v.config.MaxFileSize)
		result.SecurityRisk = "file too large"
		v.logger.WarnTag("图片", "图片过大: size=%d max_size=%d format=%s", len(raw), v.config.MaxFileSize, declaredFormat)
		return result
	}

	if declaredFormat != "" && !v.isFormatAllowed(declaredFormat) {
		result.Error = fmt.Errorf("%w: %s", ErrUnsupported, declaredFormat)
		result.SecurityRisk = "unapproved format"
		return result
	}

	decoded := v.validateImageDecoding(raw, declaredFormat)
	if !decoded.IsValid && declaredFormat != "" && !v.validateFileSignature(raw, declaredFormat) {
		v.logger.WarnTag("图片", "文件头与声明格式不符: declared_format=%s actual_header=%x", declaredFormat, raw[:min(len(raw), 16)])
	}
	return decoded
}

func (v *SecurityValidator) minSize() int64 {
	if v.config.MinFileSize > 0 {
		return v.config.MinFileSize
	}
	return 1
}

func (v *SecurityValidator) isFormatAllowed(format string) bool {
	if len(v.config.AllowedFormats) == 0 {
		return true
	}
	for _, allowed := range v.config.AllowedFormats {
		if FormatFromContentType(allowed) == format {
			return true
		}
	}
	return false
}

func (v *SecurityValidator) validateFileSignature(raw []byte, format string) bool {
	signature, ok := imageSignatures[format]
	if !ok {
		return true
	}
	return bytes.HasPrefix(raw, signature)
}

func (v *SecurityValidator) scanForMaliciousContent(raw []byte) bool {
	suspiciousSignatures := [][]byte{
		{0x4D, 0x5A},
		{0x25, 0x50, 0x44, 0x46},
		{0x50, 0x4B, 0x03, 0x04},
		{0x1F, 0x8B, 0x08},
	}
	for _, signature := range suspiciousSignatures {
		if bytes.HasPrefix(raw, signature) {
			v.logger.WarnTag("图片", "检测到可疑文件头: signature_hex=%x", signature)
			return true
		}
	}

	lower := strings.ToLower(string(raw))
	if !strings.Contains(lower, "<svg") {
		return false
	}
	for _, token := range []string{"<script", "javascript:", "onload=", "onerror=", "<iframe"} {
		if strings.Contains(lower, token) {
			v.logger.WarnTag("图片", "检测到可疑 SVG 内容: token=%s", token)
			return true
		}
	}
	return false
}

func (v *SecurityValidator) validateImageDecoding(raw []byte, format string) ValidationResult {
	result := ValidationResult{Format: format, FileSize: int64(len(raw))}

	if v.config.EnableDeepScan && v.scanForMaliciousContent(raw) {
		result.Error = fmt.Errorf("potential malicious content detected")
		result.SecurityRisk = "suspicious content"
		return result
	}

	cfg, actualFormat, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		result.Error = fmt.Errorf("%w: decode image config: %v", ErrUnsupported, err)
		result.SecurityRisk = "corrupted image data"
		return result
	}
	if actualFormat != "" {
		result.Format = actualFormat
	}
	if !v.isFormatAllowed(result.Format) {
		result.Error = fmt.Errorf("%w: %s", ErrUnsupported, result.Format)
		result.SecurityRisk = "unapproved format"
		return result
	}

	if (v.config.MaxWidth > 0 && cfg.Width > v.config.MaxWidth) || (v.config.MaxHeight > 0 && cfg.Height > v.config.MaxHeight) {
		result.Error = fmt.Errorf("dimensions exceed limit: %dx%d (max %dx%d)",
			cfg.Width, cfg.Height, v.config.MaxWidth, v.config.MaxHeight)
		result.SecurityRisk = "dimensions too large"
		return result
	}
	if totalPixels := int64(cfg.Width) * int64(cfg.Height); v.config.MaxPixels > 0 && totalPixels > v.config.MaxPixels {
		result.Error = fmt.Errorf("pixel count exceeds limit: %d (max %d)", totalPixels, v.config.MaxPixels)
		result.SecurityRisk = "pixel count too high"
		return result
	}

	result.IsValid = true
	result.Width = cfg.Width
	result.Height = cfg.Height
	v.logger.DebugTag("图片", "校验通过: format=%s width=%d height=%d size=%d", result.Format, result.Width, result.Height, result.FileSize)
	return result
}
