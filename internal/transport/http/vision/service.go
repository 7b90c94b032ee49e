package vision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"accessworld-server-go/internal/domain/image"
	"accessworld-server-go/internal/domain/pipeline"
	"accessworld-server-go/internal/platform/config"
	platformerrors "accessworld-server-go/internal/platform/errors"
	httptransport "accessworld-server-go/internal/transport/http"
	"accessworld-server-go/internal/utils"
)

// Service 分析与语音转写接口
type Service struct {
	logger   *utils.Logger
	config   *config.Config
	analyzer Analyzer
	images   ImageProcessor
}

// NewService 创建新的分析服务实例
func NewService(cfg *config.Config, logger *utils.Logger, analyzer Analyzer, images ImageProcessor) (*Service, error) {
	if cfg == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "vision.new", "config is required")
	}
	if analyzer == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "vision.new", "analyzer is required")
	}
	if images == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "vision.new", "image pipeline is required")
	}
	if logger == nil {
		logger = utils.DefaultLogger
	}
	return &Service{
		logger:   logger,
		config:   cfg,
		analyzer: analyzer,
		images:   images,
	}, nil
}

// Register 注册分析相关的HTTP路由
func (s *Service) Register(_ context.Context, router *gin.RouterGroup) error {
	router.POST("/analyze", s.handleAnalyze)
	router.POST("/voice", s.handleVoice)

	s.logger.InfoTag("HTTP", "分析服务路由注册完成")
	return nil
}

// handleAnalyze 处理图片分析
// @Summary 图片场景分析
// @Description 上传图片，返回场景描述、物体、深度分区、安全判断、翻译文本与语音
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "图片文件 (JPEG/PNG/WebP/GIF)"
// @Param language formData string false "目标语言 en|hi|fr|es|de|zh"
// @Param query formData string false "用户问题"
// @Router /api/analyze [post]
func (s *Service) handleAnalyze(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "image field is required", nil)
		return
	}
	defer file.Close()

	contentType := mediaType(header.Header.Get("Content-Type"))
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = image.FormatFromContentType(strings.TrimPrefix(extension(header.Filename), "."))
	}

	output, err := s.images.Process(c.Request.Context(), image.Input{
		Reader:         file,
		DeclaredFormat: contentType,
		Source:         "upload",
	})
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, image.ErrTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		s.logger.WarnTag("HTTP", "图片校验失败: %v", err)
		httptransport.RespondError(c, status, uploadMessage(err, contentType), nil)
		return
	}

	language := strings.ToLower(strings.TrimSpace(c.PostForm("language")))
	query := utils.CleanText(c.PostForm("query"))

	result := s.analyzer.Run(c.Request.Context(), pipeline.Request{
		Image:    output.Bytes,
		Language: language,
		Query:    query,
	})
	c.JSON(http.StatusOK, result)
}

// handleVoice 语音转写
// @Summary 语音问题转写
// @Accept multipart/form-data
// @Produce json
// @Param audio formData file true "录音 (WAV/WebM)"
// @Success 200 {object} VoiceResponse
// @Router /api/voice [post]
func (s *Service) handleVoice(c *gin.Context) {
	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "audio field is required", nil)
		return
	}
	defer file.Close()

	contentType := mediaType(header.Header.Get("Content-Type"))
	if contentType != "" && !allowedAudio[contentType] {
		httptransport.RespondError(c, http.StatusBadRequest, fmt.Sprintf("Unsupported audio type: %s", contentType), nil)
		return
	}

	limit := s.config.Server.MaxUploadBytes
	if limit <= 0 {
		limit = 20 << 20
	}
	audio, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "failed to read audio", nil)
		return
	}
	if int64(len(audio)) > limit {
		httptransport.RespondError(c, http.StatusRequestEntityTooLarge, "Audio file too large.", nil)
		return
	}
	if len(audio) < minAudioBytes {
		httptransport.RespondError(c, http.StatusBadRequest, "Audio file appears empty.", nil)
		return
	}

	out := s.analyzer.Transcribe(c.Request.Context(), audio, header.Filename)
	c.JSON(http.StatusOK, VoiceResponse{
		Transcript:  out.Value,
		LengthChars: utf8.RuneCountInString(out.Value),
	})
}

func uploadMessage(err error, contentType string) string {
	switch {
	case errors.Is(err, image.ErrEmpty):
		return "Image file appears empty."
	case errors.Is(err, image.ErrTooLarge):
		return "Image file too large."
	case errors.Is(err, image.ErrUnsupported):
		if contentType == "" {
			contentType = "unknown"
		}
		return fmt.Sprintf("Unsupported image type: %s", contentType)
	}
	return err.Error()
}

func mediaType(header string) string {
	if header == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(header))
	}
	return mt
}

func extension(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return ""
	}
	ext := strings.ToLower(filename[i:])
	if slices.Contains([]string{".jpg", ".jpeg", ".png", ".webp", ".gif"}, ext) {
		return ext
	}
	return ""
}
