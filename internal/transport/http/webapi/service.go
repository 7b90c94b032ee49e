package webapi

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"accessworld-server-go/internal/domain/image"
	"accessworld-server-go/internal/domain/perception"
	platformerrors "accessworld-server-go/internal/platform/errors"
	"accessworld-server-go/internal/platform/observability"
	httptransport "accessworld-server-go/internal/transport/http"
	"accessworld-server-go/internal/utils"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

const probeTimeout = 2 * time.Second

// ProviderStatus exposes provider bundle state. *providers.Manager satisfies it.
type ProviderStatus interface {
	Backends() map[string]string
	LoadedLanguages() []string
	Probe(ctx context.Context) map[string]string
}

// LanguageLister lists supported translation targets.
type LanguageLister interface {
	SupportedLanguages() []string
}

// UploadMetrics reports image validation counters.
type UploadMetrics interface {
	Metrics() image.Metrics
}

// HostStats 主机资源占用
type HostStats struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryTotalMB uint64  `json:"memory_total_mb"`
	Goroutines    int     `json:"goroutines"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status             string                 `json:"status"`
	ModelsLoaded       bool                   `json:"models_loaded"`
	Services           map[string]bool        `json:"services"`
	Backends           map[string]string      `json:"backends"`
	Remote             map[string]string      `json:"remote,omitempty"`
	SupportedLanguages []string               `json:"supported_languages"`
	LoadedLanguages    []string               `json:"loaded_languages"`
	Version            string                 `json:"version"`
	Uptime             string                 `json:"uptime"`
	Host               *HostStats             `json:"host,omitempty"`
	Uploads            image.Metrics          `json:"uploads"`
	Observability      observability.Snapshot `json:"observability"`
}

// Service 健康检查与语言列表
type Service struct {
	logger    *utils.Logger
	providers ProviderStatus
	languages LanguageLister
	uploads   UploadMetrics
	started   time.Time
}

// NewService 创建新的WebAPI服务实例
func NewService(logger *utils.Logger, providers ProviderStatus, languages LanguageLister, uploads UploadMetrics) (*Service, error) {
	if providers == nil || languages == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "webapi.new", "providers and languages are required")
	}
	if logger == nil {
		logger = utils.DefaultLogger
	}
	return &Service{
		logger:    logger,
		providers: providers,
		languages: languages,
		uploads:   uploads,
		started:   time.Now(),
	}, nil
}

// Register 注册健康检查路由；health 不需要认证
func (s *Service) Register(_ context.Context, public, secured *gin.RouterGroup) error {
	public.GET("/health", s.handleHealth)
	secured.GET("/languages", s.handleLanguages)

	s.logger.InfoTag("HTTP", "WebAPI服务路由注册完成")
	return nil
}

// handleHealth 服务状态
// @Summary 检查服务状态
// @Description 返回模型加载状态、后端、支持语言与主机资源
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /api/health [get]
func (s *Service) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
	defer cancel()

	backends := s.providers.Backends()
	services := make(map[string]bool, len(backends))
	for name := range backends {
		services[name] = true
	}

	resp := HealthResponse{
		Status:             "ok",
		ModelsLoaded:       len(backends) > 0,
		Services:           services,
		Backends:           backends,
		Remote:             s.providers.Probe(ctx),
		SupportedLanguages: s.languages.SupportedLanguages(),
		LoadedLanguages:    s.providers.LoadedLanguages(),
		Version:            Version,
		Uptime:             time.Since(s.started).Round(time.Second).String(),
		Host:               s.hostStats(ctx),
		Observability:      observability.Collect(),
	}
	if resp.LoadedLanguages == nil {
		resp.LoadedLanguages = []string{}
	}
	if s.uploads != nil {
		resp.Uploads = s.uploads.Metrics()
	}
	for _, status := range resp.Remote {
		if status != "ok" {
			resp.Status = "degraded"
			break
		}
	}
	c.JSON(http.StatusOK, resp)
}

// handleLanguages 支持的语言
// @Summary 支持的翻译语言
// @Produce json
// @Router /api/languages [get]
func (s *Service) handleLanguages(c *gin.Context) {
	httptransport.RespondSuccess(c, http.StatusOK, gin.H{
		"supported_languages": s.languages.SupportedLanguages(),
	}, "")
}

func (s *Service) hostStats(ctx context.Context) *HostStats {
	stats := &HostStats{Goroutines: runtime.NumGoroutine()}
	if percents, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(percents) > 0 {
		stats.CPUPercent = perception.Round(percents[0], 2)
	} else if err != nil {
		s.logger.DebugTag("HTTP", "读取CPU占用失败: %v", err)
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		stats.MemoryPercent = perception.Round(vm.UsedPercent, 2)
		stats.MemoryTotalMB = vm.Total / 1024 / 1024
	} else {
		s.logger.DebugTag("HTTP", "读取内存信息失败: %v", err)
	}
	return stats
}
