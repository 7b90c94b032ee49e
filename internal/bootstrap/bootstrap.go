package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	domainauth "accessworld-server-go/internal/domain/auth"
	"accessworld-server-go/internal/domain/eventbus"
	domainimage "accessworld-server-go/internal/domain/image"
	"accessworld-server-go/internal/domain/pipeline"
	"accessworld-server-go/internal/domain/providers"
	"accessworld-server-go/internal/domain/tts"
	platformconfig "accessworld-server-go/internal/platform/config"
	platformerrors "accessworld-server-go/internal/platform/errors"
	platformlogging "accessworld-server-go/internal/platform/logging"
	platformobservability "accessworld-server-go/internal/platform/observability"
	httptransport "accessworld-server-go/internal/transport/http"
	httpvision "accessworld-server-go/internal/transport/http/vision"
	httpwebapi "accessworld-server-go/internal/transport/http/webapi"
	"accessworld-server-go/internal/transport/ws"
	"accessworld-server-go/internal/utils"
)

const (
	observabilityShutdownTimeout = 5 * time.Second
	groupShutdownTimeout         = 15 * time.Second
	eventBusWorkers              = 4
	// base64 帧比原图大 4/3，另留 JSON 字段余量
	frameSlackBytes = 64 * 1024
)

// Options 启动参数
type Options struct {
	// ConfigPath 为空时使用 config.yaml 或 ACCESSWORLD_CONFIG
	ConfigPath string
	// DisableDotEnv 跳过 .env 加载，测试使用
	DisableDotEnv bool
}

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID        string
	Title     string
	DependsOn []string
	Kind      platformerrors.Kind
	Execute   stepFn
}

type appState struct {
	options               Options
	config                *platformconfig.Config
	configPath            string
	logProvider           *platformlogging.Logger
	logger                *utils.Logger
	slogger               *slog.Logger
	observabilityShutdown platformobservability.ShutdownFunc
	bus                   *eventbus.AsyncEventBus
	speechCache           tts.Cache
	providers             *providers.Manager
	orchestrator          *pipeline.Orchestrator
	authToken             *domainauth.AuthToken
}

// Run 按依赖顺序完成初始化，启动 HTTP/WebSocket 服务并阻塞到收到退出信号
func Run(ctx context.Context, opts Options) error {
	state := &appState{options: opts}

	steps := InitGraph()
	if err := executeInitSteps(ctx, steps, state); err != nil {
		state.release(ctx)
		return err
	}

	config := state.config
	logger := state.logger
	if config == nil || logger == nil || state.orchestrator == nil {
		state.release(ctx)
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"bootstrap state validation",
			"config/logger/pipeline not initialised",
		)
	}
	defer state.release(ctx)

	logBootstrapGraph(steps, logger)

	rootCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalCtx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(rootCtx)

	if _, err := startHTTPServer(state, group, groupCtx); err != nil {
		cancel()
		return err
	}

	return waitForShutdown(signalCtx, cancel, logger, group)
}

// release 逆序关闭已初始化的资源，可重复调用
func (s *appState) release(ctx context.Context) {
	if s.providers != nil {
		if err := s.providers.Close(); err != nil {
			s.logger.WarnTag("引导", "提供者资源未正常释放: %v", err)
		}
		s.providers = nil
		s.speechCache = nil
	}
	if s.speechCache != nil {
		_ = s.speechCache.Close()
		s.speechCache = nil
	}
	if s.bus != nil {
		s.bus.Stop()
		s.bus = nil
	}
	if shutdown := s.observabilityShutdown; shutdown != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), observabilityShutdownTimeout)
		if err := shutdown(shutdownCtx); err != nil {
			s.logger.WarnTag("引导", "可观测性未正常关闭: %v", err)
		}
		cancel()
		s.observabilityShutdown = nil
	}
	if s.logProvider != nil {
		_ = s.logProvider.Close()
		s.logProvider = nil
	}
}

var stepNames = map[string]string{
	"config:load":                "加载配置",
	"logging:init-provider":      "初始化日志提供者",
	"observability:setup-hooks":  "设置可观测性钩子",
	"eventbus:init":              "初始化事件总线",
	"cache:init-speech":          "初始化语音缓存",
	"providers:init-manager":     "初始化模型提供者",
	"pipeline:init-orchestrator": "初始化感知管线",
	"auth:init-token":            "初始化访问令牌",
}

func logBootstrapGraph(steps []initStep, logger *utils.Logger) {
	if logger == nil {
		return
	}
	logger.InfoTag("引导", "初始化依赖关系概览")
	for _, step := range steps {
		name, ok := stepNames[step.ID]
		if !ok {
			name = step.Title
		}
		if len(step.DependsOn) == 0 {
			logger.InfoTag("引导", "%s", name)
			continue
		}
		logger.InfoTag("引导", "%s <- %s", name, strings.Join(step.DependsOn, ", "))
	}
	logger.InfoTag("引导", "启动服务")
}

func executeInitSteps(ctx context.Context, steps []initStep, state *appState) error {
	if state == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"execute init steps",
			"nil bootstrap state",
		)
	}

	completed := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if _, ok := completed[dep]; !ok {
				return platformerrors.New(
					platformerrors.KindBootstrap,
					step.ID,
					fmt.Sprintf("dependency %s not satisfied", dep),
				)
			}
		}
		if step.Execute == nil {
			return platformerrors.New(
				platformerrors.KindBootstrap,
				step.ID,
				"missing execute function",
			)
		}
		if err := step.Execute(ctx, state); err != nil {
			var typed *platformerrors.Error
			if errors.As(err, &typed) {
				return err
			}

			kind := step.Kind
			if kind == "" {
				kind = platformerrors.KindBootstrap
			}
			return platformerrors.Wrap(kind, step.ID, "bootstrap step failed", err)
		}
		completed[step.ID] = struct{}{}
	}
	return nil
}

func InitGraph() []initStep {
	return []initStep{
		{
			ID:      "config:load",
			Title:   "Load configuration",
			Kind:    platformerrors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:        "logging:init-provider",
			Title:     "Initialise logging provider",
			DependsOn: []string{"config:load"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initLoggingStep,
		},
		{
			ID:        "observability:setup-hooks",
			Title:     "Setup observability hooks",
			DependsOn: []string{"logging:init-provider"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   setupObservabilityStep,
		},
		{
			ID:        "eventbus:init",
			Title:     "Initialise event bus",
			DependsOn: []string{"logging:init-provider"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initEventBusStep,
		},
		{
			ID:        "cache:init-speech",
			Title:     "Initialise speech cache",
			DependsOn: []string{"config:load"},
			Kind:      platformerrors.KindStorage,
			Execute:   initSpeechCacheStep,
		},
		{
			ID:        "providers:init-manager",
			Title:     "Initialise model providers",
			DependsOn: []string{"logging:init-provider", "eventbus:init", "cache:init-speech"},
			Kind:      platformerrors.KindProvider,
			Execute:   initProvidersStep,
		},
		{
			ID:        "pipeline:init-orchestrator",
			Title:     "Initialise perception pipeline",
			DependsOn: []string{"providers:init-manager", "observability:setup-hooks"},
			Kind:      platformerrors.KindPipeline,
			Execute:   initOrchestratorStep,
		},
		{
			ID:        "auth:init-token",
			Title:     "Initialise access tokens",
			DependsOn: []string{"config:load"},
			Kind:      platformerrors.KindConfig,
			Execute:   initAuthStep,
		},
	}
}

func loadConfigStep(_ context.Context, state *appState) error {
	loader := platformconfig.NewLoader().WithDotEnv(!state.options.DisableDotEnv)
	if state.options.ConfigPath != "" {
		loader = loader.WithPath(state.options.ConfigPath)
	}
	result, err := loader.Load()
	if err != nil {
		return err
	}
	state.config = result.Config
	state.configPath = result.Path
	return nil
}

func initLoggingStep(_ context.Context, state *appState) error {
	if state.config == nil {
		return errors.New("config not loaded")
	}
	provider, err := platformlogging.New(platformlogging.Config{
		Level:    state.config.Log.Level,
		Dir:      state.config.Log.Dir,
		Filename: state.config.Log.File,
	})
	if err != nil {
		return err
	}
	state.logProvider = provider
	state.logger = provider.Legacy()
	state.slogger = provider.Slog()

	if state.configPath == "" {
		state.logger.WarnTag("引导", "未找到配置文件，使用默认配置")
	} else {
		state.logger.InfoTag("引导", "配置已加载: %s", state.configPath)
	}
	return nil
}

func setupObservabilityStep(ctx context.Context, state *appState) error {
	shutdown, err := platformobservability.Setup(ctx, platformobservability.Config{
		Enabled: strings.EqualFold(state.config.Log.Level, "debug"),
	}, state.slogger)
	if err != nil {
		return err
	}
	state.observabilityShutdown = shutdown
	return nil
}

func initEventBusStep(_ context.Context, state *appState) error {
	bus := eventbus.NewAsyncEventBus(eventBusWorkers)
	bus.Start()
	if err := eventbus.SetupEventHandlers(bus, eventbus.NewLoggingEventHandler(state.logger)); err != nil {
		bus.Stop()
		return err
	}
	state.bus = bus
	return nil
}

func initSpeechCacheStep(ctx context.Context, state *appState) error {
	cc := state.config.Cache
	cache, err := tts.NewCache(ctx, tts.CacheConfig{
		Driver:     cc.Driver,
		TTL:        cc.TTL,
		MaxEntries: cc.MaxEntries,
		Redis: tts.RedisConfig{
			Addr:     cc.Redis.Addr,
			Username: cc.Redis.Username,
			Password: cc.Redis.Password,
			DB:       cc.Redis.DB,
			Prefix:   cc.Redis.Prefix,
		},
	})
	if err != nil {
		return err
	}
	state.speechCache = cache
	return nil
}

func initProvidersStep(_ context.Context, state *appState) error {
	manager, err := providers.NewManager(state.config, providers.Dependencies{
		Logger:      state.logger,
		Publisher:   state.bus,
		SpeechCache: state.speechCache,
	})
	if err != nil {
		return err
	}
	state.providers = manager
	return nil
}

func initOrchestratorStep(_ context.Context, state *appState) error {
	if state.providers == nil {
		return errors.New("providers not initialised")
	}
	orchestrator, err := pipeline.New(state.providers.Providers(), pipeline.Options{
		ProviderTimeout: state.config.Pipeline.ProviderTimeout,
		DefaultLanguage: state.config.Pipeline.DefaultLanguage,
		Publisher:       state.bus,
		Logger:          state.logger,
	})
	if err != nil {
		return err
	}
	state.orchestrator = orchestrator
	state.logger.InfoTag("管线", "支持语言: %s", strings.Join(orchestrator.SupportedLanguages(), ", "))
	return nil
}

func initAuthStep(_ context.Context, state *appState) error {
	if !state.config.Auth.Enabled {
		return nil
	}
	token, err := NewAuthToken(state.config)
	if err != nil {
		return err
	}
	state.authToken = token
	return nil
}

// NewAuthToken 按配置创建令牌签发器，命令行签发令牌时复用
func NewAuthToken(cfg *platformconfig.Config) (*domainauth.AuthToken, error) {
	token, err := domainauth.NewAuthToken(cfg.Auth.Secret)
	if err != nil {
		return nil, err
	}
	return token.WithTTL(cfg.Auth.TokenTTL), nil
}

func startHTTPServer(
	state *appState,
	g *errgroup.Group,
	groupCtx context.Context,
) (*http.Server, error) {
	config := state.config
	logger := state.logger
	bus := state.bus

	var authMiddleware gin.HandlerFunc
	if state.authToken != nil {
		authMiddleware = httptransport.AuthMiddleware(state.authToken, logger)
	}

	httpRouter, err := httptransport.Build(httptransport.Options{
		Config:         config,
		Logger:         logger,
		AuthMiddleware: authMiddleware,
	})
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "http:build-router", "failed to build router", err)
	}
	router := httpRouter.Engine

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") || !config.Web.Enabled {
			httptransport.RespondError(c, http.StatusNotFound, "api Not found", gin.H{})
			return
		}
		c.File(filepath.Join(config.Web.StaticDir, "index.html"))
	})

	imagePipeline, err := domainimage.NewPipeline(domainimage.Options{
		Security: &config.Image,
		Logger:   logger,
	})
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindBootstrap, "http:init-image-pipeline", "failed to create image pipeline", err)
	}

	visionService, err := httpvision.NewService(config, logger, state.orchestrator, imagePipeline)
	if err != nil {
		logger.ErrorTag("视觉", "Vision 服务初始化失败: %v", err)
		return nil, platformerrors.Wrap(platformerrors.KindVision, "vision:new-service", "failed to create vision service", err)
	}

	webapiService, err := httpwebapi.NewService(logger, state.providers, state.orchestrator, imagePipeline)
	if err != nil {
		logger.ErrorTag("WebAPI", "WebAPI 服务初始化失败: %v", err)
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "webapi:new-service", "failed to create webapi service", err)
	}

	if err := visionService.Register(groupCtx, httpRouter.Secured); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "vision:register", "failed to register vision routes", err)
	}
	if err := webapiService.Register(groupCtx, httpRouter.API, httpRouter.Secured); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindTransport, "webapi:register", "failed to register webapi routes", err)
	}

	wsServer := ws.NewServer(ws.ServerConfig{
		Path:             config.Web.WebSocketPath,
		HandshakeTimeout: config.Server.ReadTimeout,
	}, logger)
	wsServer.SetHandlerBuilder(ws.NewAnalyzeBuilder(ws.AnalyzeHandlerOptions{
		Analyzer:      state.orchestrator,
		Images:        imagePipeline,
		Logger:        logger,
		MaxFrameBytes: config.Image.MaxFileSize*4/3 + frameSlackBytes,
	}))
	if authMiddleware != nil {
		wsServer.Mount(router, authMiddleware)
	} else {
		wsServer.Mount(router)
	}

	addr := net.JoinHostPort(config.Server.IP, strconv.Itoa(config.Server.Port))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: config.Server.ReadTimeout,
		ReadTimeout:       config.Server.ReadTimeout,
		WriteTimeout:      config.Server.WriteTimeout,
	}

	g.Go(func() error {
		logger.InfoTag("HTTP", "Gin 服务已启动，访问地址 http://%s", addr)
		logger.InfoTag("HTTP", "WebSocket 入口: ws://%s%s", addr, config.Web.WebSocketPath)
		if state.authToken != nil {
			logger.InfoTag("HTTP", "已启用 Bearer token 校验")
		}
		bus.PublishAsync(eventbus.EventSystemInfo, eventbus.SystemEventData{
			Level:   "info",
			Message: "server listening on " + addr,
		})

		go func() {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Server.ShutdownTimeout)
			defer cancel()

			if err := wsServer.Shutdown(shutdownCtx); err != nil {
				logger.WarnTag("WebSocket", "WebSocket 连接未全部关闭: %v", err)
			}
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.ErrorTag("HTTP", "HTTP 服务关闭失败: %v", err)
			} else {
				logger.InfoTag("HTTP", "HTTP 服务已优雅关闭")
			}
		}()

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorTag("HTTP", "HTTP 服务启动失败: %v", err)
			bus.PublishAsync(eventbus.EventSystemError, eventbus.SystemEventData{
				Level:   "error",
				Message: "http server failed",
				Data:    err.Error(),
			})
			return platformerrors.Wrap(platformerrors.KindTransport, "http:listen", "http server failed", err)
		}
		return nil
	})

	return httpServer, nil
}

func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	logger *utils.Logger,
	g *errgroup.Group,
) error {
	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		// 服务自行退出（通常是端口占用）
		cancel()
		if err != nil {
			logger.ErrorTag("引导", "服务异常退出: %v", err)
		}
		return err
	case <-ctx.Done():
	}

	logger.InfoTag("引导", "收到系统信号 %v，正在进行资源清理", context.Cause(ctx))
	cancel()

	select {
	case err := <-done:
		if err != nil {
			logger.ErrorTag("引导", "服务关闭过程中出现错误: %v", err)
			return err
		}
		logger.InfoTag("引导", "所有服务已成功关闭")
	case <-time.After(groupShutdownTimeout):
		logger.ErrorTag("引导", "服务关闭超时，已强制退出")
		return errors.New("服务关闭超时")
	}
	return nil
}
