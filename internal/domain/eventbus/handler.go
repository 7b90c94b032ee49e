package eventbus

import (
	"strings"

	"accessworld-server-go/internal/utils"
)

// EventHandler 事件处理器接口
type EventHandler interface {
	Handle(eventType string, data interface{})
}

// LoggingEventHandler 把管线事件写入日志
type LoggingEventHandler struct {
	logger *utils.Logger
}

// NewLoggingEventHandler 创建日志事件处理器
func NewLoggingEventHandler(logger *utils.Logger) *LoggingEventHandler {
	return &LoggingEventHandler{logger: logger}
}

// Handle 处理事件
func (h *LoggingEventHandler) Handle(eventType string, data interface{}) {
	switch d := data.(type) {
	case PipelineEventData:
		h.logger.InfoTag("事件", "管线完成 request=%s intent=%s lang=%s safe=%v hazards=[%s] degraded=[%s] 耗时=%s",
			d.RequestID, d.Intent, d.Language, d.SafeToWalk,
			strings.Join(d.Hazards, ","), strings.Join(d.Degraded, ","), d.Duration)
	case ProviderEventData:
		h.logger.WarnTag("事件", "提供者降级 request=%s provider=%s error=%s", d.RequestID, d.Provider, d.Error)
	case TranslateEventData:
		h.logger.InfoTag("事件", "翻译模型已加载 lang=%s model=%s 耗时=%s", d.Language, d.Model, d.Duration)
	case SpeechCacheEventData:
		h.logger.DebugTag("事件", "语音缓存命中 driver=%s key=%s", d.Driver, d.Key)
	case SystemEventData:
		if d.Level == "error" {
			h.logger.ErrorTag("事件", "系统错误: %s", d.Message)
		} else {
			h.logger.InfoTag("事件", "系统消息: %s", d.Message)
		}
	default:
		h.logger.DebugTag("事件", "未处理的事件类型: %s", eventType)
	}
}

// SetupEventHandlers 在总线上为所有已知事件注册处理器
func SetupEventHandlers(bus *AsyncEventBus, handler EventHandler) error {
	topics := []string{
		EventPipelineCompleted,
		EventProviderDegraded,
		EventTranslateModelLoaded,
		EventSpeechCacheHit,
		EventSystemError,
		EventSystemInfo,
	}
	for _, topic := range topics {
		topic := topic
		err := bus.Subscribe(topic, func(args ...interface{}) {
			if len(args) > 0 {
				handler.Handle(topic, args[0])
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}
