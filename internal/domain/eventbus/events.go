package eventbus

import "time"

// 事件类型定义
const (
	// 管线事件
	EventPipelineCompleted = "pipeline:completed"
	EventProviderDegraded  = "provider:degraded"

	// 翻译模型加载
	EventTranslateModelLoaded = "translate:model-loaded"

	// 语音缓存
	EventSpeechCacheHit = "tts:cache-hit"

	// 系统事件
	EventSystemError = "system:error"
	EventSystemInfo  = "system:info"
)

// 事件数据结构
type PipelineEventData struct {
	RequestID  string        `json:"request_id"`
	Intent     string        `json:"intent"`
	Language   string        `json:"language"`
	SafeToWalk bool          `json:"safe_to_walk"`
	Hazards    []string      `json:"hazards,omitempty"`
	Degraded   []string      `json:"degraded,omitempty"`
	Duration   time.Duration `json:"duration"`
}

type ProviderEventData struct {
	RequestID string `json:"request_id"`
	Provider  string `json:"provider"`
	Error     string `json:"error"`
}

type TranslateEventData struct {
	Language string        `json:"language"`
	Model    string        `json:"model"`
	Duration time.Duration `json:"duration"`
}

type SpeechCacheEventData struct {
	Key    string `json:"key"`
	Driver string `json:"driver"`
}

type SystemEventData struct {
	Level   string      `json:"level"` // error, warn, info
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
