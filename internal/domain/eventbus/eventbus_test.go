package eventbus

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accessworld-server-go/internal/utils"
)

func TestAsyncEventBusDeliversEvents(t *testing.T) {
	bus := NewAsyncEventBus(2)
	bus.Start()
	defer bus.Stop()

	var (
		mu       sync.Mutex
		received []string
	)
	require.NoError(t, bus.Subscribe(EventProviderDegraded, func(args ...interface{}) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, args[0].(ProviderEventData).Provider)
	}))

	bus.PublishAsync(EventProviderDegraded, ProviderEventData{Provider: "depth"})
	bus.PublishAsync(EventProviderDegraded, ProviderEventData{Provider: "caption"})
	bus.WaitAsync()

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"depth", "caption"}, received)
}

func TestAsyncEventBusSurvivesPanickingSubscriber(t *testing.T) {
	bus := NewAsyncEventBus(1)
	bus.Start()
	defer bus.Stop()

	calls := 0
	require.NoError(t, bus.Subscribe(EventSystemError, func(args ...interface{}) {
		calls++
		panic("subscriber failure")
	}))

	bus.PublishAsync(EventSystemError, SystemEventData{Level: "error"})
	bus.PublishAsync(EventSystemError, SystemEventData{Level: "error"})
	bus.WaitAsync()

	assert.Equal(t, 2, calls)
}

func TestAsyncEventBusDropsAfterStop(t *testing.T) {
	bus := NewAsyncEventBus(1)
	bus.Start()
	bus.Stop()
	bus.Stop()

	bus.PublishAsync(EventSystemInfo, SystemEventData{})
	assert.Equal(t, int64(1), bus.Dropped())
}

func TestLoggingEventHandlerWritesTaggedLines(t *testing.T) {
	dir := t.TempDir()
	logger, err := utils.NewLogger(&utils.LogCfg{LogLevel: "debug", LogDir: dir, LogFile: "events.log"})
	require.NoError(t, err)
	defer logger.Close()

	bus := NewAsyncEventBus(1)
	bus.Start()
	defer bus.Stop()
	require.NoError(t, SetupEventHandlers(bus, NewLoggingEventHandler(logger)))
	assert.True(t, bus.HasCallback(EventPipelineCompleted))

	bus.PublishAsync(EventPipelineCompleted, PipelineEventData{
		RequestID:  "req-1",
		Intent:     "full",
		Language:   "de",
		SafeToWalk: false,
		Hazards:    []string{"car"},
		Duration:   120 * time.Millisecond,
	})
	bus.PublishAsync(EventTranslateModelLoaded, TranslateEventData{Language: "de", Model: "Helsinki-NLP/opus-mt-en-de"})
	bus.WaitAsync()

	content, err := os.ReadFile(filepath.Join(dir, "events.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "[事件] 管线完成 request=req-1 intent=full lang=de safe=false hazards=[car]")
	assert.Contains(t, string(content), "model=Helsinki-NLP/opus-mt-en-de")
}
