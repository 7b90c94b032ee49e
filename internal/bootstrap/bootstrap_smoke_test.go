package bootstrap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformerrors "accessworld-server-go/internal/platform/errors"
	"accessworld-server-go/internal/utils"
)

func writeConfig(t *testing.T, extra string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	logDir := filepath.Join(dir, "logs")
	content := "log:\n  log_level: INFO\n  log_dir: " + logDir + "\n  log_file: server.log\n" +
		"web:\n  enabled: false\n" +
		"cache:\n  driver: memory\n" + extra
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path, logDir
}

func newState(path string) *appState {
	return &appState{options: Options{ConfigPath: path, DisableDotEnv: true}}
}

func TestInitGraphOrder(t *testing.T) {
	steps := InitGraph()
	want := []string{
		"config:load",
		"logging:init-provider",
		"observability:setup-hooks",
		"eventbus:init",
		"cache:init-speech",
		"providers:init-manager",
		"pipeline:init-orchestrator",
		"auth:init-token",
	}
	require.Len(t, steps, len(want))
	for i, step := range steps {
		assert.Equal(t, want[i], step.ID, "step %d", i)
		assert.NotNil(t, step.Execute, step.ID)
	}
}

func TestExecuteInitGraph(t *testing.T) {
	path, _ := writeConfig(t, "")
	state := newState(path)
	t.Cleanup(func() { state.release(context.Background()) })

	require.NoError(t, executeInitSteps(context.Background(), InitGraph(), state))

	assert.Equal(t, path, state.configPath)
	assert.NotNil(t, state.config)
	assert.NotNil(t, state.logger)
	assert.NotNil(t, state.observabilityShutdown)
	assert.NotNil(t, state.bus)
	assert.NotNil(t, state.providers)
	require.NotNil(t, state.orchestrator)
	assert.Contains(t, state.orchestrator.SupportedLanguages(), "en")
	assert.Nil(t, state.authToken)
}

func TestExecuteInitGraph_AuthEnabled(t *testing.T) {
	path, _ := writeConfig(t, "auth:\n  enabled: true\n  secret: test-secret\n  token_ttl: 1h\n")
	state := newState(path)
	t.Cleanup(func() { state.release(context.Background()) })

	require.NoError(t, executeInitSteps(context.Background(), InitGraph(), state))
	require.NotNil(t, state.authToken)

	token, err := state.authToken.GenerateToken("camera-1")
	require.NoError(t, err)
	claims, err := state.authToken.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "camera-1", claims.ClientID)
}

func TestExecuteInitGraph_InvalidConfigFailsAsConfigError(t *testing.T) {
	path, _ := writeConfig(t, "server:\n  port: 0\n")
	state := newState(path)
	t.Cleanup(func() { state.release(context.Background()) })

	err := executeInitSteps(context.Background(), InitGraph(), state)
	require.Error(t, err)
	assert.True(t, platformerrors.IsKind(err, platformerrors.KindConfig))
	assert.Nil(t, state.logger)
}

func TestExecuteInitGraph_UnknownProviderFailsFast(t *testing.T) {
	path, _ := writeConfig(t, "providers:\n  detect:\n    type: magic\n")
	state := newState(path)
	t.Cleanup(func() { state.release(context.Background()) })

	err := executeInitSteps(context.Background(), InitGraph(), state)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider type")
	assert.Nil(t, state.orchestrator)
}

func TestExecuteInitSteps_MissingDependency(t *testing.T) {
	steps := []initStep{{
		ID:        "b",
		DependsOn: []string{"a"},
		Execute:   func(context.Context, *appState) error { return nil },
	}}

	err := executeInitSteps(context.Background(), steps, &appState{})
	require.Error(t, err)
	assert.True(t, platformerrors.IsKind(err, platformerrors.KindBootstrap))
	assert.Contains(t, err.Error(), "dependency a not satisfied")
}

func TestExecuteInitSteps_WrapsWithStepKind(t *testing.T) {
	steps := []initStep{{
		ID:      "cache:broken",
		Kind:    platformerrors.KindStorage,
		Execute: func(context.Context, *appState) error { return errors.New("boom") },
	}}

	err := executeInitSteps(context.Background(), steps, &appState{})
	require.Error(t, err)
	assert.Equal(t, platformerrors.KindStorage, platformerrors.KindOf(err))

	assert.Error(t, executeInitSteps(context.Background(), nil, nil))
}

func TestLogBootstrapGraphOutput(t *testing.T) {
	dir := t.TempDir()
	logger, err := utils.NewLogger(&utils.LogCfg{LogLevel: "info", LogDir: dir, LogFile: "graph.log"})
	require.NoError(t, err)

	logBootstrapGraph(InitGraph(), logger)
	require.NoError(t, logger.Close())

	content, err := os.ReadFile(filepath.Join(dir, "graph.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "[引导] 加载配置")
	assert.Contains(t, string(content), "初始化感知管线 <- providers:init-manager")
	assert.Contains(t, string(content), "[引导] 启动服务")

	assert.NotPanics(t, func() { logBootstrapGraph(InitGraph(), nil) })
}
