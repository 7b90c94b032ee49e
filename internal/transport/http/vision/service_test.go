package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accessworld-server-go/internal/domain/image"
	"accessworld-server-go/internal/domain/perception"
	"accessworld-server-go/internal/domain/pipeline"
	testutil "accessworld-server-go/internal/platform/testing"
	httptransport "accessworld-server-go/internal/transport/http"
)

type fakeAnalyzer struct {
	lastRequest pipeline.Request
	transcript  string
	runs        int
}

func (f *fakeAnalyzer) Run(_ context.Context, req pipeline.Request) pipeline.PipelineResult {
	f.runs++
	f.lastRequest = req
	return pipeline.PipelineResult{
		Query:       req.Query,
		Intent:      pipeline.Classify(req.Query),
		Description: "A street.",
		Objects:     []perception.DetectionResult{},
		Hazards:     []string{},
		Depth:       perception.UnknownDepth(),
		Audio:       []byte("mp3"),
		Language:    req.Language,
	}
}

func (f *fakeAnalyzer) Transcribe(context.Context, []byte, string) perception.Outcome[string] {
	return perception.OK(f.transcript)
}

func (f *fakeAnalyzer) SupportedLanguages() []string { return []string{"en", "fr"} }

type part struct {
	field, filename, contentType string
	data                         []byte
}

func multipartBody(t *testing.T, files []part, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		h.Set("Content-Type", f.contentType)
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(f.data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func newTestServer(t *testing.T) (*httptransport.Router, *fakeAnalyzer) {
	t.Helper()
	cfg := testutil.SetupTestConfig(t)
	logger := testutil.SetupTestLogger(t).Legacy()
	router, err := httptransport.Build(httptransport.Options{Config: cfg, Logger: logger})
	require.NoError(t, err)

	images, err := image.NewPipeline(image.Options{Security: &cfg.Image, Logger: logger})
	require.NoError(t, err)
	analyzer := &fakeAnalyzer{transcript: "what is in front of me"}
	svc, err := NewService(cfg, logger, analyzer, images)
	require.NoError(t, err)
	require.NoError(t, svc.Register(context.Background(), router.Secured))
	return router, analyzer
}

func TestAnalyzeReturnsPipelineResult(t *testing.T) {
	router, analyzer := newTestServer(t)
	png := testutil.PNGFixture(t, 32, 32)
	body, ct := multipartBody(t, []part{{"image", "frame.png", "image/png", png}}, map[string]string{
		"language": "FR",
		"query":    "  is it safe to walk? ",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", ct)
	router.Engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "fr", analyzer.lastRequest.Language)
	assert.Equal(t, "is it safe to walk?", analyzer.lastRequest.Query)
	assert.Equal(t, png, analyzer.lastRequest.Image)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("mp3")), payload["audio_b64"])
	assert.Equal(t, "depth", payload["intent"])
	assert.Contains(t, payload, "safe_to_walk")
	assert.Contains(t, payload, "translated_text")
}

func TestAnalyzeRejectsUnsupportedType(t *testing.T) {
	router, analyzer := newTestServer(t)
	body, ct := multipartBody(t, []part{{"image", "scan.tiff", "image/tiff", bytes.Repeat([]byte{1}, 200)}}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", ct)
	router.Engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Unsupported image type: image/tiff")
	assert.Zero(t, analyzer.runs)
}

func TestAnalyzeRejectsEmptyImage(t *testing.T) {
	router, analyzer := newTestServer(t)
	body, ct := multipartBody(t, []part{{"image", "a.png", "image/png", []byte("tiny")}}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", ct)
	router.Engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Image file appears empty.")
	assert.Zero(t, analyzer.runs)
}

func TestAnalyzeRequiresImage(t *testing.T) {
	router, _ := newTestServer(t)
	body, ct := multipartBody(t, nil, map[string]string{"query": "hello"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", ct)
	router.Engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVoiceTranscribes(t *testing.T) {
	router, _ := newTestServer(t)
	body, ct := multipartBody(t, []part{{"audio", "q.webm", "audio/webm;codecs=opus", bytes.Repeat([]byte{7}, 400)}}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/voice", body)
	req.Header.Set("Content-Type", ct)
	router.Engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp VoiceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "what is in front of me", resp.Transcript)
	assert.Equal(t, 22, resp.LengthChars)
}

func TestVoiceRejectsShortAndWrongType(t *testing.T) {
	router, _ := newTestServer(t)

	body, ct := multipartBody(t, []part{{"audio", "q.wav", "audio/wav", []byte("short")}}, nil)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/voice", body)
	req.Header.Set("Content-Type", ct)
	router.Engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Audio file appears empty.")

	body, ct = multipartBody(t, []part{{"audio", "q.txt", "text/plain", bytes.Repeat([]byte{1}, 300)}}, nil)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/voice", body)
	req.Header.Set("Content-Type", ct)
	router.Engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Unsupported audio type")
}
