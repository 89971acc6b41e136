package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/dgnsrekt/ttserve/internal/config"
	"github.com/dgnsrekt/ttserve/internal/logging"
	"github.com/dgnsrekt/ttserve/internal/speech"
)

// fakeProvider is a canned AudioProvider for handler tests.
type fakeProvider struct {
	audio []byte
	err   error
	calls int
	last  speech.Request
}

func (f *fakeProvider) Acquire(ctx context.Context, req speech.Request) ([]byte, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return f.audio, nil
}

func testConfig() *config.Config {
	return &config.Config{
		HTTPPort:      18790,
		DefaultVoice:  "en-US-AvaNeural",
		Engine:        config.EngineEdge,
		SynthTimeout:  30 * time.Second,
		CacheDir:      "/tmp/ttserve-cache",
		MaxTextLength: 100,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

func testServer(cfg *config.Config, provider AudioProvider) *Server {
	logger := logging.New("error", "text") // quiet logger for tests
	if provider == nil {
		provider = &fakeProvider{audio: []byte("audio")}
	}
	return New(cfg, logger, provider)
}

func TestHealth(t *testing.T) {
	srv := testServer(testConfig(), nil)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	srv.handleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp.Status != "ok" {
		t.Errorf("expected status 'ok', got '%s'", resp.Status)
	}
	if resp.Voice != "en-US-AvaNeural" {
		t.Errorf("expected voice 'en-US-AvaNeural', got '%s'", resp.Voice)
	}
}

func TestSpeechSuccess(t *testing.T) {
	audio := []byte("mp3-audio-bytes")
	provider := &fakeProvider{audio: audio}
	srv := testServer(testConfig(), provider)

	body := `{"input":"hello","voice":"en-US-AvaNeural"}`
	req := httptest.NewRequest("POST", "/v1/audio/speech", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	srv.handleSpeech(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("expected Content-Type audio/mpeg, got %s", ct)
	}
	if cl := w.Header().Get("Content-Length"); cl != strconv.Itoa(len(audio)) {
		t.Errorf("expected Content-Length %d, got %s", len(audio), cl)
	}
	if !bytes.Equal(w.Body.Bytes(), audio) {
		t.Errorf("body mismatch: got %q, want %q", w.Body.Bytes(), audio)
	}

	if provider.last.Text != "hello" || provider.last.Voice != "en-US-AvaNeural" {
		t.Errorf("unexpected request passed to provider: %+v", provider.last)
	}
}

func TestSpeechTextFieldFallback(t *testing.T) {
	provider := &fakeProvider{audio: []byte("audio")}
	srv := testServer(testConfig(), provider)

	body := `{"text":"legacy field"}`
	req := httptest.NewRequest("POST", "/v1/audio/speech", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	srv.handleSpeech(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if provider.last.Text != "legacy field" {
		t.Errorf("expected text 'legacy field', got '%s'", provider.last.Text)
	}
}

func TestSpeechInputWinsOverText(t *testing.T) {
	provider := &fakeProvider{audio: []byte("audio")}
	srv := testServer(testConfig(), provider)

	body := `{"input":"primary","text":"fallback"}`
	req := httptest.NewRequest("POST", "/v1/audio/speech", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	srv.handleSpeech(w, req)

	if provider.last.Text != "primary" {
		t.Errorf("expected 'input' to win, provider got '%s'", provider.last.Text)
	}
}

func TestSpeechDefaultVoice(t *testing.T) {
	provider := &fakeProvider{audio: []byte("audio")}
	srv := testServer(testConfig(), provider)

	body := `{"input":"hello"}`
	req := httptest.NewRequest("POST", "/v1/audio/speech", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	srv.handleSpeech(w, req)

	if provider.last.Voice != "en-US-AvaNeural" {
		t.Errorf("expected default voice, got '%s'", provider.last.Voice)
	}
}

func TestSpeechEmptyBody(t *testing.T) {
	provider := &fakeProvider{}
	srv := testServer(testConfig(), provider)

	body := `{}`
	req := httptest.NewRequest("POST", "/v1/audio/speech", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	srv.handleSpeech(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	if provider.calls != 0 {
		t.Error("provider should not be called for invalid requests")
	}
}

func TestSpeechWhitespaceOnlyText(t *testing.T) {
	provider := &fakeProvider{}
	srv := testServer(testConfig(), provider)

	body := `{"input":"   \t\n  "}`
	req := httptest.NewRequest("POST", "/v1/audio/speech", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	srv.handleSpeech(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestSpeechInvalidJSON(t *testing.T) {
	provider := &fakeProvider{}
	srv := testServer(testConfig(), provider)

	body := `{invalid json}`
	req := httptest.NewRequest("POST", "/v1/audio/speech", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	srv.handleSpeech(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestSpeechTextTooLong(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTextLength = 10
	provider := &fakeProvider{}
	srv := testServer(cfg, provider)

	body := `{"input":"This text is definitely longer than 10 characters"}`
	req := httptest.NewRequest("POST", "/v1/audio/speech", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	srv.handleSpeech(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestSpeechTimeout(t *testing.T) {
	provider := &fakeProvider{err: speech.ErrSynthesisTimeout}
	srv := testServer(testConfig(), provider)

	body := `{"input":"hello"}`
	req := httptest.NewRequest("POST", "/v1/audio/speech", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	srv.handleSpeech(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
	if body := w.Body.String(); body != "TTS timeout\n" {
		t.Errorf("expected timeout message, got %q", body)
	}
}

func TestSpeechEngineFailure(t *testing.T) {
	provider := &fakeProvider{err: errors.New("engine said no")}
	srv := testServer(testConfig(), provider)

	body := `{"input":"hello"}`
	req := httptest.NewRequest("POST", "/v1/audio/speech", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	srv.handleSpeech(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
	if body := w.Body.String(); body != "TTS failed: engine said no\n" {
		t.Errorf("expected failure detail, got %q", body)
	}
}

func TestSpeechWrongMethod(t *testing.T) {
	srv := testServer(testConfig(), nil)

	req := httptest.NewRequest("GET", "/v1/audio/speech", nil)
	w := httptest.NewRecorder()

	srv.handleSpeech(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestHealthWrongMethod(t *testing.T) {
	srv := testServer(testConfig(), nil)

	req := httptest.NewRequest("POST", "/health", nil)
	w := httptest.NewRecorder()

	srv.handleHealth(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestUnknownPathReturns404(t *testing.T) {
	srv := testServer(testConfig(), nil)

	req := httptest.NewRequest("GET", "/v1/unknown", nil)
	w := httptest.NewRecorder()

	srv.server.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}
