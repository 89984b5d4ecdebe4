package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindfuljournal/analyzer/config"
	"github.com/mindfuljournal/analyzer/pkg/models"
)

const allowedOrigin = "http://localhost:5173"

type stubAnalyzer struct {
	info    models.AnalyzerInfo
	resp    *models.AnalyzeResponse
	err     error
	block   bool
	gotText string
}

func (s *stubAnalyzer) Info() models.AnalyzerInfo { return s.info }

func (s *stubAnalyzer) Analyze(ctx context.Context, text string) (*models.AnalyzeResponse, error) {
	if s.block {
		<-ctx.Done()
		return nil, models.NewAnalyzerError(s.info.Name, models.CodeOf(ctx.Err()), ctx.Err())
	}
	s.gotText = text
	return s.resp, s.err
}

func summaryStub() *stubAnalyzer {
	summary := "Went for a walk."
	return &stubAnalyzer{
		info: models.AnalyzerInfo{Name: "summarizer", Field: models.FieldSummary, Backend: "test"},
		resp: &models.AnalyzeResponse{Summary: &summary},
	}
}

func alertStub() *stubAnalyzer {
	alert := false
	return &stubAnalyzer{
		info: models.AnalyzerInfo{
			Name:    "risk",
			Field:   models.FieldAlert,
			Backend: "local",
			Details: map[string]any{"artifact_id": "b1946ac9-2e4b-4c45-8a6b-1c3a0a2d4e6f"},
		},
		resp: &models.AnalyzeResponse{Alert: &alert},
	}
}

func emotionFailure(err error) *stubAnalyzer {
	return &stubAnalyzer{
		info: models.AnalyzerInfo{Name: "emotion", Field: models.FieldEmotion, Backend: "test"},
		err:  err,
	}
}

func newTestAppState(analyzers ...models.Analyzer) *models.AppState {
	return &models.AppState{
		Config: &config.Config{
			Server: config.ServerConfig{
				AllowedOrigins: []string{allowedOrigin},
				MaxRequestSize: 1 << 10,
				AnalyzeTimeout: time.Second,
			},
		},
		Analyzers: analyzers,
	}
}

func postAnalyze(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v))
	return v
}

func TestAnalyzeHandler(t *testing.T) {
	summary := summaryStub()
	router := setupRouter(newTestAppState(summary, alertStub()))

	for _, path := range []string{"/analyze", "/api/v1/analyze"} {
		t.Run(path, func(t *testing.T) {
			rr := postAnalyze(t, router, path, `{"text": "I went for a walk today."}`)

			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Equal(t, "I went for a walk today.", summary.gotText)

			var raw map[string]any
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&raw))
			assert.Equal(t, map[string]any{"summary": "Went for a walk.", "alert": false}, raw)
		})
	}
}

func TestAnalyzeHandlerSkipsResponseWhenClientGone(t *testing.T) {
	blocked := summaryStub()
	blocked.block = true
	router := setupRouter(newTestAppState(blocked))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(`{"text": "A long day."}`))
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Zero(t, rr.Body.Len())
	assert.NotEqual(t, http.StatusGatewayTimeout, rr.Code)
}

func TestAnalyzeHandlerRejectsBadRequests(t *testing.T) {
	router := setupRouter(newTestAppState(summaryStub()))

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   models.ErrorCode
	}{
		{"missing text", `{}`, http.StatusBadRequest, models.CodeEmptyInput},
		{"empty text", `{"text": ""}`, http.StatusBadRequest, models.CodeEmptyInput},
		{"whitespace text", `{"text": "   "}`, http.StatusBadRequest, models.CodeEmptyInput},
		{"malformed JSON", `{"text": "unterminated`, http.StatusBadRequest, models.CodeInvalidRequest},
		{
			"too large",
			`{"text": "` + strings.Repeat("long entry ", 200) + `"}`,
			http.StatusRequestEntityTooLarge,
			models.CodeRequestTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postAnalyze(t, router, "/analyze", tt.body)

			assert.Equal(t, tt.wantStatus, rr.Code)
			body := decodeBody[models.ErrorResponse](t, rr)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestAnalyzeHandlerPartialFailure(t *testing.T) {
	router := setupRouter(newTestAppState(
		summaryStub(),
		emotionFailure(models.NewAnalyzerError("emotion", models.CodeModelUnavailable, models.ErrModelUnavailable)),
	))

	rr := postAnalyze(t, router, "/analyze", `{"text": "A long day."}`)

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody[models.AnalyzeResponse](t, rr)
	require.NotNil(t, body.Summary)
	assert.Nil(t, body.Emotion)
	require.Contains(t, body.Errors, models.FieldEmotion)
	assert.Equal(t, models.CodeModelUnavailable, body.Errors[models.FieldEmotion].Code)
}

func TestAnalyzeHandlerAllFailed(t *testing.T) {
	router := setupRouter(newTestAppState(
		emotionFailure(models.NewAnalyzerError("emotion", models.CodeModelUnavailable, models.ErrModelUnavailable)),
	))

	rr := postAnalyze(t, router, "/analyze", `{"text": "A long day."}`)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	body := decodeBody[models.ErrorResponse](t, rr)
	assert.Equal(t, models.CodeModelUnavailable, body.Code)
	assert.Contains(t, body.Errors, models.FieldEmotion)
}

func TestAnalyzeHandlerAllTimedOut(t *testing.T) {
	appState := newTestAppState(&stubAnalyzer{
		info:  models.AnalyzerInfo{Name: "emotion", Field: models.FieldEmotion},
		block: true,
	})
	appState.Config.Server.AnalyzeTimeout = 20 * time.Millisecond
	router := setupRouter(appState)

	rr := postAnalyze(t, router, "/analyze", `{"text": "A long day."}`)

	assert.Equal(t, http.StatusGatewayTimeout, rr.Code)
	body := decodeBody[models.ErrorResponse](t, rr)
	assert.Equal(t, models.CodeTimeout, body.Code)
	assert.Equal(t, models.CodeTimeout, body.Errors[models.FieldEmotion].Code)
}

func TestAnalyzeHandlerInternalError(t *testing.T) {
	router := setupRouter(newTestAppState(summaryStub(), emotionFailure(errors.New("boom"))))

	rr := postAnalyze(t, router, "/analyze", `{"text": "A long day."}`)

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody[models.AnalyzeResponse](t, rr)
	assert.Equal(t, models.CodeInternal, body.Errors[models.FieldEmotion].Code)
}

func TestListAnalyzersHandler(t *testing.T) {
	router := setupRouter(newTestAppState(summaryStub(), alertStub()))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyzers", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody[ListAnalyzersResponse](t, rr)
	require.Len(t, body.Analyzers, 2)
	assert.Equal(t, "summarizer", body.Analyzers[0].Name)
	assert.Equal(t, models.FieldAlert, body.Analyzers[1].Field)
	assert.Equal(t, "b1946ac9-2e4b-4c45-8a6b-1c3a0a2d4e6f", body.Analyzers[1].Details["artifact_id"])
}

func TestHealthz(t *testing.T) {
	router := setupRouter(newTestAppState(summaryStub()))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCORS(t *testing.T) {
	router := setupRouter(newTestAppState(summaryStub()))

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Content-Type")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	t.Run("allowed origin", func(t *testing.T) {
		rr := preflight(allowedOrigin)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, allowedOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	})

	t.Run("unknown origin", func(t *testing.T) {
		rr := preflight("https://evil.example.com")
		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("simple request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`{"text": "hi there"}`))
		req.Header.Set("Origin", allowedOrigin)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, allowedOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestSendVersion(t *testing.T) {
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	handler := SendVersion(nextHandler)

	req, err := http.NewRequest("GET", "/", nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Header().Get(versionHeader) != config.VersionString {
		t.Errorf("handler returned wrong version header: got %v want %v",
			rr.Header().Get(versionHeader), config.VersionString)
	}
}

func TestCreate(t *testing.T) {
	appState := newTestAppState(summaryStub())
	appState.Config.Server.Host = "127.0.0.1"
	appState.Config.Server.Port = 8000

	srv := Create(appState)
	assert.Equal(t, "127.0.0.1:8000", srv.Addr)
	assert.Equal(t, ReadHeaderTimeout, srv.ReadHeaderTimeout)
}
