package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/mindfuljournal/analyzer/config"
)

func TestSetupTracingDisabled(t *testing.T) {
	before := otel.GetTracerProvider()

	shutdown, err := SetupTracing(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.Equal(t, before, otel.GetTracerProvider())
}

func TestSetupTracingExportsSpans(t *testing.T) {
	exported := make(chan string, 1)
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case exported <- r.URL.Path:
		default:
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer collector.Close()

	before := otel.GetTracerProvider()
	defer otel.SetTracerProvider(before)

	cfg := &config.Config{Tracing: config.TracingConfig{
		Enabled:  true,
		Endpoint: strings.TrimPrefix(collector.URL, "http://"),
		Insecure: true,
	}}
	shutdown, err := SetupTracing(context.Background(), cfg)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "analyze")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	select {
	case path := <-exported:
		assert.Equal(t, "/v1/traces", path)
	case <-time.After(5 * time.Second):
		t.Fatal("no spans were exported")
	}
}
