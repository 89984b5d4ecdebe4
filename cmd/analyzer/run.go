package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mindfuljournal/analyzer/config"
	"github.com/mindfuljournal/analyzer/pkg/analyzers"
	"github.com/mindfuljournal/analyzer/pkg/models"
	"github.com/mindfuljournal/analyzer/pkg/observability"
	"github.com/mindfuljournal/analyzer/pkg/server"
)

const shutdownTimeout = 10 * time.Second

// run is the entrypoint for the analyzer server
func run() {
	cfg := loadConfig()

	log.Infof("Starting analyzer server version %s", config.VersionString)

	ctx := context.Background()
	shutdownTracing, err := observability.SetupTracing(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to set up tracing: %v", err)
	}

	appState, err := NewAppState(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}

	srv := server.Create(appState)
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		log.Fatal(err)
	}

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	log.Infof("Listening on: %s", ln.Addr())
	if err := serve(srv, ln, shutdownTracing, signalCh); err != nil {
		log.Fatal(err)
	}
	log.Info("Server stopped")
}

// NewAppState creates an AppState from the config file / ENV and builds every enabled
// analyzer. It fails if any of them cannot be built, so the server never starts half loaded.
func NewAppState(ctx context.Context, cfg *config.Config) (*models.AppState, error) {
	appState := &models.AppState{
		Config: cfg,
	}

	if err := analyzers.Initialize(ctx, appState); err != nil {
		return nil, fmt.Errorf("failed to initialize analyzers: %w", err)
	}

	return appState, nil
}

// handleCLIOptions handles CLI options that don't require the server to run
func handleCLIOptions(cfg *config.Config) {
	if showVersion {
		fmt.Println(config.VersionString)
		os.Exit(0)
	}
	if dumpConfig {
		b, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			log.Fatalf("Failed to dump config: %v", err)
		}
		fmt.Println(string(b))
		os.Exit(0)
	}
}

// serve runs srv on ln until stop fires. It returns only after in-flight requests have
// drained and traces have been flushed.
func serve(
	srv *http.Server,
	ln net.Listener,
	shutdownTracing observability.ShutdownFunc,
	stop <-chan os.Signal,
) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-stop
		log.Info("Shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Errorf("Error shutting down server: %v", err)
		}
		if err := shutdownTracing(ctx); err != nil {
			log.Errorf("Error flushing traces: %v", err)
		}
	}()

	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done

	return nil
}
