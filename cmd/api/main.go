package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/aibekm/tildos/backend/internal/artifact"
	"github.com/aibekm/tildos/backend/internal/config"
	"github.com/aibekm/tildos/backend/internal/handler"
	chathandler "github.com/aibekm/tildos/backend/internal/handler/chat"
	voicehandler "github.com/aibekm/tildos/backend/internal/handler/voice"
	"github.com/aibekm/tildos/backend/internal/service/ai"
	"github.com/aibekm/tildos/backend/internal/service/lipsync"
	"github.com/aibekm/tildos/backend/internal/service/speech"
	turnsvc "github.com/aibekm/tildos/backend/internal/service/turn"
	"github.com/aibekm/tildos/backend/pkg/logger"
	"github.com/aibekm/tildos/backend/pkg/resilience"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		// Logger is not configured yet; this is the one bare exit.
		panic(err)
	}

	if err := logger.Init(cfg.Server.Debug); err != nil {
		panic(err)
	}
	defer logger.Sync()

	store, err := artifact.NewStore(cfg.Pipeline.StagingDir)
	if err != nil {
		logger.Fatal("failed to prepare staging directory", zap.Error(err))
	}

	retry := resilience.DefaultRetryConfig()
	if cfg.Pipeline.RetryAttempts > 0 {
		retry.MaxAttempts = cfg.Pipeline.RetryAttempts
	}

	// Speech upstream: synthesis and recognition. Skipped when credentials
	// are absent; the affected routes answer 400 with a configuration hint.
	var speechSvc *speech.Service
	if cfg.Speech.Enabled() {
		speechSvc = speech.NewService(cfg.Speech, retry)
		logger.Info("speech service initialized")
	} else {
		logger.Warn("speech credentials not configured, skipping speech service")
	}

	// Generation upstream. Skipped when credentials are absent; /chat then
	// serves the fixed fallback pair instead of erroring.
	var composer *ai.Composer
	if cfg.AI.Enabled() {
		composer, err = ai.NewComposer(ctx, cfg.AI)
		if err != nil {
			logger.Warn("failed to initialize generation service, continuing without it", zap.Error(err))
			composer = nil
		} else {
			logger.Info("generation service initialized")
		}
	} else {
		logger.Warn("generation credentials not configured, skipping generation service")
	}

	// The full reply pipeline needs both upstreams plus the local tooling.
	var orch *turnsvc.Orchestrator
	if composer != nil && speechSvc != nil {
		assembler := turnsvc.NewAssembler(store, speechSvc,
			speech.NewConverter(cfg.Pipeline.FFmpegPath), lipsync.PlaceholderBuilder{})
		orch = turnsvc.NewOrchestrator(speechSvc, composer, assembler)
		logger.Info("turn pipeline initialized")
	} else {
		logger.Warn("turn pipeline disabled, serving fallback replies only")
	}

	timeout := cfg.Pipeline.TurnTimeout()
	chatHandler := chathandler.New(store, orch, timeout)

	var wsHandler *chathandler.WebSocketHandler
	if orch != nil {
		wsHandler = chathandler.NewWebSocketHandler(orch, composer, timeout)
	}

	var recognizer turnsvc.Recognizer
	if speechSvc != nil {
		recognizer = speechSvc
	}
	voiceHandler := voicehandler.New(recognizer, orch, cfg.Pipeline.UploadDir, timeout)

	router := handler.NewRouter(chatHandler, wsHandler, voiceHandler)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("tildos backend listening", zap.String("addr", srv.Addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
