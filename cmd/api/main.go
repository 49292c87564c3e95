package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/daily-hug/internal/config"
	"github.com/zhouzirui/daily-hug/internal/handler"
	"github.com/zhouzirui/daily-hug/internal/model/persona"
	"github.com/zhouzirui/daily-hug/internal/service/ai"
	"github.com/zhouzirui/daily-hug/internal/service/chat"
	"github.com/zhouzirui/daily-hug/internal/service/conversation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	traitStore := persona.NewMemoryStore(persona.Seed())
	greeter := ai.NewGreeter(nil)

	// Initialize AI service
	var replier ai.Replier
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without AI functionality - 请检查 Ark 模型相关环境变量")
		} else {
			replier = aiService
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("Ark 凭证未配置，跳过 AI 功能初始化，/chat 将返回 503")
	}

	var sessionOpts []conversation.Option
	if cfg.Session.MarkFailedTurns {
		sessionOpts = append(sessionOpts, conversation.WithFailureMarking())
	}
	sessions := chat.NewService(ai.NewLocalEndpoint(greeter, replier), cfg.Client.Timeout, sessionOpts...)

	router := handler.NewRouter(handler.Dependencies{
		Traits:         traitStore,
		Greeter:        greeter,
		Replier:        replier,
		Sessions:       sessions,
		DefaultPersona: cfg.Session.DefaultPersonaName,
	})

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("daily-hug endpoint listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
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
