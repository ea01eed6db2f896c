package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"voice-ai-go/internal/ai"
	"voice-ai-go/internal/auth"
	"voice-ai-go/internal/config"
	"voice-ai-go/internal/database"
	httpserver "voice-ai-go/internal/http"
	"voice-ai-go/internal/logging"
	"voice-ai-go/internal/realtime"
	"voice-ai-go/internal/service"
	"voice-ai-go/internal/storage"
	"voice-ai-go/internal/store"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("database")
	}
	st := store.New(db)

	blobs, err := storage.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("storage")
	}

	openai, err := ai.NewOpenAIClient(cfg)
	if err != nil {
		log.WithError(err).Fatal("openai client")
	}
	if cfg.OpenAIKey == "" {
		log.Warn("OPENAI_API_KEY is not set; chat and voice requests will fail")
	}

	authSvc := service.NewAuthService(st, st, auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL), log)
	chatSvc := service.NewChatService(openai, openai, st, log)
	voiceSvc := service.NewVoiceService(openai, blobs, st, cfg.MaxAudioBytes(), log)
	profileSvc := service.NewProfileService(st, st, st, blobs, cfg.MaxImageBytes(), log)

	relay := realtime.NewRelay(voiceSvc, cfg.MaxAudioBytes(), cfg.RequestTimeout(), log)
	voiceSvc.SetPublisher(relay)

	r := httpserver.NewServer(cfg, httpserver.Deps{
		Auth:    authSvc,
		Chat:    chatSvc,
		Voice:   voiceSvc,
		Profile: profileSvc,
		Stream:  relay,
		Log:     log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	relay.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown")
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
