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
	"github.com/redis/go-redis/v9"

	"github.com/tandemapp/tandem/backend/internal/config"
	"github.com/tandemapp/tandem/backend/internal/handler"
	"github.com/tandemapp/tandem/backend/internal/model/partner"
	speechModel "github.com/tandemapp/tandem/backend/internal/model/speech"
	"github.com/tandemapp/tandem/backend/internal/service/ai"
	"github.com/tandemapp/tandem/backend/internal/service/chat"
	"github.com/tandemapp/tandem/backend/internal/service/flashcard"
	"github.com/tandemapp/tandem/backend/internal/service/group"
	"github.com/tandemapp/tandem/backend/internal/service/lesson"
	"github.com/tandemapp/tandem/backend/internal/service/speech"
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

	partnerStore := partner.NewMemoryStore(partner.Seed())
	chatService := chat.NewService()
	flashcardService := flashcard.NewService()

	// Group sessions and the lesson cache share one Redis connection when
	// REDIS_URL is set; otherwise both fall back to in-memory stores.
	var groupStore group.Store
	var lessonCache lesson.Cache
	if cfg.Redis.Enabled() {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		client := redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}

		groupStore = group.NewRedisStoreWithClient(client)
		lessonCache = lesson.NewRedisCache(client)
		defer client.Close()
		log.Println("Redis store initialized successfully")
	} else {
		groupStore = group.NewMemoryStore()
		lessonCache = lesson.NewMemoryCache()
		log.Println("REDIS_URL not set, using in-memory stores")
	}
	groupService := group.NewService(groupStore)

	var aiService *ai.Service
	if cfg.AI.Enabled() {
		aiService, err = ai.NewService(ctx, partnerStore, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without AI functionality")
		} else {
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("model credentials not configured, skipping AI initialization")
	}

	var lessonService *lesson.Service
	if aiService != nil {
		lessonService = lesson.NewService(aiService, lessonCache, cfg.Lesson.CacheTTL)
	} else {
		log.Println("lesson generation disabled without an AI service")
	}

	var speechService *speech.Service
	if cfg.Speech.Enabled {
		speechService = speech.NewService(&speechModel.SpeechConfig{
			BaseURL:     cfg.Speech.BaseURL,
			APIKey:      cfg.Speech.APIKey,
			TTSVoice:    cfg.Speech.TTSVoice,
			TTSLanguage: cfg.Speech.TTSLanguage,
			ASRLanguage: cfg.Speech.ASRLanguage,
			Timeout:     cfg.Speech.Timeout,
			Enabled:     cfg.Speech.Enabled,
		})
		log.Println("Speech service initialized successfully")
	} else {
		log.Println("speech credentials not configured, skipping speech initialization")
	}

	router := handler.NewRouter(handler.Services{
		AuthCfg:    cfg.Auth,
		Partners:   partnerStore,
		Chat:       chatService,
		Group:      groupService,
		Flashcards: flashcardService,
		AI:         aiService,
		Lessons:    lessonService,
		Speech:     speechService,
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

	log.Printf("Tandem backend listening on %s", addr)
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
