package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"capture-recall/config"
	"capture-recall/internal/conversation"
	convDelivery "capture-recall/internal/conversation/delivery/http"
	"capture-recall/internal/httpserver"
	"capture-recall/internal/intent"
	memDelivery "capture-recall/internal/memory/delivery/http"
	qdrantRepo "capture-recall/internal/memory/repository/qdrant"
	sqliteRepo "capture-recall/internal/memory/repository/sqlite"
	memUC "capture-recall/internal/memory/usecase"
	"capture-recall/internal/middleware"
	"capture-recall/internal/mirror"
	"capture-recall/internal/reachability"
	"capture-recall/pkg/datemath"
	"capture-recall/pkg/gcalendar"
	"capture-recall/pkg/llmprovider"
	"capture-recall/pkg/log"
	"capture-recall/pkg/qdrant"
	"capture-recall/pkg/retry"
	"capture-recall/pkg/transcribe"
	"capture-recall/pkg/voyage"
)

func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config: ", err)
		return
	}

	// 2. Logger
	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting capture-recall...")
	logger.Infof(ctx, "Environment: %s", cfg.Environment.Name)

	policy := retry.Policy{
		Attempts: cfg.Retry.Attempts,
		Delay:    cfg.Retry.Delay,
		Timeout:  cfg.Retry.Timeout,
	}

	// 3. LLM provider chain
	specs := make([]llmprovider.ProviderSpec, 0, len(cfg.LLM.Providers))
	for _, p := range cfg.LLM.Providers {
		specs = append(specs, llmprovider.ProviderSpec{
			Name:     p.Name,
			Enabled:  p.Enabled,
			Priority: p.Priority,
			APIKey:   p.APIKey,
			BaseURL:  p.BaseURL,
			Model:    p.Model,
		})
	}
	providers := llmprovider.BuildProviders(specs)
	if len(providers) == 0 {
		logger.Error(ctx, "No usable LLM providers configured")
		return
	}
	llm := llmprovider.NewManager(providers, cfg.LLM.FallbackEnabled, logger)

	// 4. Embedding + vector store
	voyageClient, err := voyage.New(cfg.Voyage.APIKey)
	if err != nil {
		logger.Error(ctx, "Failed to initialize Voyage client: ", err)
		return
	}
	if cfg.Voyage.Model != "" {
		voyageClient = voyageClient.WithModel(cfg.Voyage.Model)
	}

	qdrantClient := qdrant.NewClient(cfg.Qdrant.URL)
	if err := qdrantClient.EnsureCollection(ctx, qdrant.CreateCollectionRequest{
		Name: cfg.Qdrant.CollectionName,
		Vectors: qdrant.VectorConfig{
			Size:     cfg.Qdrant.VectorSize,
			Distance: "Cosine",
		},
	}); err != nil {
		logger.Warnf(ctx, "Could not ensure Qdrant collection (continuing): %v", err)
	}

	vectorRepo := qdrantRepo.New(qdrantClient, voyageClient, cfg.Qdrant.CollectionName, policy, logger)

	// 5. Local mirror
	mirrorRepo, err := sqliteRepo.Open(cfg.Mirror.Path)
	if err != nil {
		logger.Error(ctx, "Failed to open mirror database: ", err)
		return
	}
	defer mirrorRepo.Close()
	mirrorSync := mirror.New(vectorRepo, mirrorRepo, logger)

	// 6. Memory use case
	memoryUC := memUC.New(vectorRepo, mirrorRepo, mirrorSync, llm, policy, logger)

	// 7. Intent classification
	dateParser, dtErr := datemath.NewParser(cfg.Conversation.Timezone)
	if dtErr != nil {
		logger.Warnf(ctx, "Invalid timezone %q, falling back to UTC: %v", cfg.Conversation.Timezone, dtErr)
		dateParser, _ = datemath.NewParser("UTC")
	}
	classifier := intent.NewClassifier(llm, dateParser, logger)

	// 8. Calendar store (optional)
	var calendarStore gcalendar.Store = gcalendar.NewUnavailable()
	if cfg.GoogleCalendar.CredentialsPath != "" {
		calendarClient, calErr := gcalendar.NewClientFromCredentialsFile(ctx, cfg.GoogleCalendar.CredentialsPath, cfg.GoogleCalendar.CalendarID)
		if calErr != nil {
			logger.Warnf(ctx, "Google Calendar not available (optional): %v", calErr)
		} else {
			calendarStore = calendarClient
			logger.Info(ctx, "Google Calendar initialized")
		}
	}

	// 9. Transcription (optional)
	var transcriber transcribe.ITranscriber = transcribe.Disabled()
	if cfg.Transcribe.APIKey != "" {
		transcribeClient, trErr := transcribe.New(cfg.Transcribe.APIKey)
		if trErr != nil {
			logger.Warnf(ctx, "Transcription not available (optional): %v", trErr)
		} else {
			transcriber = transcribeClient.WithBaseURL(cfg.Transcribe.BaseURL).WithModel(cfg.Transcribe.Model)
		}
	}

	// 10. Conversation machine + reachability
	machine := conversation.NewMachine(conversation.Config{
		SessionID:     cfg.Conversation.SessionID,
		Classifier:    classifier,
		Memories:      memoryUC,
		Calendar:      calendarStore,
		Transcriber:   transcriber,
		Policy:        policy,
		Timezone:      cfg.Conversation.Timezone,
		SuccessLinger: cfg.Conversation.SuccessLinger,
		Logger:        logger,
	})

	monitor := reachability.NewMonitor(cfg.Reachability.ProbeURL, cfg.Reachability.ProbeInterval, logger)
	monitor.Subscribe(machine.SetOnline)
	go monitor.Start(ctx)

	// 11. HTTP server
	mw := middleware.New(logger, cfg)
	httpServer, err := httpserver.New(logger, httpserver.Config{
		Logger:              logger,
		Port:                cfg.HTTPServer.Port,
		Mode:                cfg.HTTPServer.Mode,
		Environment:         cfg.Environment.Name,
		Middleware:          mw,
		ConversationHandler: convDelivery.New(logger, machine),
		MemoryHandler:       memDelivery.New(logger, memoryUC, mirrorSync),
	})
	if err != nil {
		logger.Error(ctx, "Failed to initialize HTTP server: ", err)
		return
	}

	if err := httpServer.Run(ctx); err != nil {
		logger.Error(ctx, "Failed to run server: ", err)
		return
	}

	logger.Info(ctx, "Server stopped gracefully")
}
