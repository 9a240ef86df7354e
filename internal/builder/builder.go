package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/ba-assistant/internal/api"
	documentapi "github.com/futig/ba-assistant/internal/api/document"
	sessionapi "github.com/futig/ba-assistant/internal/api/session"
	"github.com/futig/ba-assistant/internal/config"
	"github.com/futig/ba-assistant/internal/integration/callback"
	"github.com/futig/ba-assistant/internal/integration/confluence"
	"github.com/futig/ba-assistant/internal/integration/diagram"
	"github.com/futig/ba-assistant/internal/integration/llm"
	"github.com/futig/ba-assistant/internal/knowledge"
	"github.com/futig/ba-assistant/internal/pkg/formatter"
	pkgLogger "github.com/futig/ba-assistant/internal/pkg/logger"
	"github.com/futig/ba-assistant/internal/pkg/validator"
	"github.com/futig/ba-assistant/internal/repository"
	"github.com/futig/ba-assistant/internal/telegram"
	"github.com/futig/ba-assistant/internal/usecase/assistant"
	"github.com/futig/ba-assistant/internal/usecase/export"
	"go.uber.org/zap"
)

const (
	artifactCleanupInterval = 10 * time.Minute
	serverTimeoutMargin     = 30 * time.Second
)

// components are shared by the HTTP API and the Telegram bot
type components struct {
	cfg       *config.Config
	logger    *zap.Logger
	assistant *assistant.AssistantUsecase
	exporter  *export.ExportUsecase
	artifacts *repository.ArtifactMemory
	publisher documentapi.Publisher
	renderer  documentapi.DiagramRenderer
	closers   []func()
}

func (c *components) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func buildComponents(ctx context.Context) (*components, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := pkgLogger.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("store_driver", cfg.StoreCfg.Driver),
	)

	if err := setupOfficeLicense(cfg.ExportCfg.UnidocLicenseKey, logger); err != nil {
		return nil, err
	}

	c := &components{cfg: cfg, logger: logger}

	kv, closers, err := setupStore(ctx, cfg.StoreCfg, logger)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, closers...)
	store := knowledge.NewStore(kv)

	var drafter assistant.Drafter
	if cfg.EnableMocks {
		logger.Info("Using mock connector for the language model")
		drafter = llm.NewMockConnector(logger)
	} else {
		drafter = llm.NewConnector(cfg.LLMConnectorCfg, logger)
	}

	// nil collaborators degrade diagrams to text and PDF to gofpdf
	var (
		rasterizer formatter.Rasterizer
		printer    formatter.HTMLPrinter
	)
	if cfg.DiagramCfg.Enabled {
		r := diagram.NewRenderer(cfg.DiagramCfg, logger)
		rasterizer, printer, c.renderer = r, r, r
		c.closers = append(c.closers, func() {
			if err := r.Close(); err != nil {
				logger.Warn("failed to close headless browser", zap.Error(err))
			}
		})
	} else {
		logger.Info("Diagram rendering disabled")
	}

	c.artifacts = repository.NewArtifactMemory(cfg.ExportCfg.ArtifactTTL, artifactCleanupInterval)
	c.exporter = export.NewUsecase(formatter.NewFactory(rasterizer, printer), c.artifacts, cfg.ExportCfg.CacheTTL)

	var publisher assistant.Publisher
	if cfg.ConfluenceCfg.Enabled() {
		p := confluence.NewPublisher(cfg.ConfluenceCfg, logger)
		publisher, c.publisher = p, p
		logger.Info("Confluence publishing enabled", zap.String("space", cfg.ConfluenceCfg.SpaceKey))
	}

	c.assistant = assistant.NewUsecase(drafter, c.exporter, publisher, store, assistant.Options{
		Continuation:       cfg.Continuation,
		DraftThresholds:    cfg.DraftThresholds,
		FallbackThresholds: cfg.FallbackThresholds,
		SessionTTL:         cfg.SessionCfg.TTL,
		CleanupInterval:    cfg.SessionCfg.CleanupInterval,
		HistoryLimit:       cfg.SessionCfg.HistoryLimit,
	}, logger)
	logger.Info("Use cases initialized")

	return c, nil
}

// setupOfficeLicense activates the unioffice key. Without it DOCX and XLSX
// files cannot be saved and exports carry only HTML and PDF.
func setupOfficeLicense(key string, logger *zap.Logger) error {
	if key == "" {
		logger.Warn("EXPORT_UNIDOC_LICENSE_KEY is not set, DOCX and XLSX exports are unavailable")
		return nil
	}
	if err := formatter.UseOfficeLicense(key); err != nil {
		return err
	}
	logger.Info("unioffice license activated")
	return nil
}

func Build() (*App, error) {
	c, err := buildComponents(context.Background())
	if err != nil {
		return nil, err
	}
	cfg, logger := c.cfg, c.logger

	v := validator.NewValidator(cfg.APICfg)
	sessionHandler := sessionapi.NewHandler(c.assistant, v, callback.NewConnector(cfg.CallbackConnectorCfg, logger))
	documentHandler := documentapi.NewHandler(c.exporter, c.artifacts, c.publisher, c.renderer, v)
	logger.Info("API handlers initialized")

	router := api.SetupRouter(sessionHandler, documentHandler, cfg.APICfg.RequestTimeout, logger)
	logger.Info("HTTP router configured")

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.APICfg.RequestTimeout + serverTimeoutMargin,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server:  server,
		drain:   sessionHandler.Wait,
		closers: c.closers,
		logger:  logger,
	}, nil
}

// BuildTelegramBot creates and initializes the Telegram bot. The returned
// cleanup releases the store and the browser after the bot stops.
func BuildTelegramBot() (telegram.Bot, *zap.Logger, func(), error) {
	c, err := buildComponents(context.Background())
	if err != nil {
		return nil, nil, nil, err
	}

	if c.cfg.TelegramCfg.BotToken == "" {
		c.close()
		return nil, nil, nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	bot, err := telegram.NewBot(&c.cfg.TelegramCfg, c.assistant, c.artifacts, c.logger)
	if err != nil {
		c.close()
		return nil, nil, nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	c.logger.Info("Telegram bot built successfully",
		zap.String("environment", c.cfg.Environment),
	)

	return bot, c.logger, c.close, nil
}
