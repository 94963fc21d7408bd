package internal

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	listings_client "console-service/internal/adapters/listings_client"
	logger_adapter "console-service/internal/adapters/logger"
	"console-service/internal/adapters/notifier"
	rabbitmq_adapter "console-service/internal/adapters/rabbitmq"
	"console-service/internal/adapters/rest"
	"console-service/internal/configs"
	"console-service/internal/constants"
	"console-service/internal/contracts"
	"console-service/internal/core/port"
	"console-service/internal/core/store"
	"console-service/internal/core/usecase"
	fluentlogger "console-service/pkg/fluent_logger"
	"console-service/pkg/rabbitmq/rabbitmq_common"
	"console-service/pkg/rabbitmq/rabbitmq_consumer"

	"github.com/fluent/fluent-logger-golang/fluent"
)

type App struct {
	config         *configs.AppConfig
	apiServer      *rest.Server
	eventsListener port.EventListenerPort

	logger       port.LoggerPort
	fluentClient *fluent.Fluent
}

func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// --- 1. ИНИЦИАЛИЗАЦИЯ ЛОГГЕРОВ ---
	var activeLoggers []port.LoggerPort

	slogCfg := logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		IsJSON:   false, // текстовый формат
		UseColor: true,
	}
	stdoutLogger := logger_adapter.NewSlogAdapter(slogCfg)
	activeLoggers = append(activeLoggers, stdoutLogger)

	// Добавляем Fluent Bit логгер, если он включен в конфигурации
	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName, // Используем имя приложения как префикс
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	// Создаем наш композитный логгер
	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	// --- 2. СОЗДАЕМ БАЗОВЫЙ ЛОГГЕР ПРИЛОЖЕНИЯ С КОНТЕКСТОМ ---
	baseLogger := multiLogger.WithFields(port.Fields{
		"service_name": appConfig.AppName,
	})

	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	// --- 3. НИЗКОУРОВНЕВЫЕ ЗАВИСИМОСТИ ---
	sessions := store.NewRegistry()
	appLogger.Info("Session registry initialized.", nil)

	listingsClient := listings_client.NewClient(appConfig.ApiClient.LISTINGS_SERVICE_URL)
	discoveredClient := listings_client.NewDiscovered(listingsClient)
	appLogger.Info("Listings service client initialized.", port.Fields{
		"base_url": appConfig.ApiClient.LISTINGS_SERVICE_URL,
	})

	sseNotifier := notifier.NewSSENotifier(baseLogger)
	appLogger.Info("SSE Notifier initialized.", nil)

	payloadValidator := contracts.NewValidator()

	// --- 4. ИНИЦИАЛИЗАЦИЯ USE CASES (ядра бизнес-логики) ---
	refreshPropertiesUC := usecase.NewRefreshPropertiesUseCase(sessions, listingsClient, sseNotifier)
	refreshDiscoveredUC := usecase.NewRefreshDiscoveredUseCase(sessions, discoveredClient, sseNotifier)
	createPropertyUC := usecase.NewCreatePropertyUseCase(sessions, listingsClient, payloadValidator, sseNotifier)
	updatePropertyUC := usecase.NewUpdatePropertyUseCase(sessions, listingsClient, payloadValidator, sseNotifier)
	deletePropertyUC := usecase.NewDeletePropertyUseCase(sessions, listingsClient, sseNotifier)
	promoteListingUC := usecase.NewPromoteListingUseCase(sessions, createPropertyUC)
	appLogger.Info("All use cases initialized.", nil)

	// --- 5. REST API Server ---
	propertyHandlers := rest.NewPropertyHandler(sessions, refreshPropertiesUC, createPropertyUC, updatePropertyUC, deletePropertyUC)
	discoveredHandlers := rest.NewDiscoveredHandler(sessions, refreshDiscoveredUC, promoteListingUC, sseNotifier)
	apiServer := rest.NewServer(appConfig.Rest.PORT, appConfig.Rest.AllowedOrigins, sessions, propertyHandlers, discoveredHandlers, baseLogger)
	appLogger.Info("REST API server configured.", nil)

	// --- 6. RabbitMQ Consumer для событий парсеров ---
	var eventsListener port.EventListenerPort
	if appConfig.RabbitMQ.Enabled {
		connManagerLogger := baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"})
		connManagerBridge := rabbitmq_adapter.NewPkgLoggerBridge(connManagerLogger)
		connManager, err := rabbitmq_common.NewManager(appConfig.RabbitMQ.URL, connManagerBridge)
		if err != nil {
			appLogger.Error("Failed to create connection manager", err, nil)
			return nil, fmt.Errorf("failed to create connection manager: %w", err)
		}
		appLogger.Info("RabbitMQ Connection Manager initialized.", nil)

		consumerCfg := rabbitmq_consumer.ConsumerConfig{
			QueueName:           appConfig.RabbitMQ.Queue,
			DeclareQueue:        true,
			DurableQueue:        true,
			ExchangeNameForBind: constants.MainExchange,
			RoutingKeyForBind:   constants.RoutingKeyListingDiscovered,
			PrefetchCount:       5,
			ConsumerTag:         "console-discovered-listings-adapter",
		}

		eventsListener, err = rabbitmq_adapter.NewListingEventsConsumerAdapter(consumerCfg, sessions, refreshDiscoveredUC, baseLogger, connManager)
		if err != nil {
			appLogger.Error("Failed to create listing events consumer", err, nil)
			return nil, fmt.Errorf("failed to create listing events consumer adapter: %w", err)
		}
		appLogger.Info("RabbitMQ listener initialized.", nil)
	} else {
		appLogger.Warn("RabbitMQ is disabled, discovered listings will refresh on demand only.", nil)
	}

	// --- 7. Собираем приложение ---
	application := &App{
		config:         appConfig,
		apiServer:      apiServer,
		eventsListener: eventsListener,
		logger:         appLogger,
		fluentClient:   fluentClient,
	}

	return application, nil
}

func (a *App) Run() error {
	// Создаем единый контекст для всего приложения для управления graceful shutdown
	appCtx, cancelApp := context.WithCancel(context.Background())

	// Используем WaitGroup для ожидания завершения всех фоновых задач
	var wg sync.WaitGroup

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		a.logger.Info("Waiting for background processes to finish...", nil)
		wg.Wait()
		a.logger.Info("All background processes finished.", nil)

		if a.apiServer != nil {
			if err := a.apiServer.Stop(context.Background()); err != nil {
				a.logger.Error("Error during API server shutdown", err, nil)
			}
		}

		if a.eventsListener != nil {
			if err := a.eventsListener.Close(); err != nil {
				a.logger.Error("Error closing listing events listener", err, nil)
			}
		}

		a.logger.Info("Application shut down gracefully.", nil)
		if a.fluentClient != nil {
			if err := a.fluentClient.Close(); err != nil {
				fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
			}
		}
	}()

	a.logger.Info("Application is starting...", nil)

	errorsCh := make(chan error, 1)

	go func() {
		a.logger.Info("Starting HTTP server...", port.Fields{"port": a.config.Rest.PORT})
		if err := a.apiServer.Start(); err != nil && err != http.ErrServerClosed {
			errorsCh <- fmt.Errorf("HTTP server start error: %w", err)
		}
	}()

	if a.eventsListener != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			listenerLogger := a.logger.WithFields(port.Fields{"listener": "Listing Events Listener"})
			listenerLogger.Info("Starting listener...", nil)

			if err := a.eventsListener.Start(appCtx); err != nil {
				listenerLogger.Error("Listener stopped with an unexpected error", err, nil)
				errorsCh <- fmt.Errorf("listing events listener error: %w", err)
			} else {
				listenerLogger.Info("Listener stopped gracefully.", nil)
			}
		}()
	}

	// Ожидание сигнала на завершение или ошибки от одного из компонентов
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a.logger.Info("Application running. Waiting for signals or component error...", nil)
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case err := <-errorsCh:
		a.logger.Error("A critical component failed, shutting down", err, nil)
	case <-appCtx.Done():
		a.logger.Warn("Context was cancelled unexpectedly, shutting down...", nil)
	}

	// Инициируем graceful shutdown, отменяя главный контекст
	cancelApp()

	return nil
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		// Возвращаем безопасное значение по умолчанию и логируем предупреждение
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
