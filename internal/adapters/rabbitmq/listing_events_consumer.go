package rabbitmq_adapter

import (
	"context"
	"encoding/json"

	"console-service/internal/contextkeys"
	"console-service/internal/contracts"
	"console-service/internal/core/port"
	"console-service/internal/core/port/usecases_port"
	"console-service/internal/core/store"
	"console-service/pkg/rabbitmq/rabbitmq_common"
	"console-service/pkg/rabbitmq/rabbitmq_consumer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// DTO для события от парсеров внешних площадок
type ListingDiscoveredDTO struct {
	SellerPhone string `json:"seller_phone"`
	Source      string `json:"source"`
}

// ListingEventsConsumerAdapter слушает события "найдено объявление" и
// перечитывает кэш найденных объявлений у всех сессий с совпавшим телефоном.
type ListingEventsConsumerAdapter struct {
	consumer *rabbitmq_consumer.Consumer
	sessions *store.Registry
	refresh  usecases_port.RefreshDiscoveredUseCasePort
	logger   port.LoggerPort
}

// NewListingEventsConsumerAdapter - конструктор.
func NewListingEventsConsumerAdapter(
	cfg rabbitmq_consumer.ConsumerConfig,
	sessions *store.Registry,
	refresh usecases_port.RefreshDiscoveredUseCasePort,
	logger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*ListingEventsConsumerAdapter, error) {
	adapter := &ListingEventsConsumerAdapter{
		sessions: sessions,
		refresh:  refresh,
		logger:   logger,
	}

	pkgLogger := logger.WithFields(port.Fields{"component": "rabbitmq_consumer", "consumer_tag": cfg.ConsumerTag})
	cfg.Logger = NewPkgLoggerBridge(pkgLogger)

	consumer, err := rabbitmq_consumer.NewConsumer(cfg, connManager)
	if err != nil {
		return nil, err
	}
	adapter.consumer = consumer
	return adapter, nil
}

// messageHandler - обработчик одного сообщения.
func (a *ListingEventsConsumerAdapter) messageHandler(d amqp.Delivery) error {
	traceID, ok := d.Headers["x-trace-id"].(string)
	if !ok || traceID == "" {
		traceID = uuid.New().String()
	}

	msgLogger := a.logger.WithFields(port.Fields{
		"trace_id":     traceID,
		"delivery_tag": d.DeliveryTag,
	})

	ctx := context.Background()
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)

	if err := contracts.ValidateEvent("ListingDiscovered", "1.0.0", d.Body); err != nil {
		msgLogger.Error("Event failed schema validation, rejecting message.", err, nil)
		return nil // Не переотправляем "битые" сообщения
	}

	var dto ListingDiscoveredDTO
	if err := json.Unmarshal(d.Body, &dto); err != nil {
		msgLogger.Error("Failed to unmarshal listing discovered DTO, rejecting message.", err, nil)
		return nil
	}

	handlerLogger := msgLogger.WithFields(port.Fields{
		"seller_phone": dto.SellerPhone,
		"source":       dto.Source,
	})
	ctx = contextkeys.ContextWithLogger(ctx, handlerLogger)

	sessions := a.sessions.SessionsByPhone(dto.SellerPhone)
	if len(sessions) == 0 {
		handlerLogger.Debug("No active sessions match the seller phone, skipping.", nil)
		return nil
	}

	handlerLogger.Info("Refreshing discovered listings for matched sessions.", port.Fields{
		"sessions": len(sessions),
	})

	// Перечитываем кэш каждой затронутой сессии. Ошибка обновления не
	// возвращает сообщение в очередь: кэш уже помечен ошибкой, а view
	// получил уведомление через notification surface.
	for _, session := range sessions {
		if _, err := a.refresh.Execute(ctx, session.UserID); err != nil {
			handlerLogger.Error("Failed to refresh discovered listings for session", err, port.Fields{
				"user_id": session.UserID.String(),
			})
		}
	}

	return nil
}

// Start и Close делегируют вызовы консьюмеру.
func (a *ListingEventsConsumerAdapter) Start(ctx context.Context) error {
	return a.consumer.StartConsuming(ctx, a.messageHandler)
}
func (a *ListingEventsConsumerAdapter) Close() error { return a.consumer.Close() }
