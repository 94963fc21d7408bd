package rabbitmq_consumer

import (
	"context"
	"fmt"
	"sync"

	"console-service/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageHandler обрабатывает одно сообщение. Ошибка приводит к nack
// с переотправкой, nil - к ack.
type MessageHandler func(d amqp.Delivery) error

// ConsumerConfig конфигурация для потребителя.
type ConsumerConfig struct {
	// Настройки очереди
	QueueName       string
	DeclareQueue    bool // Пытаться ли объявить очередь
	DurableQueue    bool
	AutoDeleteQueue bool
	QueueArgs       amqp.Table
	// Настройки обменника (если нужно объявлять или привязываться к нему)
	ExchangeNameForBind    string // Имя обменника для привязки очереди (если пусто, привязка не выполняется)
	DeclareExchangeForBind bool
	ExchangeTypeForBind    string
	DurableExchangeForBind bool
	RoutingKeyForBind      string
	// Настройки QoS
	PrefetchCount int
	// Настройки потребителя
	ConsumerTag string

	Logger rabbitmq_common.Logger
}

// Consumer читает сообщения из одной очереди и передает их обработчику.
// Каждое сообщение подтверждается или возвращается в очередь по результату
// обработчика.
type Consumer struct {
	config          ConsumerConfig
	channel         *amqp.Channel
	actualQueueName string
	wg              sync.WaitGroup

	Logger rabbitmq_common.Logger
}

// NewConsumer получает канал из общего соединения и настраивает очередь,
// обменник и привязку согласно конфигурации.
func NewConsumer(cfg ConsumerConfig, connManager *rabbitmq_common.ConnectionManager) (*Consumer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = rabbitmq_common.NewNoopLogger()
	}

	if !cfg.DeclareQueue && cfg.QueueName == "" {
		return nil, fmt.Errorf("consumer: queue name is required if DeclareQueue is false")
	}
	if cfg.ExchangeNameForBind != "" && cfg.ExchangeTypeForBind == "" && cfg.DeclareExchangeForBind {
		return nil, fmt.Errorf("consumer: exchange type is required if declaring an exchange for binding")
	}

	c := &Consumer{
		config: cfg,
		Logger: logger,
	}

	_, ch, err := connManager.GetChannel()
	if err != nil {
		return nil, fmt.Errorf("consumer: failed to get channel from manager: %w", err)
	}
	c.channel = ch
	c.Logger.Debug("Channel obtained from ConnectionManager")

	if err := c.setup(); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("consumer: setup failed: %w", err)
	}

	return c, nil
}

// setup настраивает QoS, очередь, обменник и привязку.
func (c *Consumer) setup() error {
	if c.config.PrefetchCount > 0 {
		c.Logger.Debug("Setting QoS", "prefetch_count", c.config.PrefetchCount)
		if err := c.channel.Qos(c.config.PrefetchCount, 0, false); err != nil {
			return fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	c.actualQueueName = c.config.QueueName
	if c.config.DeclareQueue {
		c.Logger.Debug("Declaring queue",
			"name", c.config.QueueName,
			"durable", c.config.DurableQueue,
			"autoDelete", c.config.AutoDeleteQueue,
		)
		q, err := c.channel.QueueDeclare(
			c.config.QueueName,
			c.config.DurableQueue,
			c.config.AutoDeleteQueue,
			false, // exclusive
			false, // no-wait
			c.config.QueueArgs,
		)
		if err != nil {
			return fmt.Errorf("failed to declare queue '%s': %w", c.config.QueueName, err)
		}
		c.actualQueueName = q.Name // Используем имя, возвращенное сервером
	}

	if c.config.DeclareExchangeForBind {
		c.Logger.Debug("Declaring exchange",
			"name", c.config.ExchangeNameForBind,
			"type", c.config.ExchangeTypeForBind,
		)
		err := c.channel.ExchangeDeclare(
			c.config.ExchangeNameForBind,
			c.config.ExchangeTypeForBind,
			c.config.DurableExchangeForBind,
			false, // auto-deleted
			false, // internal
			false, // no-wait
			nil,
		)
		if err != nil {
			return fmt.Errorf("failed to declare exchange '%s' for binding: %w", c.config.ExchangeNameForBind, err)
		}
	}

	if c.config.ExchangeNameForBind != "" {
		c.Logger.Debug("Binding queue to exchange",
			"queue_name", c.actualQueueName,
			"exchange_name", c.config.ExchangeNameForBind,
			"routing_key", c.config.RoutingKeyForBind,
		)
		err := c.channel.QueueBind(
			c.actualQueueName,
			c.config.RoutingKeyForBind,
			c.config.ExchangeNameForBind,
			false, // noWait
			nil,
		)
		if err != nil {
			return fmt.Errorf("failed to bind queue '%s' to exchange '%s': %w", c.actualQueueName, c.config.ExchangeNameForBind, err)
		}
	}

	c.Logger.Debug("Setup complete", "queue", c.actualQueueName)
	return nil
}

// StartConsuming блокирует до отмены контекста или закрытия канала доставки.
func (c *Consumer) StartConsuming(ctx context.Context, handler MessageHandler) error {
	deliveries, err := c.channel.Consume(
		c.actualQueueName,
		c.config.ConsumerTag,
		false, // autoAck: подтверждаем вручную по результату обработчика
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("consumer: failed to start consuming from '%s': %w", c.actualQueueName, err)
	}

	c.Logger.Info("Started consuming", "queue", c.actualQueueName)

	for {
		select {
		case <-ctx.Done():
			c.Logger.Info("Context cancelled, stopping consumer")
			return nil

		case d, ok := <-deliveries:
			if !ok {
				c.Logger.Warn("Delivery channel closed")
				return nil
			}

			c.wg.Add(1)
			go func(d amqp.Delivery) {
				defer c.wg.Done()

				if err := handler(d); err != nil {
					c.Logger.Error(err, "Handler failed, nacking message", "delivery_tag", d.DeliveryTag)
					if nackErr := d.Nack(false, true); nackErr != nil {
						c.Logger.Error(nackErr, "Failed to nack message")
					}
					return
				}
				if ackErr := d.Ack(false); ackErr != nil {
					c.Logger.Error(ackErr, "Failed to ack message")
				}
			}(d)
		}
	}
}

// Close дожидается обработчиков и закрывает канал потребителя.
func (c *Consumer) Close() error {
	c.Logger.Debug("Waiting for message handlers to finish...")
	c.wg.Wait()
	c.Logger.Debug("All message handlers finished")

	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.Logger.Error(err, "Error closing channel")
			return err
		}
		c.channel = nil
	}

	c.Logger.Info("Consumer closed")
	return nil
}
