package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"console-service/internal/contextkeys"
	"console-service/internal/core/port"
)

// ClientChannel - канал, через который события уходят одному конкретному
// подключению (вкладке браузера).
type ClientChannel chan []byte

// eventWithContext несет событие вместе с контекстом, породившим его,
// чтобы диспетчер мог логировать с тем же trace_id.
type eventWithContext struct {
	ctx   context.Context
	event port.SyncEvent
}

// SSENotifier - notification surface консоли: каждая неудача fetch/мутации
// доставляется подключенным клиентам пользователя одной строкой.
type SSENotifier struct {
	// clients хранит активные подключения: ключ - ID пользователя,
	// значение - каналы всех его открытых вкладок.
	clients map[string][]ClientChannel
	mu      sync.RWMutex

	// eventChan - внутренний канал, в который Use Cases бросают события.
	eventChan chan eventWithContext

	logger port.LoggerPort
}

// NewSSENotifier создает нотификатор и запускает его диспетчер.
func NewSSENotifier(baseLogger port.LoggerPort) *SSENotifier {
	notifier := &SSENotifier{
		clients:   make(map[string][]ClientChannel),
		eventChan: make(chan eventWithContext, 100),
		logger:    baseLogger.WithFields(port.Fields{"component": "SSENotifier"}),
	}

	go notifier.dispatcher()

	return notifier
}

// dispatcher работает в фоне: слушает события и рассылает их подключениям.
func (n *SSENotifier) dispatcher() {
	n.logger.Debug("Notifier dispatcher started.", nil)
	for pkg := range n.eventChan {
		event := pkg.event

		eventLogger := contextkeys.LoggerFromContext(pkg.ctx).WithFields(port.Fields{
			"component":  "SSENotifier.dispatcher",
			"event_type": event.Type,
			"collection": event.Collection,
		})

		eventBytes, err := json.Marshal(event)
		if err != nil {
			eventLogger.Error("Failed to marshal event", err, nil)
			continue
		}

		sseMessage := []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, string(eventBytes)))
		userID := event.UserID.String()

		n.mu.RLock()
		if channels, found := n.clients[userID]; found {
			eventLogger.Debug("Dispatching event to clients", port.Fields{
				"user_id":        userID,
				"channels_count": len(channels),
			})
			for _, ch := range channels {
				// select с default, чтобы переполненный или закрытый
				// канал клиента не заблокировал диспетчер.
				select {
				case ch <- sseMessage:
				default:
					eventLogger.Warn("Client channel is full or closed, skipping.", port.Fields{"user_id": userID})
				}
			}
		} else {
			eventLogger.Debug("No active clients for user, event dropped.", port.Fields{"user_id": userID})
		}
		n.mu.RUnlock()
	}
}

// Notify - реализация NotifierPort; вызывается из Use Cases.
func (n *SSENotifier) Notify(ctx context.Context, event port.SyncEvent) {
	n.eventChan <- eventWithContext{ctx: ctx, event: event}
}

// AddClient регистрирует новое SSE-подключение пользователя.
func (n *SSENotifier) AddClient(userID string) ClientChannel {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(ClientChannel, 100)
	n.clients[userID] = append(n.clients[userID], ch)

	n.logger.Info("Client connected for user", port.Fields{
		"user_id":                    userID,
		"total_connections_for_user": len(n.clients[userID]),
	})

	return ch
}

// RemoveClient убирает канал клиента при отключении.
func (n *SSENotifier) RemoveClient(userID string, ch ClientChannel) {
	n.mu.Lock()
	defer n.mu.Unlock()

	channels, found := n.clients[userID]
	if !found {
		return
	}

	remaining := make([]ClientChannel, 0, len(channels))
	for _, c := range channels {
		if c != ch {
			remaining = append(remaining, c)
		}
	}

	if len(remaining) == 0 {
		delete(n.clients, userID)
		n.logger.Debug("Last client disconnected for user. User removed.", port.Fields{"user_id": userID})
	} else {
		n.clients[userID] = remaining
		n.logger.Info("Client disconnected for user.", port.Fields{
			"user_id":               userID,
			"remaining_connections": len(remaining),
		})
	}
}
