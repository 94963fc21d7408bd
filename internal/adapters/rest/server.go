package rest

import (
	"context"
	"fmt"
	"net/http"

	"console-service/internal/core/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	core_port "console-service/internal/core/port"
)

// Server - REST API сервер консоли управления объявлениями.
type Server struct {
	httpServer *http.Server
	logger     core_port.LoggerPort
}

func NewServer(
	port string,
	allowedOrigins []string,
	sessions *store.Registry,
	propertyHandlers *PropertyHandler,
	discoveredHandlers *DiscoveredHandler,
	baseLogger core_port.LoggerPort,
) *Server {
	r := chi.NewRouter()

	// Общие middleware
	r.Use(LoggerMiddleware(baseLogger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-ID", "X-User-Phone"},
		AllowCredentials: true,
	}))

	// Роутинг для API v1. Все роуты приватные: пользователя опознает
	// API Gateway и передает в заголовках.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(AuthMiddleware(sessions))

		r.Route("/properties", func(r chi.Router) {
			// GET /api/v1/properties - текущее состояние кэша
			r.Get("/", propertyHandlers.GetProperties)

			// PUT /api/v1/properties/query - изменить дескриптор и перечитать
			r.Put("/query", propertyHandlers.ChangePropertiesQuery)

			// POST /api/v1/properties/refresh - повторить текущий запрос
			r.Post("/refresh", propertyHandlers.RefreshProperties)

			// POST /api/v1/properties - создать объявление (multipart)
			r.Post("/", propertyHandlers.CreateProperty)

			// PATCH /api/v1/properties/{propertyID} - обновить объявление
			r.Patch("/{propertyID}", propertyHandlers.UpdateProperty)

			// DELETE /api/v1/properties/{propertyID} - удалить объявление
			r.Delete("/{propertyID}", propertyHandlers.DeleteProperty)
		})

		r.Route("/discovered", func(r chi.Router) {
			// GET /api/v1/discovered - текущее состояние кэша
			r.Get("/", discoveredHandlers.GetDiscovered)

			// PUT /api/v1/discovered/query - изменить дескриптор и перечитать
			r.Put("/query", discoveredHandlers.ChangeDiscoveredQuery)

			// POST /api/v1/discovered/refresh - повторить текущий запрос
			r.Post("/refresh", discoveredHandlers.RefreshDiscovered)

			// POST /api/v1/discovered/{listingID}/promote - создать свое
			// объявление из найденного
			r.Post("/{listingID}/promote", discoveredHandlers.PromoteListing)
		})

		// GET /api/v1/events - SSE-поток уведомлений о фоновых ошибках
		r.Get("/events", discoveredHandlers.SubscribeToEvents)
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	return &Server{
		httpServer: srv,
		logger:     baseLogger,
	}
}

// Start запускает HTTP-сервер.
func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", core_port.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Could not start server", err, nil)
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop корректно останавливает сервер.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST API server...", nil)
	return s.httpServer.Shutdown(ctx)
}
