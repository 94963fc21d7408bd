package rest

import (
	"context"
	"net/http"

	"console-service/internal/core/store"

	"github.com/google/uuid"
)

// Кастомный тип для ключа контекста, чтобы избежать коллизий.
type contextKey string

const userIDKey = contextKey("userID")

// AuthMiddleware извлекает пользователя из заголовков, которыми его
// снабдил API Gateway, и гарантирует, что сессия консоли с парой кэшей
// для этого пользователя существует. Телефон нужен коллекции найденных
// объявлений - по нему их ищут парсеры.
func AuthMiddleware(sessions *store.Registry) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userIDStr := r.Header.Get("X-User-ID")
			if userIDStr == "" {
				WriteJSONError(w, http.StatusUnauthorized, "X-User-ID header is missing")
				return
			}

			userID, err := uuid.Parse(userIDStr)
			if err != nil {
				WriteJSONError(w, http.StatusUnauthorized, "Invalid X-User-ID header format")
				return
			}

			sessions.Session(userID, r.Header.Get("X-User-Phone"))

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
