package store

import (
	"sync"

	"console-service/internal/core/domain"

	"github.com/google/uuid"
)

// Session - пара кэшей одной пользовательской сессии консоли:
// собственные объявления и объявления, найденные парсерами по телефону.
// Кэши полностью независимы и никогда не смешиваются.
type Session struct {
	UserID     uuid.UUID
	Phone      string
	Properties *Collection[domain.OwnedProperty]
	Discovered *Collection[domain.DiscoveredListing]
}

// Registry владеет всеми сессиями процесса. Создается один раз при старте
// приложения и живет до его завершения; сессии создаются лениво при первом
// обращении пользователя.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Session возвращает сессию пользователя, создавая ее при необходимости.
func (r *Registry) Session(userID uuid.UUID, phone string) *Session {
	r.mu.RLock()
	session, found := r.sessions[userID]
	r.mu.RUnlock()
	if found {
		return session
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Повторная проверка: другой запрос мог успеть создать сессию.
	if session, found := r.sessions[userID]; found {
		return session
	}

	session = &Session{
		UserID: userID,
		Phone:  phone,
		Properties: NewCollection(domain.DefaultQuery(), func(p domain.OwnedProperty) string {
			return p.ID.String()
		}),
		Discovered: NewCollection(domain.DefaultQuery().WithSort("list_time", domain.SortDesc), func(l domain.DiscoveredListing) string {
			return l.ID.String()
		}),
	}
	r.sessions[userID] = session
	return session
}

// SessionsByPhone возвращает сессии с указанным номером телефона.
// Используется consumer-ом событий парсеров, чтобы обновить кэш найденных
// объявлений всем затронутым пользователям.
func (r *Registry) SessionsByPhone(phone string) []*Session {
	if phone == "" {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*Session
	for _, session := range r.sessions {
		if session.Phone == phone {
			matched = append(matched, session)
		}
	}
	return matched
}
