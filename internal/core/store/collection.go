package store

import (
	"sync"

	"console-service/internal/core/domain"
)

// Status - состояние коллекции с точки зрения view.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusError   Status = "error"
)

// Snapshot - то, что view читает из коллекции: страница, дескриптор,
// пагинация и флаг загрузки/ошибки. Всегда копия, внутреннее состояние
// наружу не утекает.
type Snapshot[T any] struct {
	Items        []T
	Query        domain.Query
	Pagination   domain.Pagination
	Status       Status
	ErrorMessage string
}

// Collection - авторитетный кэш одной пагинированной коллекции.
// Все изменения дескриптора проходят через Transition/BeginRefresh,
// все записи страницы - через Commit/Fail/Apply*-методы оркестраторов.
//
// Версия дескриптора растет на каждом транзишене. Commit и Fail принимают
// версию, под которой был отправлен запрос: если к моменту ответа дескриптор
// успел измениться, устаревший ответ отбрасывается - последний дескриптор
// выигрывает.
type Collection[T any] struct {
	mu         sync.RWMutex
	items      []T
	query      domain.Query
	pagination domain.Pagination
	status     Status
	errMsg     string
	version    uint64

	// idOf извлекает идентификатор элемента для ApplyUpdated/ApplyDeleted.
	idOf func(T) string
}

// NewCollection создает пустую коллекцию с дескриптором по умолчанию.
func NewCollection[T any](initial domain.Query, idOf func(T) string) *Collection[T] {
	return &Collection[T]{
		query:  initial,
		status: StatusIdle,
		idOf:   idOf,
	}
}

// Snapshot возвращает копию текущего состояния коллекции.
func (c *Collection[T]) Snapshot() Snapshot[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	items := make([]T, len(c.items))
	copy(items, c.items)

	return Snapshot[T]{
		Items:        items,
		Query:        c.query.Clone(),
		Pagination:   c.pagination,
		Status:       c.status,
		ErrorMessage: c.errMsg,
	}
}

// Transition применяет изменения дескриптора, поднимает версию и помечает
// коллекцию загружающейся. Возвращает дескриптор и версию, под которыми
// оркестратор должен выполнить запрос.
//
// Здесь же централизованно ограничиваем номер страницы: если после мутаций
// страниц стало меньше, чем запрошено, берем последнюю существующую.
func (c *Collection[T]) Transition(transitions ...domain.QueryTransition) (domain.Query, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.query
	for _, apply := range transitions {
		next = apply(next)
	}
	if c.pagination.Pages > 0 && next.Page > c.pagination.Pages {
		next = next.WithPage(c.pagination.Pages)
	}

	c.query = next
	c.version++
	c.status = StatusLoading

	return c.query.Clone(), c.version
}

// BeginRefresh помечает коллекцию загружающейся без изменения дескриптора.
// Используется для повторной попытки после ошибки и для re-fetch после мутации.
func (c *Collection[T]) BeginRefresh() (domain.Query, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.status = StatusLoading
	return c.query.Clone(), c.version
}

// Query возвращает текущий дескриптор и его версию.
func (c *Collection[T]) Query() (domain.Query, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.query.Clone(), c.version
}

// Commit целиком заменяет страницу и пагинацию ответом сервера.
// Ответ, отправленный под устаревшей версией дескриптора, отбрасывается.
func (c *Collection[T]) Commit(version uint64, items []T, pagination domain.Pagination) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if version != c.version {
		return false
	}

	c.items = make([]T, len(items))
	copy(c.items, items)
	c.pagination = pagination
	c.status = StatusIdle
	c.errMsg = ""
	return true
}

// Fail переводит коллекцию в состояние ошибки, не трогая страницу и
// пагинацию: устаревшие, но валидные данные лучше пустого экрана.
func (c *Collection[T]) Fail(version uint64, message string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if version != c.version {
		return false
	}

	c.status = StatusError
	c.errMsg = message
	return true
}

// ApplyCreatedFirst оптимистично вставляет созданный элемент в начало
// страницы и пересчитывает пагинацию. Применяется только если дескриптор
// не менялся с начала мутации, открыта первая страница и сортировка
// "самые свежие сверху" - только тогда новый элемент гарантированно
// принадлежит началу видимой страницы. В остальных случаях возвращает
// false, и вызывающий делает полный re-fetch.
func (c *Collection[T]) ApplyCreatedFirst(version uint64, item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if version != c.version || c.query.Page != 1 || !c.query.IsNewestFirst() {
		return false
	}

	c.items = append([]T{item}, c.items...)
	c.pagination.Total++
	c.pagination.Recompute(c.query.Limit)
	c.status = StatusIdle
	c.errMsg = ""
	return true
}

// ApplyUpdated заменяет элемент на той же позиции страницы, если он на ней
// присутствует. Пересортировка и перефильтрация локально не выполняются -
// это работа следующего fetch.
func (c *Collection[T]) ApplyUpdated(item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.idOf(item)
	for i := range c.items {
		if c.idOf(c.items[i]) == id {
			c.items[i] = item
			return true
		}
	}
	return false
}

// ApplyDeleted убирает элемент со страницы, уменьшает Total и пересчитывает
// Pages. Второе возвращаемое значение сообщает, что текущая страница
// опустела при Page > 1 - тогда нужно запросить предыдущую страницу.
func (c *Collection[T]) ApplyDeleted(version uint64, id string) (removed bool, pageEmptied bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if version != c.version {
		return false, false
	}

	for i := range c.items {
		if c.idOf(c.items[i]) == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			removed = true
			break
		}
	}
	if !removed {
		return false, false
	}

	c.pagination.Total--
	c.pagination.Recompute(c.query.Limit)

	pageEmptied = len(c.items) == 0 && c.query.Page > 1
	return removed, pageEmptied
}
