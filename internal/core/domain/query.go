package domain

import (
	"maps"
	"net/url"
	"strconv"
)

// SortOrder - направление сортировки.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Query описывает, какой срез коллекции нужен пользователю:
// страница, размер страницы, сортировка, поиск и именованные фильтры.
// Значение иммутабельно: все With*-методы возвращают копию.
type Query struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder SortOrder
	Search    string
	Filters   map[string]string
}

// QueryTransition - одно изменение дескриптора (смена страницы, фильтра и т.д.).
type QueryTransition func(Query) Query

// DefaultQuery возвращает дескриптор по умолчанию: первая страница,
// самые свежие объекты сверху.
func DefaultQuery() Query {
	return Query{
		Page:      1,
		Limit:     10,
		SortBy:    "created_at",
		SortOrder: SortDesc,
	}
}

// Clone возвращает копию дескриптора с собственной картой фильтров,
// чтобы транзишены и снапшоты не делили состояние между собой.
func (q Query) Clone() Query {
	q.Filters = maps.Clone(q.Filters)
	return q
}

// WithPage меняет номер страницы. Единственный транзишен, который
// НЕ сбрасывает страницу на первую.
func (q Query) WithPage(page int) Query {
	next := q.Clone()
	if page < 1 {
		page = 1
	}
	next.Page = page
	return next
}

// WithLimit меняет размер страницы и сбрасывает страницу на первую.
func (q Query) WithLimit(limit int) Query {
	next := q.Clone()
	if limit > 0 {
		next.Limit = limit
	}
	next.Page = 1
	return next
}

// WithSort меняет сортировку и сбрасывает страницу на первую.
func (q Query) WithSort(sortBy string, order SortOrder) Query {
	next := q.Clone()
	next.SortBy = sortBy
	next.SortOrder = order
	next.Page = 1
	return next
}

// WithSearch меняет строку поиска и сбрасывает страницу на первую.
// Пустая строка означает "без поиска".
func (q Query) WithSearch(search string) Query {
	next := q.Clone()
	next.Search = search
	next.Page = 1
	return next
}

// WithFilter устанавливает именованный фильтр и сбрасывает страницу на первую.
// Пустое значение удаляет фильтр.
func (q Query) WithFilter(name, value string) Query {
	next := q.Clone()
	if value == "" {
		delete(next.Filters, name)
	} else {
		if next.Filters == nil {
			next.Filters = make(map[string]string, 1)
		}
		next.Filters[name] = value
	}
	next.Page = 1
	return next
}

// IsNewestFirst сообщает, отсортирована ли коллекция "самые свежие сверху".
// Только в этом случае оптимистичный prepend после создания корректен.
func (q Query) IsNewestFirst() bool {
	return q.SortBy == "created_at" && q.SortOrder == SortDesc
}

// Values сериализует дескриптор в query-параметры для удаленного сервиса.
// Пустой поиск и пустые фильтры не передаются; page/limit/sort_by/sort_order
// передаются всегда.
func (q Query) Values() url.Values {
	values := url.Values{}
	values.Set("page", strconv.Itoa(q.Page))
	values.Set("limit", strconv.Itoa(q.Limit))
	values.Set("sort_by", q.SortBy)
	values.Set("sort_order", string(q.SortOrder))
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	for name, value := range q.Filters {
		if value != "" {
			values.Set(name, value)
		}
	}
	return values
}
