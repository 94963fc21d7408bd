package rest

import (
	"console-service/internal/core/domain"
	"console-service/internal/core/store"
)

func toQueryResponse(q domain.Query) QueryResponse {
	return QueryResponse{
		Page:      q.Page,
		Limit:     q.Limit,
		SortBy:    q.SortBy,
		SortOrder: string(q.SortOrder),
		Search:    q.Search,
		Filters:   q.Filters,
	}
}

func toPropertyResponse(p domain.OwnedProperty) PropertyResponse {
	return PropertyResponse{
		ID:                p.ID.String(),
		Title:             p.Title,
		Description:       p.Description,
		Category:          p.Category,
		DealType:          p.DealType,
		PriceUSD:          p.PriceUSD,
		Address:           p.Address,
		Region:            p.Region,
		CityOrDistrict:    p.CityOrDistrict,
		Images:            p.Images,
		Status:            p.Status,
		ModerationComment: p.ModerationComment,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func toListingResponse(l domain.DiscoveredListing) DiscoveredListingResponse {
	return DiscoveredListingResponse{
		ID:             l.ID.String(),
		Source:         l.Source,
		AdLink:         l.AdLink,
		Title:          l.Title,
		Description:    l.Description,
		Category:       l.Category,
		DealType:       l.DealType,
		PriceUSD:       l.PriceUSD,
		Address:        l.Address,
		Region:         l.Region,
		CityOrDistrict: l.CityOrDistrict,
		Images:         l.Images,
		ListTime:       l.ListTime,
	}
}

func toPropertiesSnapshotResponse(s *store.Snapshot[domain.OwnedProperty]) PropertiesSnapshotResponse {
	items := make([]PropertyResponse, 0, len(s.Items))
	for _, p := range s.Items {
		items = append(items, toPropertyResponse(p))
	}
	return PropertiesSnapshotResponse{
		Items:        items,
		Query:        toQueryResponse(s.Query),
		Pagination:   PaginationResponse{Total: s.Pagination.Total, Pages: s.Pagination.Pages},
		Status:       string(s.Status),
		ErrorMessage: s.ErrorMessage,
	}
}

func toDiscoveredSnapshotResponse(s *store.Snapshot[domain.DiscoveredListing]) DiscoveredSnapshotResponse {
	items := make([]DiscoveredListingResponse, 0, len(s.Items))
	for _, l := range s.Items {
		items = append(items, toListingResponse(l))
	}
	return DiscoveredSnapshotResponse{
		Items:        items,
		Query:        toQueryResponse(s.Query),
		Pagination:   PaginationResponse{Total: s.Pagination.Total, Pages: s.Pagination.Pages},
		Status:       string(s.Status),
		ErrorMessage: s.ErrorMessage,
	}
}

// toTransitions переводит частичное изменение дескриптора в набор доменных
// транзишенов. Порядок важен: сначала поля, сбрасывающие страницу, затем
// явный номер страницы - так "страница с новым поисковым запросом"
// означает именно запрошенную страницу, а не сброшенную.
func toTransitions(req QueryChangeRequest) []domain.QueryTransition {
	var transitions []domain.QueryTransition

	if req.Limit != nil {
		limit := *req.Limit
		transitions = append(transitions, func(q domain.Query) domain.Query {
			return q.WithLimit(limit)
		})
	}
	if req.SortBy != nil || req.SortOrder != nil {
		sortBy := req.SortBy
		sortOrder := req.SortOrder
		transitions = append(transitions, func(q domain.Query) domain.Query {
			by := q.SortBy
			order := q.SortOrder
			if sortBy != nil {
				by = *sortBy
			}
			if sortOrder != nil {
				order = domain.SortOrder(*sortOrder)
			}
			return q.WithSort(by, order)
		})
	}
	if req.Search != nil {
		search := *req.Search
		transitions = append(transitions, func(q domain.Query) domain.Query {
			return q.WithSearch(search)
		})
	}
	for key, value := range req.Filters {
		key := key
		filterValue := ""
		if value != nil {
			filterValue = *value
		}
		transitions = append(transitions, func(q domain.Query) domain.Query {
			return q.WithFilter(key, filterValue)
		})
	}
	if req.Page != nil {
		page := *req.Page
		transitions = append(transitions, func(q domain.Query) domain.Query {
			return q.WithPage(page)
		})
	}

	return transitions
}
