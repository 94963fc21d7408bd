package domain

// Pagination - метаданные пагинации, которые присылает удаленный сервис.
// Хранится в кэше рядом со страницей и пересчитывается локально только
// после мутаций, меняющих Total.
type Pagination struct {
	Total int
	Pages int
}

// PagesFor считает количество страниц как ceil(total/limit).
func PagesFor(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Recompute пересчитывает Pages после локального изменения Total.
func (p *Pagination) Recompute(limit int) {
	if p.Total < 0 {
		p.Total = 0
	}
	p.Pages = PagesFor(p.Total, limit)
}
