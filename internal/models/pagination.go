package models

// PaginationMeta describes one page of a listing.
type PaginationMeta struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNext      bool `json:"hasNext"`
	HasPrevious  bool `json:"hasPrevious"`
}

// NewPaginationMeta computes page counts for total items split into pages of limit.
func NewPaginationMeta(page, limit, total int) PaginationMeta {
	if limit < 1 {
		limit = 1
	}
	if page < 1 {
		page = 1
	}
	pages := (total + limit - 1) / limit
	return PaginationMeta{
		CurrentPage:  page,
		TotalPages:   pages,
		TotalItems:   total,
		ItemsPerPage: limit,
		HasNext:      page < pages,
		HasPrevious:  page > 1,
	}
}
