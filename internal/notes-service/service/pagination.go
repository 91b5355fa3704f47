package service

import "github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/database"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NormalizePage applies the defaults (1, 20) and caps the size at 100.
func NormalizePage(page, limit int) database.Page {
	if page < 1 {
		page = 1
	}
	if page > database.MaxPageNumber {
		page = database.MaxPageNumber
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return database.Page{Number: page, Size: limit}
}

func newPagination(p database.Page, total int64) Pagination {
	pages := 0
	if p.Size > 0 {
		pages = int((total + int64(p.Size) - 1) / int64(p.Size))
	}
	return Pagination{Page: p.Number, Limit: p.Size, Total: total, TotalPages: pages}
}
