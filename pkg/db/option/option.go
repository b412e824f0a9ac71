package option

import (
	"fmt"
	"strings"

	"creatorplane/pkg/db/pagination"

	"gorm.io/gorm"
)

// QueryOption mutates the gorm query before it is executed.
type QueryOption func(tx *gorm.DB) *gorm.DB

type QuerySortBy struct {
	SortBy  string
	OrderBy string
	// Allow whitelists sortable columns. Unlisted columns fall back to created_at.
	Allow map[string]bool
}

func WithSortBy(sort QuerySortBy) QueryOption {
	return func(tx *gorm.DB) *gorm.DB {
		column := sort.SortBy
		if column == "" || (sort.Allow != nil && !sort.Allow[column]) {
			column = "created_at"
		}

		order := "asc"
		if strings.EqualFold(sort.OrderBy, "desc") {
			order = "desc"
		}

		return tx.Order(fmt.Sprintf("%s %s", column, order))
	}
}

func ApplyPagination(p pagination.Pagination) QueryOption {
	return func(tx *gorm.DB) *gorm.DB {
		limit := p.Limit
		if limit <= 0 {
			limit = 10
		}

		if p.Cursor != "" {
			if cursor, err := pagination.DecodeCursor(p.Cursor); err == nil && cursor.CreatedAt != "" {
				tx = tx.Where("created_at < ?", cursor.CreatedAt)
			}
		}

		// fetch one extra row so the caller can detect has_more
		return tx.Limit(limit + 1)
	}
}
