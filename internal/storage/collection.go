// internal/storage/collection.go
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/Annany2002/projecthub-backend/internal/core"
)

// Pagination is the page metadata returned with every listing.
type Pagination struct {
	CurrentPage     int   `json:"currentPage"`
	TotalPages      int   `json:"totalPages"`
	TotalRecords    int64 `json:"totalRecords"`
	Limit           int   `json:"limit"`
	Offset          int   `json:"offset"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// NewPagination derives page metadata. totalPages = ceil(total/limit).
func NewPagination(total int64, page, limit, offset int) Pagination {
	totalPages := 0
	if limit > 0 {
		pages := total / int64(limit)
		if total%int64(limit) != 0 {
			pages++
		}
		totalPages = int(pages)
	}
	return Pagination{
		CurrentPage:     page,
		TotalPages:      totalPages,
		TotalRecords:    total,
		Limit:           limit,
		Offset:          offset,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}

// Page is one page of rows plus its metadata and the effective filters.
type Page[T any] struct {
	Rows       []T
	Pagination Pagination
	Filters    core.Filters
}

// ListPage runs the data and count queries for spec concurrently against
// table. Both share the same WHERE text and bound values. If either fails the
// other is cancelled and the caller gets ErrStorage.
func ListPage[T any](ctx context.Context, db *sqlx.DB, table string, columns []string, spec *core.QuerySpec) (*Page[T], error) {
	where := spec.Where()

	dataSQL := fmt.Sprintf("SELECT %s FROM %s %s %s LIMIT :limit OFFSET :offset",
		strings.Join(columns, ", "), table, where, spec.OrderBy())
	dataArgs := make(map[string]interface{}, len(spec.Args)+2)
	for k, v := range spec.Args {
		dataArgs[k] = v
	}
	dataArgs["limit"] = spec.Limit
	dataArgs["offset"] = spec.Offset

	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", table, where)

	dataQuery, dataBound, err := db.BindNamed(dataSQL, dataArgs)
	if err != nil {
		return nil, storageFault("bind list query", err)
	}
	countQuery, countBound, err := db.BindNamed(countSQL, spec.Args)
	if err != nil {
		return nil, storageFault("bind count query", err)
	}

	var rows []T
	var total int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return db.SelectContext(gctx, &rows, dataQuery, dataBound...)
	})
	g.Go(func() error {
		return db.GetContext(gctx, &total, countQuery, countBound...)
	})
	if err := g.Wait(); err != nil {
		return nil, storageFault("list "+table, err)
	}
	if rows == nil {
		rows = []T{}
	}

	return &Page[T]{
		Rows:       rows,
		Pagination: NewPagination(total, spec.Page, spec.Limit, spec.Offset),
		Filters:    spec.Filters,
	}, nil
}
