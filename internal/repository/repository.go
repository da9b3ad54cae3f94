package repository

import (
	"context"
	"errors"
	"fmt"

	"contracting/internal/gateway"
)

// ErrNotFound is gateway.ErrNotFound so callers can match either.
var ErrNotFound = gateway.ErrNotFound

// Repository decodes gateway rows into domain records. Nothing above this
// layer handles untyped rows.
type Repository struct {
	gw gateway.Gateway
}

func New(gw gateway.Gateway) *Repository {
	return &Repository{gw: gw}
}

func selectAll[T any](ctx context.Context, gw gateway.Gateway, table string, q gateway.Query, decode func(gateway.Row) T) ([]T, error) {
	rows, err := gw.Select(ctx, table, q)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		out = append(out, decode(row))
	}
	return out, nil
}

func selectByID[T any](ctx context.Context, gw gateway.Gateway, table, id string, decode func(gateway.Row) T) (*T, error) {
	rows, err := gw.Select(ctx, table, gateway.Query{
		Filters: []gateway.Filter{gateway.Eq("id", id)},
		Limit:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", table, id, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	v := decode(rows[0])
	return &v, nil
}

func insertOne[T any](ctx context.Context, gw gateway.Gateway, table string, row gateway.Row, decode func(gateway.Row) T) (T, error) {
	inserted, err := gw.Insert(ctx, table, row)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("create %s: %w", table, err)
	}
	return decode(inserted), nil
}

func (r *Repository) patch(ctx context.Context, table, id string, row gateway.Row) error {
	if len(row) == 0 {
		return nil
	}
	if err := r.gw.Update(ctx, table, id, row); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("update %s %s: %w", table, id, err)
	}
	return nil
}

func (r *Repository) remove(ctx context.Context, table, id string) error {
	if err := r.gw.Delete(ctx, table, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete %s %s: %w", table, id, err)
	}
	return nil
}

// optional unwraps a nullable field so the row carries either a value or NULL.
func optional[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// clearable maps a blank patched value to NULL.
func clearable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func byParent(column string, ids []string) []gateway.Filter {
	switch len(ids) {
	case 0:
		return nil
	case 1:
		return []gateway.Filter{gateway.Eq(column, ids[0])}
	default:
		return []gateway.Filter{gateway.In(column, ids)}
	}
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}
