package gateway

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Memory is an in-process Gateway. Only registered tables exist; any other
// table fails with CodeUndefinedTable like an unmigrated database would.
type Memory struct {
	mu     sync.RWMutex
	tables map[string][]Row
	now    func() time.Time
}

func NewMemory(tables ...string) *Memory {
	if len(tables) == 0 {
		for name := range Schema {
			tables = append(tables, name)
		}
	}
	m := &Memory{tables: make(map[string][]Row, len(tables)), now: time.Now}
	for _, name := range tables {
		m.tables[name] = nil
	}
	return m
}

// Drop removes a table so later calls see it as not provisioned.
func (m *Memory) Drop(table string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tables, table)
}

func (m *Memory) Select(_ context.Context, table string, q Query) ([]Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows, ok := m.tables[table]
	if !ok {
		return nil, undefinedTable(table)
	}

	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if matches(r, q.Filters) {
			out = append(out, r.clone())
		}
	}
	if len(q.Order) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			for _, o := range q.Order {
				c := compare(out[i][o.Column], out[j][o.Column])
				if c == 0 {
					continue
				}
				if o.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *Memory) Insert(_ context.Context, table string, row Row) (Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tables[table]; !ok {
		return nil, undefinedTable(table)
	}
	for c := range row {
		if !hasColumn(table, c) {
			return nil, &DataAccessError{Code: "42703", Message: fmt.Sprintf("column %q does not exist", c), Table: table}
		}
	}
	stored := row.clone()
	if stored.String("id") == "" {
		stored["id"] = uuid.NewString()
	}
	if _, ok := stored["created_at"]; !ok {
		stored["created_at"] = m.now().UTC()
	}
	m.tables[table] = append(m.tables[table], stored)
	return stored.clone(), nil
}

func (m *Memory) Update(_ context.Context, table, id string, patch Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.tables[table]
	if !ok {
		return undefinedTable(table)
	}
	for _, r := range rows {
		if r.String("id") != id {
			continue
		}
		for c, v := range patch {
			if c == "id" {
				continue
			}
			r[c] = v
		}
		return nil
	}
	return ErrNotFound
}

func (m *Memory) Delete(_ context.Context, table, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.tables[table]
	if !ok {
		return undefinedTable(table)
	}
	for i, r := range rows {
		if r.String("id") == id {
			m.tables[table] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func undefinedTable(table string) error {
	return &DataAccessError{
		Code:    CodeUndefinedTable,
		Message: fmt.Sprintf("relation %q does not exist", table),
		Table:   table,
	}
}

func matches(r Row, filters []Filter) bool {
	for _, f := range filters {
		if len(f.Columns) == 0 {
			return false
		}
		switch f.Op {
		case OpEq:
			if compare(r[f.Columns[0]], f.Value) != 0 {
				return false
			}
		case OpLt:
			if r[f.Columns[0]] == nil || compare(r[f.Columns[0]], f.Value) >= 0 {
				return false
			}
		case OpIn:
			values, _ := f.Value.([]string)
			got := r.String(f.Columns[0])
			found := false
			for _, v := range values {
				if v == got {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case OpSearch:
			term := strings.ToLower(fmt.Sprint(f.Value))
			found := false
			for _, c := range f.Columns {
				if strings.Contains(strings.ToLower(r.String(c)), term) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// compare orders two column values. NULL sorts first.
func compare(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}

	row := Row{"a": a, "b": b}
	switch a.(type) {
	case time.Time, *time.Time:
		ta, tb := row.Time("a"), row.Time("b")
		return ta.Compare(tb)
	case decimal.Decimal, *decimal.Decimal, int, int32, int64, float32, float64:
		return row.Decimal("a").Cmp(row.Decimal("b"))
	}
	return strings.Compare(row.String("a"), row.String("b"))
}
