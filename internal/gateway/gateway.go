package gateway

import (
	"context"
	"errors"
	"fmt"
)

// CodeUndefinedTable is the SQLSTATE reported when a table has not been
// created yet.
const CodeUndefinedTable = "42P01"

var ErrNotFound = errors.New("not found")

type Row map[string]any

type Op string

const (
	OpEq     Op = "eq"
	OpIn     Op = "in"
	OpLt     Op = "lt"
	OpSearch Op = "search"
)

// Filter is one condition of a Query. OpSearch matches when any of Columns
// contains Value case-insensitively; the other ops use Columns[0].
type Filter struct {
	Columns []string
	Op      Op
	Value   any
}

func Eq(column string, value any) Filter {
	return Filter{Columns: []string{column}, Op: OpEq, Value: value}
}

func In(column string, values []string) Filter {
	return Filter{Columns: []string{column}, Op: OpIn, Value: values}
}

func Lt(column string, value any) Filter {
	return Filter{Columns: []string{column}, Op: OpLt, Value: value}
}

func Search(term string, columns ...string) Filter {
	return Filter{Columns: columns, Op: OpSearch, Value: term}
}

type Order struct {
	Column string
	Desc   bool
}

func Asc(column string) Order  { return Order{Column: column} }
func Desc(column string) Order { return Order{Column: column, Desc: true} }

type Query struct {
	Filters []Filter
	Order   []Order
	Limit   int
}

// Gateway is table-level CRUD over the backing store. Implementations return
// *DataAccessError for store failures and ErrNotFound when Update or Delete
// matched no row.
type Gateway interface {
	Select(ctx context.Context, table string, q Query) ([]Row, error)
	Insert(ctx context.Context, table string, row Row) (Row, error)
	Update(ctx context.Context, table, id string, patch Row) error
	Delete(ctx context.Context, table, id string) error
}

type DataAccessError struct {
	Code    string
	Message string
	Table   string
	err     error
}

func (e *DataAccessError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%s: %s", e.Table, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Table, e.Message, e.Code)
}

func (e *DataAccessError) Unwrap() error { return e.err }

// IsNotProvisioned reports whether err means the table behind a feature does
// not exist in the database.
func IsNotProvisioned(err error) bool {
	var dae *DataAccessError
	return errors.As(err, &dae) && dae.Code == CodeUndefinedTable
}

// NotProvisionedTable returns the table named by a provisioning error.
func NotProvisionedTable(err error) string {
	var dae *DataAccessError
	if errors.As(err, &dae) && dae.Code == CodeUndefinedTable {
		return dae.Table
	}
	return ""
}
