package gateway

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Select(ctx context.Context, table string, q Query) ([]Row, error) {
	sql, args, err := buildSelect(table, q)
	if err != nil {
		return nil, err
	}
	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, translate(table, err)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, translate(table, err)
	}
	out := make([]Row, 0, len(maps))
	for _, m := range maps {
		out = append(out, Row(m))
	}
	return out, nil
}

func (p *Postgres) Insert(ctx context.Context, table string, row Row) (Row, error) {
	sql, args, err := buildInsert(table, row)
	if err != nil {
		return nil, err
	}
	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, translate(table, err)
	}
	inserted, err := pgx.CollectExactlyOneRow(rows, pgx.RowToMap)
	if err != nil {
		return nil, translate(table, err)
	}
	return Row(inserted), nil
}

func (p *Postgres) Update(ctx context.Context, table, id string, patch Row) error {
	if len(patch) == 0 {
		return nil
	}
	sql, args, err := buildUpdate(table, id, patch)
	if err != nil {
		return err
	}
	cmd, err := p.pool.Exec(ctx, sql, args...)
	if err != nil {
		return translate(table, err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, table, id string) error {
	if _, ok := Schema[table]; !ok {
		return fmt.Errorf("unknown table %q", table)
	}
	cmd, err := p.pool.Exec(ctx, "DELETE FROM "+quote(table)+" WHERE id = $1", id)
	if err != nil {
		return translate(table, err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func translate(table string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &DataAccessError{Code: pgErr.Code, Message: pgErr.Message, Table: table, err: err}
	}
	return &DataAccessError{Message: err.Error(), Table: table, err: err}
}

func quote(identifier string) string {
	return pgx.Identifier{identifier}.Sanitize()
}

func buildSelect(table string, q Query) (string, []any, error) {
	if _, ok := Schema[table]; !ok {
		return "", nil, fmt.Errorf("unknown table %q", table)
	}

	var (
		sb    strings.Builder
		args  []any
		where []string
	)
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(quote(table))

	for _, f := range q.Filters {
		if len(f.Columns) == 0 {
			return "", nil, fmt.Errorf("filter on %s without column", table)
		}
		for _, c := range f.Columns {
			if !hasColumn(table, c) {
				return "", nil, fmt.Errorf("unknown column %s.%s", table, c)
			}
		}
		args = append(args, sqlValue(f.Value))
		n := len(args)
		switch f.Op {
		case OpEq:
			where = append(where, fmt.Sprintf("%s = $%d", quote(f.Columns[0]), n))
		case OpIn:
			where = append(where, fmt.Sprintf("%s::text = ANY($%d)", quote(f.Columns[0]), n))
		case OpLt:
			where = append(where, fmt.Sprintf("%s < $%d", quote(f.Columns[0]), n))
		case OpSearch:
			args[n-1] = likeEscaper.Replace(fmt.Sprint(f.Value))
			parts := make([]string, 0, len(f.Columns))
			for _, c := range f.Columns {
				parts = append(parts, fmt.Sprintf(`%s::text ILIKE '%%' || $%d || '%%' ESCAPE '\'`, quote(c), n))
			}
			where = append(where, "("+strings.Join(parts, " OR ")+")")
		default:
			return "", nil, fmt.Errorf("unsupported filter op %q", f.Op)
		}
	}
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}

	if len(q.Order) > 0 {
		parts := make([]string, 0, len(q.Order))
		for _, o := range q.Order {
			if !hasColumn(table, o.Column) {
				return "", nil, fmt.Errorf("unknown column %s.%s", table, o.Column)
			}
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			parts = append(parts, quote(o.Column)+" "+dir)
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(parts, ", "))
	}

	if q.Limit > 0 {
		args = append(args, q.Limit)
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}
	return sb.String(), args, nil
}

func buildInsert(table string, row Row) (string, []any, error) {
	if _, ok := Schema[table]; !ok {
		return "", nil, fmt.Errorf("unknown table %q", table)
	}
	columns := sortedColumns(row)
	if len(columns) == 0 {
		return "INSERT INTO " + quote(table) + " DEFAULT VALUES RETURNING *", nil, nil
	}

	names := make([]string, 0, len(columns))
	params := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	for i, c := range columns {
		if !hasColumn(table, c) {
			return "", nil, fmt.Errorf("unknown column %s.%s", table, c)
		}
		names = append(names, quote(c))
		params = append(params, fmt.Sprintf("$%d", i+1))
		args = append(args, sqlValue(row[c]))
	}
	sql := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		quote(table),
		strings.Join(names, ", "),
		strings.Join(params, ", "),
	)
	return sql, args, nil
}

func buildUpdate(table, id string, patch Row) (string, []any, error) {
	if _, ok := Schema[table]; !ok {
		return "", nil, fmt.Errorf("unknown table %q", table)
	}
	columns := sortedColumns(patch)
	sets := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns)+1)
	for i, c := range columns {
		if c == "id" || !hasColumn(table, c) {
			return "", nil, fmt.Errorf("column %s.%s cannot be updated", table, c)
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", quote(c), i+1))
		args = append(args, sqlValue(patch[c]))
	}
	args = append(args, id)
	sql := fmt.Sprintf(
		"UPDATE %s SET %s WHERE id = $%d",
		quote(table),
		strings.Join(sets, ", "),
		len(args),
	)
	return sql, args, nil
}

// likeEscaper makes LIKE wildcards in a search term match literally, as the
// memory backend does.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// sqlValue sends decimals in text form so NUMERIC columns keep full precision.
func sqlValue(v any) any {
	switch d := v.(type) {
	case decimal.Decimal:
		return d.String()
	case *decimal.Decimal:
		if d == nil {
			return nil
		}
		return d.String()
	}
	return v
}

func sortedColumns(row Row) []string {
	columns := make([]string, 0, len(row))
	for c := range row {
		columns = append(columns, c)
	}
	sort.Strings(columns)
	return columns
}
