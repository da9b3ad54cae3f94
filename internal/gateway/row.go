package gateway

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// String returns the column as text. UUID values are rendered in canonical
// form; NULL becomes "".
func (r Row) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case [16]byte:
		return uuid.UUID(v).String()
	case uuid.UUID:
		return v.String()
	case pgtype.UUID:
		if !v.Valid {
			return ""
		}
		return uuid.UUID(v.Bytes).String()
	case *string:
		if v == nil {
			return ""
		}
		return *v
	default:
		return fmt.Sprint(v)
	}
}

func (r Row) StringPtr(key string) *string {
	if v, ok := r[key]; !ok || v == nil {
		return nil
	}
	if p, ok := r[key].(*string); ok {
		return p
	}
	value := r.String(key)
	return &value
}

// Decimal decodes a numeric column. NULL and unparseable values are zero.
func (r Row) Decimal(key string) decimal.Decimal {
	switch v := r[key].(type) {
	case decimal.Decimal:
		return v
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero
		}
		return *v
	case pgtype.Numeric:
		if !v.Valid || v.NaN || v.InfinityModifier != pgtype.Finite || v.Int == nil {
			return decimal.Zero
		}
		return decimal.NewFromBigInt(v.Int, v.Exp)
	case float64:
		return decimal.NewFromFloat(v)
	case float32:
		return decimal.NewFromFloat32(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

func (r Row) Time(key string) time.Time {
	if t := r.TimePtr(key); t != nil {
		return *t
	}
	return time.Time{}
}

func (r Row) TimePtr(key string) *time.Time {
	switch v := r[key].(type) {
	case time.Time:
		return &v
	case *time.Time:
		return v
	case pgtype.Date:
		if !v.Valid {
			return nil
		}
		t := v.Time
		return &t
	case pgtype.Timestamptz:
		if !v.Valid {
			return nil
		}
		t := v.Time
		return &t
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
			if parsed, err := time.Parse(layout, v); err == nil {
				return &parsed
			}
		}
	}
	return nil
}

func (r Row) Value(key string) any {
	return r[key]
}

func (r Row) clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
