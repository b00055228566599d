package dbx

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/satellite/internal/common"
)

// OneRowAffected checks the result of a guarded write. Zero rows means the
// guard (usually a version predicate) did not hold.
func OneRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrVersionConflict
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// NullInt64 converts an optional unsigned value for a nullable column.
func NullInt64[T uint32 | uint64](v *T) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

// FromNullInt64 is the inverse of NullInt64.
func FromNullInt64[T uint32 | uint64](v sql.NullInt64) *T {
	if !v.Valid {
		return nil
	}
	out := T(v.Int64)
	return &out
}

// NullString converts an optional string for a nullable column.
func NullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

// FromNullString is the inverse of NullString.
func FromNullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

// NullTime converts an optional timestamp for a nullable column.
func NullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}

// FromNullTime is the inverse of NullTime.
func FromNullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
