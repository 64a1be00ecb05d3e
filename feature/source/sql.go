package source

import (
	"context"
	"fmt"
	"strings"

	"datarec/core/database"
	"datarec/core/frame"

	"gorm.io/gorm"
)

// SQL reads the result of a query, or a whole table, through gorm.
type SQL struct {
	db   *gorm.DB
	Spec Spec
}

// NewSQL creates a sql source on db.
func NewSQL(db *gorm.DB, spec Spec) *SQL {
	return &SQL{db: db, Spec: spec}
}

// Load implements Source.
func (s *SQL) Load(ctx context.Context) (*frame.Table, error) {
	db := s.db.WithContext(ctx)
	query := s.Spec.Query
	kinds := make(map[string]frame.Kind, len(s.Spec.Types))
	if s.Spec.Table != "" {
		cols, err := database.GetTableColumns(db, s.Spec.Table)
		if err != nil {
			return nil, err
		}
		quoted := make([]string, len(cols))
		for i, c := range cols {
			quoted[i] = database.QuoteIdentifier(db, c.Field)
			if k := kindOfColumnType(c.Type); k != "" {
				kinds[c.Field] = k
			}
		}
		query = fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), database.QuoteIdentifier(db, s.Spec.Table))
	}
	for col, k := range s.Spec.Types {
		kinds[col] = k
	}

	rows, err := db.Raw(query).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", err)
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}
	if err := checkTypes(header, s.Spec.Types); err != nil {
		return nil, err
	}

	var records [][]any
	for rows.Next() {
		raw := make([]any, len(header))
		ptrs := make([]any, len(header))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row %d: %w", len(records)+1, err)
		}
		rec := make([]any, len(header))
		for j, v := range raw {
			c, err := frame.Coerce(kinds[header[j]], v, s.Spec.TimeLayout)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", len(records)+1, header[j], err)
			}
			rec[j] = c
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return frame.FromRecords(header, records, s.Spec.Key...)
}

// kindOfColumnType maps a declared column type to a value kind. Unknown
// types keep the driver's value.
func kindOfColumnType(t string) frame.Kind {
	t = strings.ToLower(t)
	switch {
	case strings.HasPrefix(t, "tinyint(1)"), strings.HasPrefix(t, "bool"):
		return frame.KindBool
	case strings.Contains(t, "int"):
		return frame.KindInt
	case strings.HasPrefix(t, "real"), strings.HasPrefix(t, "double"), strings.HasPrefix(t, "float"),
		strings.HasPrefix(t, "decimal"), strings.HasPrefix(t, "numeric"):
		return frame.KindFloat
	case strings.HasPrefix(t, "date"), strings.HasPrefix(t, "timestamp"):
		return frame.KindTime
	case strings.Contains(t, "char"), strings.Contains(t, "text"):
		return frame.KindString
	}
	return ""
}
