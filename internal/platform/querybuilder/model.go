package querybuilder

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// modelColumn is one exported struct field tagged `db:"name[,option...]"`.
// Options: insertonly (never overwritten by UpsertModel) and keep (an
// incoming NULL keeps the stored value).
type modelColumn struct {
	name       string
	value      any
	insertOnly bool
	keep       bool
}

// InsertModels builds one multi-row insert. Every row must share a column
// layout, which holds for a slice of one struct type.
func InsertModels[T any](table string, rows []T, suffix string) (string, []any, error) {
	if len(rows) == 0 {
		return "", nil, fmt.Errorf("insert requires at least one row")
	}
	builder := InsertInto(table)
	for i, row := range rows {
		cols, err := modelColumns(row)
		if err != nil {
			return "", nil, err
		}
		if i == 0 {
			builder.Columns(columnNames(cols)...)
		}
		builder.Values(columnValues(cols)...)
	}
	return builder.Suffix(suffix).ToSQL()
}

// UpsertModel inserts model and, on conflict over the given key columns,
// overwrites every other column not tagged insertonly.
func UpsertModel(table string, model any, conflict ...string) (string, []any, error) {
	if len(conflict) == 0 {
		return "", nil, fmt.Errorf("upsert requires conflict columns")
	}
	cols, err := modelColumns(model)
	if err != nil {
		return "", nil, err
	}

	var sets []string
	for _, c := range cols {
		if c.insertOnly || slices.Contains(conflict, c.name) {
			continue
		}
		if c.keep {
			sets = append(sets, fmt.Sprintf("%s = COALESCE(EXCLUDED.%s, %s.%s)", c.name, c.name, table, c.name))
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", c.name, c.name))
	}

	suffix := "ON CONFLICT (" + strings.Join(conflict, ", ") + ") DO NOTHING"
	if len(sets) > 0 {
		suffix = "ON CONFLICT (" + strings.Join(conflict, ", ") + ") DO UPDATE SET " + strings.Join(sets, ", ")
	}
	return insertColumns(table, cols).Suffix(suffix).ToSQL()
}

func insertColumns(table string, cols []modelColumn) *InsertBuilder {
	return InsertInto(table).Columns(columnNames(cols)...).Values(columnValues(cols)...)
}

func columnNames(cols []modelColumn) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.name
	}
	return out
}

func columnValues(cols []modelColumn) []any {
	out := make([]any, len(cols))
	for i, c := range cols {
		out[i] = c.value
	}
	return out
}

func modelColumns(model any) ([]modelColumn, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be struct, got %s", value.Kind())
	}

	typ := value.Type()
	cols := make([]modelColumn, 0, typ.NumField())
	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(field.Tag.Get("db"), ",")
		name = strings.TrimSpace(name)
		if name == "" || name == "-" {
			continue
		}
		col := modelColumn{name: name, value: value.Field(i).Interface()}
		for _, opt := range strings.Split(opts, ",") {
			switch strings.TrimSpace(opt) {
			case "insertonly":
				col.insertOnly = true
			case "keep":
				col.keep = true
			}
		}
		cols = append(cols, col)
	}

	if len(cols) == 0 {
		return nil, fmt.Errorf("model has no db columns")
	}
	return cols, nil
}
