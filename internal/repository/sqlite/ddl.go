// filepath: internal/repository/sqlite/ddl.go
package sqlite

import (
	"fmt"
	"strconv"
	"streamdb/internal/schema"
	"strings"
)

const metaTable = "_collections"

const metaSchema = `
	CREATE TABLE IF NOT EXISTS _collections (
		name TEXT PRIMARY KEY NOT NULL,
		definition TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
`

func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func literal(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// affinity maps a field kind to the SQLite column type.
func affinity(k schema.Kind) string {
	switch k {
	case schema.KindNumber:
		return "NUMERIC"
	case schema.KindBool:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

// conditions returns the CHECK terms enforcing a field's validator,
// without the NULL handling.
func conditions(f schema.Field) []string {
	col := quote(f.Name)
	var conds []string

	switch f.Kind {
	case schema.KindNumber:
		conds = append(conds, fmt.Sprintf("typeof(%s) IN ('integer', 'real')", col))
	case schema.KindBool:
		conds = append(conds, fmt.Sprintf("%s IN (0, 1)", col))
	case schema.KindTimestamp:
		conds = append(conds, fmt.Sprintf("typeof(%s) = 'text'", col), fmt.Sprintf("julianday(%s) IS NOT NULL", col))
	default:
		conds = append(conds, fmt.Sprintf("typeof(%s) = 'text'", col))
	}

	if f.MinLength != nil {
		conds = append(conds, fmt.Sprintf("length(%s) >= %d", col, *f.MinLength))
	}
	if f.Minimum != nil {
		conds = append(conds, fmt.Sprintf("%s >= %s", col, strconv.FormatFloat(*f.Minimum, 'f', -1, 64)))
	}
	if f.Pattern != "" {
		conds = append(conds, fmt.Sprintf("%s REGEXP %s", col, literal(f.Pattern)))
	}
	if len(f.Enum) > 0 {
		values := make([]string, len(f.Enum))
		for i, v := range f.Enum {
			values[i] = literal(v)
		}
		conds = append(conds, fmt.Sprintf("%s IN (%s)", col, strings.Join(values, ", ")))
	}
	return conds
}

func columnDefinition(f schema.Field) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s", quote(f.Name), affinity(f.Kind)))

	check := strings.Join(conditions(f), " AND ")
	if f.Required {
		sb.WriteString(" NOT NULL")
		sb.WriteString(fmt.Sprintf(" CHECK(%s)", check))
	} else {
		sb.WriteString(fmt.Sprintf(" CHECK(%s IS NULL OR (%s))", quote(f.Name), check))
	}
	return sb.String()
}

// createTableSQL renders the table enforcing the collection validator.
// The caller is expected to have validated the definition.
func createTableSQL(c schema.Collection) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("CREATE TABLE %s (\n", quote(c.Name)))
	sb.WriteString("\t_id TEXT PRIMARY KEY NOT NULL")
	for _, f := range c.Fields {
		sb.WriteString(",\n\t")
		sb.WriteString(columnDefinition(f))
	}
	sb.WriteString("\n);")
	return sb.String()
}

// indexName qualifies an index name with its table; SQLite index names
// share one namespace per database.
func indexName(collection, name string) string {
	return collection + "__" + name
}

// createIndexSQL renders an index. Text keys have no full-text
// equivalent here and become plain ascending keys.
func createIndexSQL(collection string, idx schema.Index) string {
	keys := make([]string, len(idx.Keys))
	for i, k := range idx.Keys {
		dir := "ASC"
		if k.Order == schema.Desc {
			dir = "DESC"
		}
		keys[i] = fmt.Sprintf("%s %s", quote(k.Field), dir)
	}
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s);",
		unique, quote(indexName(collection, idx.Name)), quote(collection), strings.Join(keys, ", "))
}
