package sqlite

import (
	"database/sql"
	"streamdb/internal/models"
	"streamdb/internal/schema"
	"time"
)

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// scanDocument reads the current row into a Document, decoding columns
// back into the Go types implied by the collection definition.
func scanDocument(rows *sql.Rows, def schema.Collection) (models.Document, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	values := make([]interface{}, len(columns))
	valuePtrs := make([]interface{}, len(columns))
	for i := range columns {
		valuePtrs[i] = &values[i]
	}

	if err := rows.Scan(valuePtrs...); err != nil {
		return nil, err
	}

	doc := make(models.Document)
	for i, col := range columns {
		val := values[i]
		if b, ok := val.([]byte); ok {
			val = string(b)
		}
		if val == nil {
			continue
		}
		if f, ok := def.Field(col); ok {
			val = decodeValue(f.Kind, val)
		}
		doc[col] = val
	}
	return doc, nil
}

func decodeValue(kind schema.Kind, val interface{}) interface{} {
	switch kind {
	case schema.KindBool:
		if n, ok := val.(int64); ok {
			return n != 0
		}
	case schema.KindTimestamp:
		if s, ok := val.(string); ok {
			if t, err := time.Parse(timeLayout, s); err == nil {
				return t
			}
		}
	}
	return val
}

// encodeValue converts a Go value to what the column stores.
func encodeValue(val interface{}) interface{} {
	switch v := val.(type) {
	case time.Time:
		return v.UTC().Format(timeLayout)
	case *time.Time:
		if v == nil {
			return nil
		}
		return v.UTC().Format(timeLayout)
	case models.VideoStatus:
		return string(v)
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float32:
		return float64(v)
	}
	return val
}
