package schema

import (
	"fmt"
	"streamdb/internal/shared"
)

// Order is the direction of an index key.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
	Text Order = "text"
)

// IndexKey is one field of an index.
type IndexKey struct {
	Field string `json:"field"`
	Order Order  `json:"order"`
}

// Index is a named index over one or more keys.
type Index struct {
	Name   string     `json:"name"`
	Keys   []IndexKey `json:"keys"`
	Unique bool       `json:"unique,omitempty"`
}

// IndexKind is derived from the keys and flags of an Index.
type IndexKind string

const (
	IndexSingle   IndexKind = "single"
	IndexUnique   IndexKind = "unique"
	IndexCompound IndexKind = "compound"
	IndexText     IndexKind = "text"
)

// Kind classifies the index for reporting.
func (i Index) Kind() IndexKind {
	for _, k := range i.Keys {
		if k.Order == Text {
			return IndexText
		}
	}
	if i.Unique {
		return IndexUnique
	}
	if len(i.Keys) > 1 {
		return IndexCompound
	}
	return IndexSingle
}

// Validate checks the index in isolation.
func (i Index) Validate() error {
	if !shared.SafeNameRegex.MatchString(i.Name) {
		return fmt.Errorf("index %q: %w", i.Name, shared.ErrInvalidName)
	}
	if len(i.Keys) == 0 {
		return fmt.Errorf("index %q: no keys: %w", i.Name, shared.ErrInvalidDefinition)
	}
	seen := make(map[string]bool, len(i.Keys))
	for _, k := range i.Keys {
		switch k.Order {
		case Asc, Desc, Text:
		default:
			return fmt.Errorf("index %q: unknown order %q: %w", i.Name, k.Order, shared.ErrInvalidDefinition)
		}
		if seen[k.Field] {
			return fmt.Errorf("index %q: field %q listed twice: %w", i.Name, k.Field, shared.ErrInvalidDefinition)
		}
		seen[k.Field] = true
	}
	if i.Unique && i.Kind() == IndexText {
		return fmt.Errorf("index %q: text indexes cannot be unique: %w", i.Name, shared.ErrInvalidDefinition)
	}
	return nil
}

// On builds an ascending single or compound index.
func On(name string, fields ...string) Index {
	keys := make([]IndexKey, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, IndexKey{Field: f, Order: Asc})
	}
	return Index{Name: name, Keys: keys}
}
