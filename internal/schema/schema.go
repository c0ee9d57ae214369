// Package schema describes collections, their field validators and their
// indexes independently of the database engine that enforces them.
package schema

import (
	"fmt"
	"regexp"
	"streamdb/internal/shared"
)

// Kind is the type constraint of a field.
type Kind string

const (
	KindString    Kind = "string"
	KindNumber    Kind = "number"
	KindBool      Kind = "bool"
	KindTimestamp Kind = "timestamp"
	KindReference Kind = "reference"
	KindEnum      Kind = "enum"
)

func (k Kind) valid() bool {
	switch k {
	case KindString, KindNumber, KindBool, KindTimestamp, KindReference, KindEnum:
		return true
	}
	return false
}

// Field is a single validator rule.
// MinLength and Minimum are optional; a nil pointer means "no constraint".
type Field struct {
	Name        string   `json:"name"`
	Kind        Kind     `json:"kind"`
	Required    bool     `json:"required,omitempty"`
	MinLength   *int     `json:"min_length,omitempty"`
	Minimum     *float64 `json:"minimum,omitempty"`
	Pattern     string   `json:"pattern,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Collection is a named set of documents with a validator and indexes.
type Collection struct {
	Name    string  `json:"name"`
	Title   string  `json:"title,omitempty"`
	Fields  []Field `json:"fields"`
	Indexes []Index `json:"indexes,omitempty"`
}

// MinLen and Min build the optional constraints of a Field.
func MinLen(n int) *int { return &n }

func Min(v float64) *float64 { return &v }

// Required returns the names of the required fields in declaration order.
func (c Collection) Required() []string {
	var names []string
	for _, f := range c.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

// Field looks up a field by name.
func (c Collection) Field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Validate rejects definitions that no backend could enforce. It is run
// before anything is sent to the database so that a malformed validator
// is reported as a definition error instead of an engine error.
func (c Collection) Validate() error {
	if !shared.SafeNameRegex.MatchString(c.Name) {
		return fmt.Errorf("collection %q: %w", c.Name, shared.ErrInvalidName)
	}

	seen := make(map[string]bool, len(c.Fields))
	for _, f := range c.Fields {
		if err := f.validate(); err != nil {
			return fmt.Errorf("collection %q: %w", c.Name, err)
		}
		if seen[f.Name] {
			return fmt.Errorf("collection %q: duplicate field %q: %w", c.Name, f.Name, shared.ErrInvalidDefinition)
		}
		seen[f.Name] = true
	}

	for _, idx := range c.Indexes {
		if err := idx.Validate(); err != nil {
			return fmt.Errorf("collection %q: %w", c.Name, err)
		}
		for _, k := range idx.Keys {
			if !seen[k.Field] {
				return fmt.Errorf("collection %q: index %q references unknown field %q: %w", c.Name, idx.Name, k.Field, shared.ErrInvalidDefinition)
			}
		}
	}
	return nil
}

func (f Field) validate() error {
	if !shared.SafeNameRegex.MatchString(f.Name) || f.Name == "_id" {
		return fmt.Errorf("field %q: %w", f.Name, shared.ErrInvalidName)
	}
	if !f.Kind.valid() {
		return fmt.Errorf("field %q: unknown kind %q: %w", f.Name, f.Kind, shared.ErrInvalidDefinition)
	}
	if f.Kind == KindEnum && len(f.Enum) == 0 {
		return fmt.Errorf("field %q: enum without values: %w", f.Name, shared.ErrInvalidDefinition)
	}
	if f.Kind != KindEnum && len(f.Enum) > 0 {
		return fmt.Errorf("field %q: enum values on a %s field: %w", f.Name, f.Kind, shared.ErrInvalidDefinition)
	}
	if f.MinLength != nil && (*f.MinLength < 0 || f.Kind != KindString) {
		return fmt.Errorf("field %q: min length only applies to strings: %w", f.Name, shared.ErrInvalidDefinition)
	}
	if f.Minimum != nil && f.Kind != KindNumber {
		return fmt.Errorf("field %q: minimum only applies to numbers: %w", f.Name, shared.ErrInvalidDefinition)
	}
	if f.Pattern != "" {
		if f.Kind != KindString {
			return fmt.Errorf("field %q: pattern only applies to strings: %w", f.Name, shared.ErrInvalidDefinition)
		}
		if _, err := regexp.Compile(f.Pattern); err != nil {
			return fmt.Errorf("field %q: bad pattern: %v: %w", f.Name, err, shared.ErrInvalidDefinition)
		}
	}
	return nil
}
