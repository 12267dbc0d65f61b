package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Attribute names every schema must declare.
const (
	FieldID        = "id"
	FieldTenantID  = "tenantId"
	FieldCreatedOn = "createdOn"
)

// Field describes one attribute of T: its JSON name, storage column, kind
// and typed accessors. Get returns nil for an unset optional attribute;
// Set(nil) clears the attribute.
type Field[T any] struct {
	Name       string
	Column     string
	Kind       Kind
	Searchable bool
	Immutable  bool

	Get func(*T) any
	Set func(*T, any) error
}

// AsSearchable includes the attribute in free-text search. Only string
// attributes can be searched.
func (f Field[T]) AsSearchable() Field[T] {
	f.Searchable = f.Kind == KindString
	return f
}

// AsImmutable protects the attribute from patch operations.
func (f Field[T]) AsImmutable() Field[T] {
	f.Immutable = true
	return f
}

func mismatch(name string, want Kind, v any) error {
	return fmt.Errorf("property '%s' expects a %s value, got %T", name, want, v)
}

func String[T any](name, column string, ptr func(*T) *string) Field[T] {
	return Field[T]{
		Name: name, Column: column, Kind: KindString,
		Get: func(t *T) any { return *ptr(t) },
		Set: func(t *T, v any) error {
			if v == nil {
				*ptr(t) = ""
				return nil
			}
			s, ok := v.(string)
			if !ok {
				return mismatch(name, KindString, v)
			}
			*ptr(t) = s
			return nil
		},
	}
}

func Int[T any](name, column string, ptr func(*T) *int) Field[T] {
	return Field[T]{
		Name: name, Column: column, Kind: KindInt,
		Get: func(t *T) any { return *ptr(t) },
		Set: func(t *T, v any) error {
			if v == nil {
				*ptr(t) = 0
				return nil
			}
			n, ok := v.(int)
			if !ok {
				return mismatch(name, KindInt, v)
			}
			*ptr(t) = n
			return nil
		},
	}
}

func Decimal[T any](name, column string, ptr func(*T) *decimal.Decimal) Field[T] {
	return Field[T]{
		Name: name, Column: column, Kind: KindDecimal,
		Get: func(t *T) any { return *ptr(t) },
		Set: func(t *T, v any) error {
			if v == nil {
				*ptr(t) = decimal.Zero
				return nil
			}
			d, ok := v.(decimal.Decimal)
			if !ok {
				return mismatch(name, KindDecimal, v)
			}
			*ptr(t) = d
			return nil
		},
	}
}

func Bool[T any](name, column string, ptr func(*T) *bool) Field[T] {
	return Field[T]{
		Name: name, Column: column, Kind: KindBool,
		Get: func(t *T) any { return *ptr(t) },
		Set: func(t *T, v any) error {
			if v == nil {
				*ptr(t) = false
				return nil
			}
			b, ok := v.(bool)
			if !ok {
				return mismatch(name, KindBool, v)
			}
			*ptr(t) = b
			return nil
		},
	}
}

func Time[T any](name, column string, ptr func(*T) *time.Time) Field[T] {
	return Field[T]{
		Name: name, Column: column, Kind: KindTime,
		Get: func(t *T) any {
			if ptr(t).IsZero() {
				return nil
			}
			return *ptr(t)
		},
		Set: func(t *T, v any) error {
			if v == nil {
				*ptr(t) = time.Time{}
				return nil
			}
			tm, ok := v.(time.Time)
			if !ok {
				return mismatch(name, KindTime, v)
			}
			*ptr(t) = tm
			return nil
		},
	}
}

func OptionalTime[T any](name, column string, ptr func(*T) **time.Time) Field[T] {
	return Field[T]{
		Name: name, Column: column, Kind: KindTime,
		Get: func(t *T) any {
			if *ptr(t) == nil {
				return nil
			}
			return **ptr(t)
		},
		Set: func(t *T, v any) error {
			if v == nil {
				*ptr(t) = nil
				return nil
			}
			tm, ok := v.(time.Time)
			if !ok {
				return mismatch(name, KindTime, v)
			}
			*ptr(t) = &tm
			return nil
		},
	}
}

func UUID[T any](name, column string, ptr func(*T) *uuid.UUID) Field[T] {
	return Field[T]{
		Name: name, Column: column, Kind: KindUUID,
		Get: func(t *T) any { return *ptr(t) },
		Set: func(t *T, v any) error {
			if v == nil {
				*ptr(t) = uuid.Nil
				return nil
			}
			id, ok := v.(uuid.UUID)
			if !ok {
				return mismatch(name, KindUUID, v)
			}
			*ptr(t) = id
			return nil
		},
	}
}

func OptionalUUID[T any](name, column string, ptr func(*T) **uuid.UUID) Field[T] {
	return Field[T]{
		Name: name, Column: column, Kind: KindUUID,
		Get: func(t *T) any {
			if *ptr(t) == nil {
				return nil
			}
			return **ptr(t)
		},
		Set: func(t *T, v any) error {
			if v == nil {
				*ptr(t) = nil
				return nil
			}
			id, ok := v.(uuid.UUID)
			if !ok {
				return mismatch(name, KindUUID, v)
			}
			*ptr(t) = &id
			return nil
		},
	}
}

// Schema is the attribute table of one entity type. Lookups by name are
// case-insensitive, so "PatientName" and "patientName" resolve alike.
type Schema[T any] struct {
	entity string
	fields []Field[T]
	byName map[string]int
}

// NewSchema builds a schema. It fails on duplicate names and when one of
// the id, tenantId or createdOn attributes is missing.
func NewSchema[T any](entity string, fields ...Field[T]) (*Schema[T], error) {
	s := &Schema[T]{
		entity: entity,
		fields: fields,
		byName: make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		key := strings.ToLower(f.Name)
		if _, dup := s.byName[key]; dup {
			return nil, fmt.Errorf("schema %s: duplicate attribute %q", entity, f.Name)
		}
		if f.Get == nil || f.Set == nil {
			return nil, fmt.Errorf("schema %s: attribute %q has no accessors", entity, f.Name)
		}
		s.byName[key] = i
	}

	required := map[string]Kind{FieldID: KindUUID, FieldTenantID: KindUUID, FieldCreatedOn: KindTime}
	for name, kind := range required {
		f, ok := s.Field(name)
		if !ok || f.Kind != kind {
			return nil, fmt.Errorf("schema %s: missing %s attribute %q", entity, kind, name)
		}
	}
	return s, nil
}

// MustSchema is NewSchema for package-level schema tables.
func MustSchema[T any](entity string, fields ...Field[T]) *Schema[T] {
	s, err := NewSchema(entity, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema[T]) Entity() string {
	return s.entity
}

func (s *Schema[T]) Field(name string) (Field[T], bool) {
	i, ok := s.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Field[T]{}, false
	}
	return s.fields[i], true
}

func (s *Schema[T]) Fields() []Field[T] {
	return s.fields
}

func (s *Schema[T]) Searchable() []Field[T] {
	var out []Field[T]
	for _, f := range s.fields {
		if f.Searchable {
			out = append(out, f)
		}
	}
	return out
}

func (s *Schema[T]) mustField(name string) Field[T] {
	f, _ := s.Field(name)
	return f
}

// ID returns the id attribute of item.
func (s *Schema[T]) ID(item *T) uuid.UUID {
	id, _ := s.mustField(FieldID).Get(item).(uuid.UUID)
	return id
}

// TenantID returns the tenant attribute of item.
func (s *Schema[T]) TenantID(item *T) uuid.UUID {
	id, _ := s.mustField(FieldTenantID).Get(item).(uuid.UUID)
	return id
}
