package patch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"clinical-records-api/internal/query"
)

// Op names of a JSON Patch (RFC 6902) document.
const (
	OpAdd     = "add"
	OpRemove  = "remove"
	OpReplace = "replace"
	OpMove    = "move"
	OpCopy    = "copy"
	OpTest    = "test"
)

var (
	ErrMissingDocument = errors.New("Patch document is missing.")
	ErrInvalidDocument = errors.New("invalid patch document")
	ErrUnsupportedOp   = errors.New("unsupported operation")
	ErrUnknownPath     = errors.New("path does not exist")
	ErrImmutablePath   = errors.New("path is read-only")
	ErrInvalidValue    = errors.New("invalid value")
	ErrTestFailed      = errors.New("test failed")
)

// Operation is one entry of a JSON Patch document. Value is kept raw and
// decoded against the kind of the target attribute.
type Operation struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	From  string          `json:"from,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}

// Error locates a failed operation inside the document.
type Error struct {
	Index int
	Op    string
	Path  string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("patch operation %d (%s %s): %v", e.Index, e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Parse decodes a JSON Patch document. An empty body, null or an empty
// array is reported as ErrMissingDocument.
func Parse(data []byte) ([]Operation, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, ErrMissingDocument
	}

	var ops []Operation
	if err := json.Unmarshal(data, &ops); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if len(ops) == 0 {
		return nil, ErrMissingDocument
	}

	for i := range ops {
		ops[i].Op = strings.ToLower(strings.TrimSpace(ops[i].Op))
		if ops[i].Op == "" {
			return nil, &Error{Index: i, Path: ops[i].Path, Err: fmt.Errorf("%w: missing 'op'", ErrInvalidDocument)}
		}
		if ops[i].Path == "" {
			return nil, &Error{Index: i, Op: ops[i].Op, Err: fmt.Errorf("%w: missing 'path'", ErrInvalidDocument)}
		}
	}
	return ops, nil
}

// Validator checks an entity against its declared constraints.
type Validator interface {
	Validate(i interface{}) error
}

// Merger applies patch documents to entities described by a schema.
// Attributes flagged immutable in the schema cannot be written.
type Merger[T any] struct {
	schema    *query.Schema[T]
	validator Validator
}

func NewMerger[T any](schema *query.Schema[T], validator Validator) *Merger[T] {
	return &Merger[T]{schema: schema, validator: validator}
}

// Check resolves every path of ops without touching an entity, so a bad
// document can be rejected before the entity is loaded.
func (m *Merger[T]) Check(ops []Operation) error {
	for i, op := range ops {
		if _, _, err := m.resolve(op); err != nil {
			return &Error{Index: i, Op: op.Op, Path: op.Path, Err: err}
		}
	}
	return nil
}

// Apply runs ops in order against a copy of existing and validates the
// result. existing is never modified; on any error no change is visible.
func (m *Merger[T]) Apply(existing *T, ops []Operation) (*T, error) {
	if len(ops) == 0 {
		return nil, ErrMissingDocument
	}
	if err := m.Check(ops); err != nil {
		return nil, err
	}

	patched := *existing
	for i, op := range ops {
		if err := m.apply(&patched, op); err != nil {
			return nil, &Error{Index: i, Op: op.Op, Path: op.Path, Err: err}
		}
	}

	if m.validator != nil {
		if err := m.validator.Validate(&patched); err != nil {
			return nil, err
		}
	}
	return &patched, nil
}

// resolve returns the target attribute and, for move and copy, the source.
func (m *Merger[T]) resolve(op Operation) (to query.Field[T], from query.Field[T], err error) {
	switch op.Op {
	case OpAdd, OpRemove, OpReplace, OpMove, OpCopy, OpTest:
	default:
		return to, from, fmt.Errorf("%w %q", ErrUnsupportedOp, op.Op)
	}

	to, err = m.field(op.Path)
	if err != nil {
		return to, from, err
	}
	if op.Op != OpTest && to.Immutable {
		return to, from, fmt.Errorf("%w: %s", ErrImmutablePath, op.Path)
	}

	if op.Op == OpMove || op.Op == OpCopy {
		from, err = m.field(op.From)
		if err != nil {
			return to, from, err
		}
		if op.Op == OpMove && from.Immutable {
			return to, from, fmt.Errorf("%w: %s", ErrImmutablePath, op.From)
		}
		if from.Kind != to.Kind {
			return to, from, fmt.Errorf("%w: cannot %s %s into %s", ErrInvalidValue, op.Op, from.Kind, to.Kind)
		}
	}
	return to, from, nil
}

func (m *Merger[T]) apply(item *T, op Operation) error {
	to, from, err := m.resolve(op)
	if err != nil {
		return err
	}

	switch op.Op {
	case OpAdd, OpReplace:
		if op.Value == nil {
			return fmt.Errorf("%w: missing 'value'", ErrInvalidValue)
		}
		v, err := to.Kind.DecodeJSON(op.Value)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		return to.Set(item, v)
	case OpRemove:
		return to.Set(item, nil)
	case OpMove:
		v := from.Get(item)
		if err := from.Set(item, nil); err != nil {
			return err
		}
		return to.Set(item, v)
	case OpCopy:
		return to.Set(item, from.Get(item))
	case OpTest:
		want, err := to.Kind.DecodeJSON(op.Value)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		if !to.Kind.Equal(to.Get(item), want) {
			return ErrTestFailed
		}
	}
	return nil
}

// field resolves a JSON pointer of the form "/name". Nested pointers do
// not address anything on a flat entity.
func (m *Merger[T]) field(pointer string) (query.Field[T], error) {
	if !strings.HasPrefix(pointer, "/") {
		return query.Field[T]{}, fmt.Errorf("%w: %q", ErrUnknownPath, pointer)
	}
	name := pointer[1:]
	if name == "" || strings.Contains(name, "/") {
		return query.Field[T]{}, fmt.Errorf("%w: %q", ErrUnknownPath, pointer)
	}
	name = strings.NewReplacer("~1", "/", "~0", "~").Replace(name)

	f, ok := m.schema.Field(name)
	if !ok {
		return query.Field[T]{}, fmt.Errorf("%w: %q", ErrUnknownPath, pointer)
	}
	return f, nil
}
