package query

import (
	"fmt"
	"math"
	"strings"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 10
)

// Params is an unvalidated list request.
type Params struct {
	Filters    []FilterCriteria
	SearchTerm string
	PageNumber int
	PageSize   int
	SortField  string
	SortOrder  string
}

// Predicate is a FilterCriteria resolved against a schema attribute, with
// its value(s) parsed to the attribute kind.
type Predicate[T any] struct {
	Field    Field[T]
	Operator Operator
	Values   []any
}

// Compiled is a validated list query ready to run against any store.
type Compiled[T any] struct {
	Schema     *Schema[T]
	Predicates []Predicate[T]
	Search     string
	Sort       Field[T]
	Descending bool
	PageNumber int
	PageSize   int
}

// Offset is the number of matching items skipped before the page.
func (c *Compiled[T]) Offset() int {
	return (c.PageNumber - 1) * c.PageSize
}

// Limit is the maximum number of items returned.
func (c *Compiled[T]) Limit() int {
	return c.PageSize
}

// Compile validates p against the schema. Page bounds are checked first, in
// the order page size, page number. maxPageSize <= 0 disables the upper bound.
// The end of the requested page must fit in an int, so Offset and
// Offset+Limit never overflow.
func Compile[T any](s *Schema[T], p Params, maxPageSize int) (*Compiled[T], error) {
	if p.PageSize < 1 || (maxPageSize > 0 && p.PageSize > maxPageSize) {
		return nil, ErrInvalidPageSize
	}
	if p.PageNumber < 1 || p.PageNumber > math.MaxInt/p.PageSize {
		return nil, ErrInvalidPageNumber
	}

	c := &Compiled[T]{
		Schema:     s,
		Search:     strings.TrimSpace(p.SearchTerm),
		PageNumber: p.PageNumber,
		PageSize:   p.PageSize,
	}

	switch SortOrder(strings.ToLower(strings.TrimSpace(p.SortOrder))) {
	case "", SortAsc:
	case SortDesc:
		c.Descending = true
	default:
		return nil, ErrInvalidSortOrder
	}

	sortName := FieldCreatedOn
	if strings.TrimSpace(p.SortField) != "" {
		sortName = p.SortField
	}
	sort, ok := s.Field(sortName)
	if !ok {
		return nil, unknownProperty("sortField", p.SortField)
	}
	c.Sort = sort

	c.Predicates = make([]Predicate[T], 0, len(p.Filters))
	for _, f := range p.Filters {
		pred, err := compilePredicate(s, f)
		if err != nil {
			return nil, err
		}
		c.Predicates = append(c.Predicates, pred)
	}

	return c, nil
}

func compilePredicate[T any](s *Schema[T], f FilterCriteria) (Predicate[T], error) {
	field, ok := s.Field(f.PropertyName)
	if !ok {
		return Predicate[T]{}, unknownProperty("filters", f.PropertyName)
	}

	op, ok := ParseOperator(string(f.Operator))
	if !ok {
		return Predicate[T]{}, &ValidationError{
			Field:   field.Name,
			Message: fmt.Sprintf("Unknown operator '%s' for property '%s'.", f.Operator, field.Name),
		}
	}
	if (op.textual() && field.Kind != KindString) || (op.ordered() && !field.Kind.Ordered()) {
		return Predicate[T]{}, &ValidationError{
			Field:   field.Name,
			Message: fmt.Sprintf("Operator '%s' is not supported for %s property '%s'.", op, field.Kind, field.Name),
		}
	}

	raw := []string{f.Value}
	if op == OperatorIn {
		raw = strings.Split(f.Value, ",")
	}

	pred := Predicate[T]{Field: field, Operator: op, Values: make([]any, 0, len(raw))}
	for _, r := range raw {
		if op == OperatorIn && field.Kind == KindString {
			r = strings.TrimSpace(r)
		}
		v, err := field.Kind.Parse(r)
		if err != nil {
			return Predicate[T]{}, invalidValue(field.Name, field.Kind, r)
		}
		pred.Values = append(pred.Values, v)
	}
	return pred, nil
}
