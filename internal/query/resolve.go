package query

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ListResult is one page of a list query. TotalCount counts every match
// before paging.
type ListResult[T any] struct {
	Items      []T
	TotalCount int64
}

// Resolve runs a compiled query over an in-memory collection. Only items of
// tenantID are visible. The input slice is not modified.
func Resolve[T any](items []T, tenantID uuid.UUID, c *Compiled[T]) *ListResult[T] {
	matched := make([]*T, 0, len(items))
	for i := range items {
		item := &items[i]
		if c.Schema.TenantID(item) != tenantID {
			continue
		}
		if !c.Match(item) {
			continue
		}
		matched = append(matched, item)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return c.Less(matched[i], matched[j])
	})

	result := &ListResult[T]{
		Items:      []T{},
		TotalCount: int64(len(matched)),
	}
	offset := c.Offset()
	if offset < 0 || offset >= len(matched) {
		return result
	}
	end := len(matched)
	if c.Limit() < end-offset {
		end = offset + c.Limit()
	}
	for _, item := range matched[offset:end] {
		result.Items = append(result.Items, *item)
	}
	return result
}

// Match reports whether item satisfies every predicate and, when a search
// term is set, contains it in at least one searchable attribute.
func (c *Compiled[T]) Match(item *T) bool {
	for _, p := range c.Predicates {
		if !p.Match(item) {
			return false
		}
	}
	if c.Search == "" {
		return true
	}
	term := strings.ToLower(c.Search)
	for _, f := range c.Schema.Searchable() {
		s, ok := f.Get(item).(string)
		if ok && strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	return false
}

// Less orders by the sort attribute with nulls last in either direction,
// then by id ascending.
func (c *Compiled[T]) Less(a, b *T) bool {
	av, bv := c.Sort.Get(a), c.Sort.Get(b)
	switch {
	case av == nil && bv != nil:
		return false
	case av != nil && bv == nil:
		return true
	case av != nil && bv != nil:
		if cmp := c.Sort.Kind.Compare(av, bv); cmp != 0 {
			if c.Descending {
				return cmp > 0
			}
			return cmp < 0
		}
	}
	return compareUUID(c.Schema.ID(a), c.Schema.ID(b)) < 0
}

// Match evaluates the predicate against item. A null attribute never matches.
func (p Predicate[T]) Match(item *T) bool {
	v := p.Field.Get(item)
	if v == nil {
		return false
	}
	kind := p.Field.Kind

	switch p.Operator {
	case OperatorEqual:
		return kind.Equal(v, p.Values[0])
	case OperatorNotEqual:
		return !kind.Equal(v, p.Values[0])
	case OperatorGreaterThan:
		return kind.Compare(v, p.Values[0]) > 0
	case OperatorLessThan:
		return kind.Compare(v, p.Values[0]) < 0
	case OperatorGreaterOrEqual:
		return kind.Compare(v, p.Values[0]) >= 0
	case OperatorLessOrEqual:
		return kind.Compare(v, p.Values[0]) <= 0
	case OperatorContains:
		return strings.Contains(strings.ToLower(v.(string)), strings.ToLower(p.Values[0].(string)))
	case OperatorStartsWith:
		return strings.HasPrefix(strings.ToLower(v.(string)), strings.ToLower(p.Values[0].(string)))
	case OperatorEndsWith:
		return strings.HasSuffix(strings.ToLower(v.(string)), strings.ToLower(p.Values[0].(string)))
	case OperatorIn:
		for _, want := range p.Values {
			if kind.Equal(v, want) {
				return true
			}
		}
	}
	return false
}

func compareUUID(a, b uuid.UUID) int {
	return KindUUID.Compare(a, b)
}
