package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Operator is a filter predicate operator.
type Operator string

const (
	OperatorEqual          Operator = "Equal"
	OperatorNotEqual       Operator = "NotEqual"
	OperatorGreaterThan    Operator = "GreaterThan"
	OperatorLessThan       Operator = "LessThan"
	OperatorGreaterOrEqual Operator = "GreaterOrEqual"
	OperatorLessOrEqual    Operator = "LessOrEqual"
	OperatorContains       Operator = "Contains"
	OperatorStartsWith     Operator = "StartsWith"
	OperatorEndsWith       Operator = "EndsWith"
	OperatorIn             Operator = "In"
)

var operators = []Operator{
	OperatorEqual, OperatorNotEqual,
	OperatorGreaterThan, OperatorLessThan, OperatorGreaterOrEqual, OperatorLessOrEqual,
	OperatorContains, OperatorStartsWith, OperatorEndsWith,
	OperatorIn,
}

// ParseOperator matches operator names case-insensitively.
func ParseOperator(s string) (Operator, bool) {
	for _, op := range operators {
		if strings.EqualFold(string(op), strings.TrimSpace(s)) {
			return op, true
		}
	}
	return "", false
}

func (op Operator) ordered() bool {
	switch op {
	case OperatorGreaterThan, OperatorLessThan, OperatorGreaterOrEqual, OperatorLessOrEqual:
		return true
	}
	return false
}

func (op Operator) textual() bool {
	switch op {
	case OperatorContains, OperatorStartsWith, OperatorEndsWith:
		return true
	}
	return false
}

// FilterCriteria is one predicate of a list query, e.g.
// {"PropertyName": "status", "Operator": "Equal", "Value": "sent"}.
type FilterCriteria struct {
	PropertyName string   `json:"PropertyName"`
	Operator     Operator `json:"Operator"`
	Value        string   `json:"Value"`
}

// UnmarshalJSON accepts scalar JSON values (numbers, booleans) for Value in
// addition to strings.
func (f *FilterCriteria) UnmarshalJSON(data []byte) error {
	var raw struct {
		PropertyName string          `json:"PropertyName"`
		Operator     string          `json:"Operator"`
		Value        json.RawMessage `json:"Value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	value, err := scalarString(raw.Value)
	if err != nil {
		return fmt.Errorf("filter %q: %w", raw.PropertyName, err)
	}

	f.PropertyName = raw.PropertyName
	f.Operator = Operator(raw.Operator)
	f.Value = value
	return nil
}

func scalarString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		return "", fmt.Errorf("value must be a scalar")
	}
	return string(raw), nil
}

// ParseFilters decodes the filters query parameter, a JSON array of
// FilterCriteria. An empty string yields no filters.
func ParseFilters(raw string) ([]FilterCriteria, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var filters []FilterCriteria
	if err := json.Unmarshal([]byte(raw), &filters); err != nil {
		return nil, &ValidationError{
			Field:   "filters",
			Message: fmt.Sprintf("Invalid filters format: %v", err),
		}
	}
	return filters, nil
}
