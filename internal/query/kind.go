package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind is the native type of an entity attribute. Values of each kind are
// carried as string, int, decimal.Decimal, time.Time, bool and uuid.UUID.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindDecimal
	KindTime
	KindBool
	KindUUID
)

const dateLayout = "2006-01-02"

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindDecimal:
		return "decimal"
	case KindTime:
		return "date"
	case KindBool:
		return "boolean"
	case KindUUID:
		return "uuid"
	default:
		return "unknown"
	}
}

// Ordered reports whether GreaterThan/LessThan style operators apply.
func (k Kind) Ordered() bool {
	switch k {
	case KindString, KindInt, KindDecimal, KindTime:
		return true
	}
	return false
}

// Parse converts a filter value from its textual form. It never coerces:
// "abc" is not an integer and "1" is not a boolean.
func (k Kind) Parse(s string) (any, error) {
	switch k {
	case KindString:
		return s, nil
	case KindInt:
		return strconv.Atoi(strings.TrimSpace(s))
	case KindDecimal:
		return decimal.NewFromString(strings.TrimSpace(s))
	case KindTime:
		return parseTime(strings.TrimSpace(s))
	case KindBool:
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, fmt.Errorf("invalid boolean %q", s)
	case KindUUID:
		return uuid.Parse(strings.TrimSpace(s))
	}
	return nil, fmt.Errorf("unsupported kind %d", k)
}

// DecodeJSON converts a JSON document fragment into a value of the kind.
// JSON null decodes to a nil value with no error.
func (k Kind) DecodeJSON(raw json.RawMessage) (any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	switch k {
	case KindString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return s, nil
	case KindInt:
		var n int
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		return n, nil
	case KindDecimal:
		var d decimal.Decimal
		if err := d.UnmarshalJSON(raw); err != nil {
			return nil, err
		}
		return d, nil
	case KindTime:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return parseTime(s)
	case KindBool:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return b, nil
	case KindUUID:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return uuid.Parse(s)
	}
	return nil, fmt.Errorf("unsupported kind %d", k)
}

// Compare orders two non-nil values of the kind. Strings compare byte-wise.
func (k Kind) Compare(a, b any) int {
	switch k {
	case KindString:
		return strings.Compare(a.(string), b.(string))
	case KindInt:
		x, y := a.(int), b.(int)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case KindDecimal:
		return a.(decimal.Decimal).Cmp(b.(decimal.Decimal))
	case KindTime:
		return a.(time.Time).Compare(b.(time.Time))
	case KindBool:
		x, y := a.(bool), b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	case KindUUID:
		x, y := a.(uuid.UUID), b.(uuid.UUID)
		return bytes.Compare(x[:], y[:])
	}
	return 0
}

// Equal treats two nils as equal and a nil as different from any value.
func (k Kind) Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return k.Compare(a, b) == 0
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use RFC3339 or YYYY-MM-DD", s)
	}
	return t.UTC(), nil
}
