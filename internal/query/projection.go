package query

import "strings"

// ParseFields splits the comma separated fields parameter, dropping blanks
// and duplicates while keeping the caller's order.
func ParseFields(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, f := range parts {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		key := strings.ToLower(f)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
	}
	return out
}

// CheckFields resolves projection names against the schema.
func (s *Schema[T]) CheckFields(names []string) ([]Field[T], error) {
	fields := make([]Field[T], 0, len(names))
	for _, name := range names {
		f, ok := s.Field(name)
		if !ok {
			return nil, unknownProperty("fields", name)
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// Project returns only the requested attributes of item, keyed by their
// canonical JSON names.
func (s *Schema[T]) Project(item *T, names []string) (map[string]any, error) {
	fields, err := s.CheckFields(names)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		out[f.Name] = f.Get(item)
	}
	return out, nil
}
