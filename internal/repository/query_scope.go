package repository

import (
	"fmt"
	"strings"

	"clinical-records-api/internal/query"

	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// filterScope translates the predicates and search term of q into WHERE
// clauses. SQL comparisons with NULL are never true, which matches the
// in-memory resolver.
func filterScope[T any](q *query.Compiled[T]) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, p := range q.Predicates {
			sql, args := predicateSQL(p)
			db = db.Where(sql, args...)
		}

		if q.Search != "" {
			fields := q.Schema.Searchable()
			clauses := make([]string, 0, len(fields))
			args := make([]interface{}, 0, len(fields))
			pattern := "%" + likeEscaper.Replace(q.Search) + "%"
			for _, f := range fields {
				clauses = append(clauses, f.Column+" ILIKE ?")
				args = append(args, pattern)
			}
			if len(clauses) > 0 {
				db = db.Where("("+strings.Join(clauses, " OR ")+")", args...)
			}
		}
		return db
	}
}

// pageScope orders and pages the result. Ties on the sort column are broken
// by id so repeated calls page identically. Text columns sort by byte value,
// like the in-memory resolver, whatever the database collation is.
func pageScope[T any](q *query.Compiled[T]) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		dir := "ASC"
		if q.Descending {
			dir = "DESC"
		}
		column := q.Sort.Column
		if q.Sort.Kind == query.KindString {
			column += ` COLLATE "C"`
		}
		return db.
			Order(fmt.Sprintf("%s %s NULLS LAST", column, dir)).
			Order("id ASC").
			Limit(q.Limit()).
			Offset(q.Offset())
	}
}

func predicateSQL[T any](p query.Predicate[T]) (string, []interface{}) {
	col := p.Field.Column
	switch p.Operator {
	case query.OperatorEqual:
		return col + " = ?", []interface{}{p.Values[0]}
	case query.OperatorNotEqual:
		return col + " <> ?", []interface{}{p.Values[0]}
	case query.OperatorGreaterThan:
		return col + " > ?", []interface{}{p.Values[0]}
	case query.OperatorLessThan:
		return col + " < ?", []interface{}{p.Values[0]}
	case query.OperatorGreaterOrEqual:
		return col + " >= ?", []interface{}{p.Values[0]}
	case query.OperatorLessOrEqual:
		return col + " <= ?", []interface{}{p.Values[0]}
	case query.OperatorContains:
		return col + " ILIKE ?", []interface{}{"%" + likeEscaper.Replace(p.Values[0].(string)) + "%"}
	case query.OperatorStartsWith:
		return col + " ILIKE ?", []interface{}{likeEscaper.Replace(p.Values[0].(string)) + "%"}
	case query.OperatorEndsWith:
		return col + " ILIKE ?", []interface{}{"%" + likeEscaper.Replace(p.Values[0].(string))}
	case query.OperatorIn:
		return col + " IN ?", []interface{}{p.Values}
	}
	return "1 = 0", nil
}
