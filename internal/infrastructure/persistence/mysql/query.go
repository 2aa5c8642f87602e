package mysql

import (
	"sort"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/pkg/pagination"
)

// applyFilter adds the list predicate to q.
//
// The search term becomes one parenthesised OR group over the searchable
// columns; exact filters are ANDed after it. With neither, q is returned
// unchanged and matches every row. A filter on a column the catalog does not
// expose can never hold and empties the result.
func applyFilter(q *gorm.DB, f book.Filter) *gorm.DB {
	if term := f.SearchTerm; term != "" {
		fields := book.SearchableFields()
		conds := make([]string, len(fields))
		args := make([]interface{}, len(fields))
		pattern := containsPattern(term)
		for i, col := range fields {
			conds[i] = "LOWER(" + col + ") LIKE ? ESCAPE '" + likeEscape + "'"
			args[i] = pattern
		}
		q = q.Where("("+strings.Join(conds, " OR ")+")", args...)
	}

	if len(f.Fields) == 0 {
		return q
	}
	// map iteration is random; sort for a stable statement
	keys := make([]string, 0, len(f.Fields))
	for k := range f.Fields {
		if !book.IsFilterable(k) {
			// the key itself never reaches SQL
			return q.Where("1 = 0")
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, col := range keys {
		q = q.Where(clause.Eq{Column: clause.Column{Name: col}, Value: f.Fields[col]})
	}
	return q
}

// applyWindow adds ORDER BY (only when both field and direction are given
// and the field is sortable) and the LIMIT/OFFSET window.
func applyWindow(q *gorm.DB, w pagination.Result) *gorm.DB {
	if w.Sorted() && book.IsSortable(w.SortBy) {
		q = q.Order(clause.OrderByColumn{
			Column: clause.Column{Name: w.SortBy},
			Desc:   w.SortOrder == pagination.SortDesc,
		})
	}
	return q.Limit(w.Limit).Offset(w.Skip)
}
