package mysql

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isDuplicateError reports a unique index violation.
// MySQL: 1062 Duplicate entry; SQLite: UNIQUE constraint failed.
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}

// likeEscape is the escape character used in LIKE patterns. Backslash is
// avoided because its literal syntax differs between MySQL and SQLite.
const likeEscape = "!"

// containsPattern turns term into a lower-cased %term% pattern with LIKE
// wildcards escaped.
func containsPattern(term string) string {
	r := strings.NewReplacer(
		likeEscape, likeEscape+likeEscape,
		"%", likeEscape+"%",
		"_", likeEscape+"_",
	)
	return "%" + r.Replace(strings.ToLower(term)) + "%"
}
