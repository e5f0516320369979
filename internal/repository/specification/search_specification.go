package specification

import (
	"strings"

	"gorm.io/gorm"
)

// TextSearch matches rows where any of Columns contains Query, case-insensitively.
type TextSearch struct {
	Columns []string
	Query   string
}

func (s TextSearch) Apply(db *gorm.DB) *gorm.DB {
	if s.Query == "" || len(s.Columns) == 0 {
		return db
	}
	pattern := "%" + escapeLike(s.Query) + "%"

	clauses := make([]string, len(s.Columns))
	args := make([]interface{}, len(s.Columns))
	for i, col := range s.Columns {
		clauses[i] = col + " ILIKE ?"
		args[i] = pattern
	}
	return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
