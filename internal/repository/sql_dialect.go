package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// sqlDialect 区分 sqlite 与 postgres 的少量语法差异
type sqlDialect string

const (
	dialectSQLite   sqlDialect = "sqlite"
	dialectPostgres sqlDialect = "postgres"
)

// dialectOf 未知或空连接按 sqlite 处理
func dialectOf(db *gorm.DB) sqlDialect {
	if db == nil || db.Dialector == nil {
		return dialectSQLite
	}
	return parseDialect(db.Dialector.Name())
}

func parseDialect(name string) sqlDialect {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql", "pgx":
		return dialectPostgres
	default:
		return dialectSQLite
	}
}

// jsonText 取 JSON 列顶层键的文本值
func (d sqlDialect) jsonText(column, key string) string {
	if d == dialectPostgres {
		return fmt.Sprintf("(%s::jsonb ->> '%s')", column, key)
	}
	return fmt.Sprintf("json_extract(%s, '$.\"%s\"')", column, key)
}

// anyLike 多列模糊匹配，postgres 下不区分大小写；无有效列时返回空条件
func (d sqlDialect) anyLike(columns []string, pattern string) (string, []interface{}) {
	operator := "LIKE"
	if d == dialectPostgres {
		operator = "ILIKE"
	}
	var (
		clauses []string
		args    []interface{}
	)
	for _, column := range columns {
		if column = strings.TrimSpace(column); column == "" {
			continue
		}
		clauses = append(clauses, column+" "+operator+" ?")
		args = append(args, pattern)
	}
	return strings.Join(clauses, " OR "), args
}
