// Package repository contains the MySQL data access layer. Repositories
// return the sentinel errors below; services translate them into apperr
// codes for clients.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup or update matches no row.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique index, such
// as users.email or ratings(user_id, store_id).
var ErrDuplicate = errors.New("duplicate")

// ErrInvalidSort is returned when a sort field or direction is not on the
// allow-list. No query is issued in that case.
var ErrInvalidSort = errors.New("invalid sort parameters")

const (
	mysqlErrDupEntry = 1062
)

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlErrDupEntry
	}
	return false
}

// likePattern escapes LIKE wildcards in s and wraps it for a substring
// match. Matching is case-insensitive because callers compare LOWER(col).
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}
