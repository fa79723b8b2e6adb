package repository

import "strings"

// Sort is a validated ordering. Values are only produced by
// ParseStoreSort and ParseUserSort, so Field is always on an allow-list.
type Sort struct {
	Field string
	Desc  bool
}

// storeSortColumns maps public sort fields to SQL expressions.
var storeSortColumns = map[string]string{
	"name":          "s.name",
	"created_at":    "s.created_at",
	"averageRating": "average_rating",
	"ratingCount":   "rating_count",
}

var userSortColumns = map[string]string{
	"id":         "u.id",
	"name":       "u.name",
	"email":      "u.email",
	"role":       "u.role",
	"created_at": "u.created_at",
}

// DefaultStoreSort applies when the client sends no sort parameters.
var DefaultStoreSort = Sort{Field: "created_at", Desc: true}

// DefaultUserSort applies when the client sends no sort parameters.
var DefaultUserSort = Sort{Field: "id"}

// ParseStoreSort validates a store listing sort. An empty field or
// direction takes the default; anything else unrecognised is rejected.
func ParseStoreSort(field, direction string) (Sort, error) {
	return parseSort(storeSortColumns, DefaultStoreSort, field, direction)
}

// ParseUserSort validates an admin user listing sort.
func ParseUserSort(field, direction string) (Sort, error) {
	return parseSort(userSortColumns, DefaultUserSort, field, direction)
}

func parseSort(columns map[string]string, def Sort, field, direction string) (Sort, error) {
	s := def
	if field != "" {
		if _, ok := columns[field]; !ok {
			return Sort{}, ErrInvalidSort
		}
		s.Field = field
	}
	switch strings.ToLower(direction) {
	case "":
	case "asc":
		s.Desc = false
	case "desc":
		s.Desc = true
	default:
		return Sort{}, ErrInvalidSort
	}
	return s, nil
}

// orderBy renders an ORDER BY clause from the allow-list, with tiebreak
// appended for a stable order.
func orderBy(columns map[string]string, s Sort, tiebreak string) (string, error) {
	col, ok := columns[s.Field]
	if !ok {
		return "", ErrInvalidSort
	}
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir + ", " + tiebreak, nil
}
