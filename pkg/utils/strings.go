package utils

import (
	"net/http"
	"strconv"
)

// ParseInt parses a string to int with a fallback default value
func ParseInt(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return val
}

func ParseInt64(s string) (int64, bool) {
	v, err := strconv.ParseInt(s, 10, 64)
	return v, err == nil
}

func Itoa64(v int64) string {
	return strconv.FormatInt(v, 10)
}

// ParsePagination reads page/limit query params, clamped to [1, maxLimit].
func ParsePagination(r *http.Request, defaultLimit, maxLimit int) (page, limit int) {
	q := r.URL.Query()
	page = ParseInt(q.Get("page"), 1)
	if page < 1 {
		page = 1
	}
	limit = ParseInt(q.Get("limit"), defaultLimit)
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}
