package handlers

import (
	"errors"
	"strconv"
)

const (
	defaultLimit = int64(50)
	maxLimit     = int64(200)
)

var errInvalidPagination = errors.New("invalid pagination params")

type pagination struct {
	Total  int64 `json:"total"`
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
	Pages  int64 `json:"pages"`
}

func newPagination(total, limit, offset int64) pagination {
	return pagination{
		Total:  total,
		Limit:  limit,
		Offset: offset,
		Pages:  (total + limit - 1) / limit,
	}
}

// parseLimitOffset applies the default limit when absent and caps it at
// maxLimit.
func parseLimitOffset(limitStr, offsetStr string) (int64, int64, error) {
	limit := defaultLimit
	offset := int64(0)

	if limitStr != "" {
		l, err := strconv.ParseInt(limitStr, 10, 64)
		if err != nil || l < 1 {
			return 0, 0, errInvalidPagination
		}
		limit = min(l, maxLimit)
	}

	if offsetStr != "" {
		o, err := strconv.ParseInt(offsetStr, 10, 64)
		if err != nil || o < 0 {
			return 0, 0, errInvalidPagination
		}
		offset = o
	}

	return limit, offset, nil
}
