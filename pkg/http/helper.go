package http

import (
	"net/http"
	"strconv"

	"mentorhub/pkg/config"
	apperrors "mentorhub/pkg/errors"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = v
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

// ExtractVersion reads the optimistic-concurrency version a mutation
// must echo back.
func ExtractVersion(raw int64) (int64, error) {
	if raw <= 0 {
		return 0, apperrors.InvalidInput("booking_version is required and must be positive")
	}
	return raw, nil
}
