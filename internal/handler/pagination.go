package handler

import (
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/parcelbox/parcel-service/internal/config"
	apperrors "github.com/parcelbox/parcel-service/internal/errors"
	"github.com/parcelbox/parcel-service/internal/service"
)

type PaginationParams struct {
	Page     int
	PageSize int
}

// ParsePagination reads page (1-indexed) and page_size from the query.
// Absent values take defaults; present but malformed values are rejected,
// as is a page whose offset would overflow an int.
func ParsePagination(r *http.Request) (PaginationParams, error) {
	q := r.URL.Query()
	params := PaginationParams{Page: 1, PageSize: config.DefaultPageSize}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return params, apperrors.InvalidInput("page", "must be a positive integer")
		}
		params.Page = page
	}

	if raw := q.Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 || size > config.MaxPageSize {
			return params, apperrors.InvalidInput("page_size",
				"must be an integer between 1 and "+strconv.Itoa(config.MaxPageSize))
		}
		params.PageSize = size
	}

	if params.Page-1 > math.MaxInt/params.PageSize {
		return params, apperrors.InvalidInput("page", "out of range")
	}

	return params, nil
}

// parseListParams collects the parcel list filters and pagination.
func parseListParams(r *http.Request) (service.ListParcelsParams, error) {
	q := r.URL.Query()

	typeID, err := parseOptionalInt64(q, "type_id")
	if err != nil {
		return service.ListParcelsParams{}, err
	}

	hasDeliveryCost, err := parseOptionalBool(q, "has_delivery_cost")
	if err != nil {
		return service.ListParcelsParams{}, err
	}

	page, err := ParsePagination(r)
	if err != nil {
		return service.ListParcelsParams{}, err
	}

	return service.ListParcelsParams{
		TypeID:          typeID,
		HasDeliveryCost: hasDeliveryCost,
		Page:            page.Page,
		PageSize:        page.PageSize,
	}, nil
}

func parseOptionalInt64(q url.Values, key string) (*int64, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apperrors.InvalidInput(key, "must be an integer")
	}
	return &v, nil
}

// parseOptionalBool accepts the usual spellings of a boolean flag. Absent
// means "no filter".
func parseOptionalBool(q url.Values, key string) (*bool, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}

	var v bool
	switch strings.ToLower(raw) {
	case "true", "1", "yes", "on":
		v = true
	case "false", "0", "no", "off":
		v = false
	default:
		return nil, apperrors.InvalidInput(key, "must be a boolean")
	}
	return &v, nil
}
