package utils

import (
	"net/url"
	"strconv"

	"github.com/pratik-mahalle/petalert/internal/pkg/errors"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Window is the part of a listing selected by the page and page_size query parameters
type Window struct {
	Page     int
	PageSize int
}

// Offset is the number of rows skipped before the window starts
func (w Window) Offset() int {
	return (w.Page - 1) * w.PageSize
}

// WindowFromQuery reads page and page_size. Missing values take the defaults
// and page_size is capped at MaxPageSize. Non-numeric or non-positive values
// are rejected.
func WindowFromQuery(q url.Values) (Window, error) {
	page, err := positiveInt(q, "page", 1)
	if err != nil {
		return Window{}, err
	}
	size, err := positiveInt(q, "page_size", DefaultPageSize)
	if err != nil {
		return Window{}, err
	}
	return Window{Page: page, PageSize: min(size, MaxPageSize)}, nil
}

// QueryID reads an optional numeric id filter; zero means absent
func QueryID(q url.Values, key string) (int64, error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, errors.ValidationError("Invalid "+key, map[string]string{key: raw})
	}
	return id, nil
}

func positiveInt(q url.Values, key string, def int) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.ValidationError(key+" must be a positive integer", map[string]string{key: raw})
	}
	return n, nil
}

// Page is one window of a listing together with the listing totals
type Page[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// NewPage wraps the items fetched for w out of total matching rows
func NewPage[T any](items []T, w Window, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	size := int64(max(w.PageSize, 1))
	return Page[T]{
		Data:       items,
		Page:       w.Page,
		PageSize:   w.PageSize,
		TotalItems: total,
		TotalPages: int((total + size - 1) / size),
	}
}
