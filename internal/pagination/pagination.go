// Package pagination windows ordered result sets by 1-based page number and
// page size.
package pagination

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/project-management-api/internal/constants"
)

// Params holds a validated page request.
type Params struct {
	PageNumber int
	PageSize   int
}

// Offset is the zero-based index of the first item on the page. It
// saturates at math.MaxInt instead of wrapping for very large page numbers.
func (p Params) Offset() int {
	if p.PageNumber <= 1 || p.PageSize <= 0 {
		return 0
	}
	if p.PageNumber-1 > math.MaxInt/p.PageSize {
		return math.MaxInt
	}
	return (p.PageNumber - 1) * p.PageSize
}

// Window returns the half-open index range [start, end) of the page within a
// result set of total items. Pages past the end yield start == end == total.
func Window(total int64, p Params) (start, end int64) {
	start = int64(p.Offset())
	if start > total {
		start = total
	}
	end = start + int64(p.PageSize)
	if end > total {
		end = total
	}
	return start, end
}

// Page is one window of a result set.
type Page[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	PageNumber int   `json:"pageNumber"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// NewPage assembles a page, echoing the request parameters.
func NewPage[T any](items []T, total int64, p Params) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if p.PageSize > 0 {
		totalPages = int(total / int64(p.PageSize))
		if total%int64(p.PageSize) > 0 {
			totalPages++
		}
	}
	return Page[T]{
		Items:      items,
		TotalCount: total,
		PageNumber: p.PageNumber,
		PageSize:   p.PageSize,
		TotalPages: totalPages,
	}
}

// Map converts the items of a page, keeping its metadata.
func Map[T, U any](page Page[T], fn func(T) U) Page[U] {
	items := make([]U, len(page.Items))
	for i, item := range page.Items {
		items[i] = fn(item)
	}
	return Page[U]{
		Items:      items,
		TotalCount: page.TotalCount,
		PageNumber: page.PageNumber,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}
}

// ParamError reports a malformed or out-of-range query parameter.
type ParamError struct {
	Field  string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Options controls defaults and the upper bound on page size.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
}

// DefaultOptions returns the built-in defaults.
func DefaultOptions() Options {
	return Options{
		DefaultPageSize: constants.DefaultPageSize,
		MaxPageSize:     constants.MaxPageSize,
	}
}

// Parse validates raw query values. Empty values take defaults, non-positive
// or malformed values are rejected, and page sizes above the maximum are
// clamped to it.
func (o Options) Parse(pageNumber, pageSize string) (Params, error) {
	if o.DefaultPageSize <= 0 {
		o.DefaultPageSize = constants.DefaultPageSize
	}
	if o.MaxPageSize <= 0 {
		o.MaxPageSize = constants.MaxPageSize
	}

	p := Params{PageNumber: constants.MinPageNumber, PageSize: o.DefaultPageSize}

	if v := strings.TrimSpace(pageNumber); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Params{}, &ParamError{Field: "pageNumber", Reason: "must be an integer"}
		}
		if n < constants.MinPageNumber {
			return Params{}, &ParamError{Field: "pageNumber", Reason: "must be at least 1"}
		}
		p.PageNumber = n
	}

	if v := strings.TrimSpace(pageSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Params{}, &ParamError{Field: "pageSize", Reason: "must be an integer"}
		}
		if n < 1 {
			return Params{}, &ParamError{Field: "pageSize", Reason: "must be at least 1"}
		}
		p.PageSize = n
	}

	if p.PageSize > o.MaxPageSize {
		p.PageSize = o.MaxPageSize
	}

	return p, nil
}

// FromQuery reads pageNumber and pageSize from the request query string.
func (o Options) FromQuery(c *gin.Context) (Params, error) {
	return o.Parse(c.Query("pageNumber"), c.Query("pageSize"))
}
