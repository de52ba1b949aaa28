package params

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// QueryParams holds the common list-endpoint query parameters.
type QueryParams struct {
	PageNumber int
	PageSize   int
	Search     string
}

// NewQueryParams parses pagination parameters from the request,
// clamping them to sane bounds.
func NewQueryParams(ctx echo.Context) *QueryParams {
	page, _ := strconv.Atoi(ctx.QueryParam("page"))
	if page <= 0 {
		page = 1
	}

	size, _ := strconv.Atoi(ctx.QueryParam("limit"))
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	return &QueryParams{
		PageNumber: page,
		PageSize:   size,
		Search:     ctx.QueryParam("search"),
	}
}
