package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
	MinLimit     = 1
)

// Params holds the page and page size requested by a caller, already defaulted.
type Params struct {
	Page     int
	PageSize int
}

// Parse extracts page/page_size from query parameters. Out-of-range pages are
// clamped later by Window, once the total is known.
func Parse(c *gin.Context, defaultSize, maxSize int) Params {
	if defaultSize < MinLimit {
		defaultSize = DefaultLimit
	}
	if maxSize < defaultSize {
		maxSize = MaxLimit
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(DefaultPage)))
	if err != nil {
		page = DefaultPage
	}
	size, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultSize)))
	if err != nil || size < MinLimit {
		size = defaultSize
	}
	if size > maxSize {
		size = maxSize
	}

	return Params{Page: page, PageSize: size}
}

// Page describes one slice of a result set.
type Page struct {
	Page       int
	PageSize   int
	TotalPages int
	TotalCount int
	Offset     int
	End        int
}

// Window clamps page into [1, totalPages] for total items; there is always at least one page.
func Window(page, pageSize, total int) Page {
	if pageSize < MinLimit {
		pageSize = DefaultLimit
	}
	if total < 0 {
		total = 0
	}

	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	offset := (page - 1) * pageSize
	end := min(offset+pageSize, total)
	return Page{
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalCount: total,
		Offset:     offset,
		End:        end,
	}
}
