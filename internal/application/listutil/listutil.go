package listutil

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultPerPage is the default number of rows per page.
const DefaultPerPage = 20

// PerPageOptions are the allowed rows-per-page values.
var PerPageOptions = []int{10, 20, 50, 100}

// PageParams carries pagination parameters parsed from a request.
type PageParams struct {
	Page    int // 1-indexed page number
	PerPage int
}

// PageInfo carries pagination metadata returned alongside a list.
type PageInfo struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

// ParsePageParams extracts page and per_page from URL query values.
// PRE: none
// POST: returns valid PageParams with defaults applied
func ParsePageParams(q url.Values) PageParams {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if !isValidPerPage(perPage) {
		perPage = DefaultPerPage
	}
	return PageParams{Page: page, PerPage: perPage}
}

// ParseFilters keeps the query values whose key is in allowed and whose
// lowercased value is one of the allowed values for that key. An empty
// allowed slice accepts any non-blank value.
// POST: every returned value is trimmed and non-empty
func ParseFilters(q url.Values, allowed map[string][]string) map[string]string {
	out := make(map[string]string)
	for key, values := range allowed {
		v := strings.TrimSpace(q.Get(key))
		if v == "" {
			continue
		}
		if len(values) == 0 {
			out[key] = v
			continue
		}
		v = strings.ToLower(v)
		for _, ok := range values {
			if v == ok {
				out[key] = v
				break
			}
		}
	}
	return out
}

// NewPageInfo computes pagination metadata.
// PRE: total >= 0
// POST: 1 <= Page <= TotalPages; TotalPages >= 1
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return PageInfo{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
}

// Offset returns the SQL OFFSET for the current page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

func isValidPerPage(n int) bool {
	for _, opt := range PerPageOptions {
		if n == opt {
			return true
		}
	}
	return false
}
