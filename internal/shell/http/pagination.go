package http

import (
	"net/url"
	"strconv"

	"analytics-exporter/internal/core/usecases"
)

// PaginationMeta carries the total number of matching records
type PaginationMeta struct {
	Count int `json:"count"`
}

// PaginationLinks holds navigation links; empty links are omitted
type PaginationLinks struct {
	First string `json:"first,omitempty"`
	Last  string `json:"last,omitempty"`
	Next  string `json:"next,omitempty"`
	Prev  string `json:"prev,omitempty"`
}

// PaginatedResponse is the list envelope returned by collection endpoints
type PaginatedResponse struct {
	Meta  PaginationMeta  `json:"meta"`
	Links PaginationLinks `json:"links"`
	Data  interface{}     `json:"data"`
}

// parsePaginationParams reads offset and limit, falling back to defaults for
// missing, malformed or negative values and capping limit
func parsePaginationParams(u *url.URL) (int, int) {
	offset := 0
	limit := usecases.DefaultRunPageLimit

	q := u.Query()
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > usecases.MaxRunPageLimit {
		limit = usecases.MaxRunPageLimit
	}

	return offset, limit
}

func pageLink(u *url.URL, offset, limit int) string {
	link := *u
	q := link.Query()
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	link.RawQuery = q.Encode()
	return link.String()
}

func calculateOffsetOfLastPage(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return ((total - 1) / limit) * limit
}

func buildNavigationLinks(u *url.URL, offset, limit, total int) PaginationLinks {
	if total == 0 {
		return PaginationLinks{}
	}

	links := PaginationLinks{
		First: pageLink(u, 0, limit),
		Last:  pageLink(u, calculateOffsetOfLastPage(total, limit), limit),
	}
	if offset+limit < total {
		links.Next = pageLink(u, offset+limit, limit)
	}
	if offset > 0 {
		prev := offset - limit
		if prev < 0 {
			prev = 0
		}
		links.Prev = pageLink(u, prev, limit)
	}
	return links
}

func buildPaginatedResponse(u *url.URL, offset, limit, total int, data interface{}) PaginatedResponse {
	return PaginatedResponse{
		Meta:  PaginationMeta{Count: total},
		Links: buildNavigationLinks(u, offset, limit, total),
		Data:  data,
	}
}
