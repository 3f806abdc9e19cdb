package api

import (
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/apperrors"
	"github.com/pageza/foodgram/backend/internal/types"
)

// Paginator reads page/limit query parameters and builds the list envelope.
type Paginator struct {
	DefaultLimit int
	MaxLimit     int
}

// Request parses ?page=&limit=. A malformed or non-positive page is
// NotFound; limit falls back to the default and is capped at MaxLimit.
func (p Paginator) Request(c *gin.Context) (types.PageRequest, error) {
	req := types.PageRequest{Page: 1, Limit: p.DefaultLimit}

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return req, apperrors.NotFound("invalid page")
		}
		req.Page = page
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			req.Limit = limit
		}
	}
	if p.MaxLimit > 0 && req.Limit > p.MaxLimit {
		req.Limit = p.MaxLimit
	}
	return req, nil
}

// newPage wraps results with the total count and links to the neighbouring
// pages.
func newPage[T any](c *gin.Context, req types.PageRequest, results []T, total int64) types.Page[T] {
	if results == nil {
		results = []T{}
	}
	page := types.Page[T]{Count: total, Results: results}

	if int64(req.Page*req.Limit) < total {
		next := pageURL(c, req.Page+1)
		page.Next = &next
	}
	if req.Page > 1 {
		prev := pageURL(c, req.Page-1)
		page.Previous = &prev
	}
	return page
}

// pageURL returns the absolute URL of the current request with the page
// parameter replaced. The first page is addressed without it.
func pageURL(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	query := c.Request.URL.Query()
	if page <= 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(page))
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: query.Encode(),
	}
	return u.String()
}
