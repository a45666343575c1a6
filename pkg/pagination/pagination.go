package pagination

import (
	"net/http"
	"strconv"
)

// MaxLimit caps how many records a single page may request.
const MaxLimit = 100

// Params holds offset/limit pagination extracted from query strings.
type Params struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// DefaultParams returns sensible pagination defaults.
func DefaultParams() Params {
	return Params{Offset: 0, Limit: 20}
}

// FromRequest extracts pagination parameters from an HTTP request.
// It understands both offset/limit and page/per_page; offset/limit wins when
// both are present. Invalid values are ignored in favour of defaults.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()
	q := r.URL.Query()

	if v, ok := positive(q.Get("per_page")); ok && v <= MaxLimit {
		p.Limit = v
	}
	if v, ok := positive(q.Get("page")); ok {
		p.Offset = (v - 1) * p.Limit
	}

	if v, ok := positive(q.Get("limit")); ok && v <= MaxLimit {
		p.Limit = v
	}
	if raw := q.Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			p.Offset = v
		}
	}

	return p
}

func positive(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// Result wraps one page of an upstream listing that does not report totals.
type Result[T any] struct {
	Data    []T  `json:"data"`
	Offset  int  `json:"offset"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"has_more"`
	HasPrev bool `json:"has_prev"`
}

// NewResult creates a paginated result. A full page is taken to mean more
// records may follow.
func NewResult[T any](data []T, params Params) Result[T] {
	if data == nil {
		data = []T{}
	}
	return Result[T]{
		Data:    data,
		Offset:  params.Offset,
		Limit:   params.Limit,
		HasMore: params.Limit > 0 && len(data) >= params.Limit,
		HasPrev: params.Offset > 0,
	}
}
