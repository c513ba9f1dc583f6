// Package query filters entity collections by a search term and a set of
// discrete filter dimensions, and slices the result into pages.
//
// Filtering is a pure function of (records, query): the input is never
// mutated and the relative order of matching records is preserved.
package query

import (
	"sort"
	"strconv"
	"strings"
)

// All bypasses a filter dimension. An empty value does the same.
const All = "all"

const DefaultPageSize = 10

// Query is a value type. The With* methods return modified copies, and any
// change to the search term, a filter or the page size resets Page to 1.
type Query struct {
	Search   string            `json:"search"`
	Filters  map[string]string `json:"filters,omitempty"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

func New() Query {
	return Query{Page: 1, PageSize: DefaultPageSize}
}

func (q Query) WithSearch(term string) Query {
	q.Search = term
	q.Page = 1
	return q
}

func (q Query) WithFilter(dimension, value string) Query {
	filters := make(map[string]string, len(q.Filters)+1)
	for k, v := range q.Filters {
		filters[k] = v
	}
	filters[dimension] = value
	q.Filters = filters
	q.Page = 1
	return q
}

func (q Query) WithPage(page int) Query {
	q.Page = page
	return q
}

func (q Query) WithPageSize(size int) Query {
	q.PageSize = size
	q.Page = 1
	return q
}

// Active reports whether value restricts its dimension.
func Active(value string) bool {
	return value != "" && value != All
}

// Key is a canonical form of the filtering part of q (search and active
// filters). Page and page size are not part of it.
func (q Query) Key() string {
	dims := make([]string, 0, len(q.Filters))
	for k, v := range q.Filters {
		if Active(v) {
			dims = append(dims, k)
		}
	}
	sort.Strings(dims)

	var b strings.Builder
	b.WriteString("s=")
	b.WriteString(strconv.Quote(q.Search))
	for _, k := range dims {
		b.WriteByte('&')
		b.WriteString(strconv.Quote(k))
		b.WriteByte('=')
		b.WriteString(strconv.Quote(q.Filters[k]))
	}
	return b.String()
}
