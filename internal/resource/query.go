package resource

import (
	"net/url"
	"sort"
	"strconv"
)

// SortOrder is the direction of a sorted listing
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Query is the list request understood by every collection endpoint.
// Zero-valued fields are left out of the query string.
type Query struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder SortOrder
	// Filters carries entity specific parameters such as status or category
	Filters map[string]string
}

// Values encodes the query
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
	}
	if q.SortOrder != "" {
		v.Set("sortOrder", string(q.SortOrder))
	}

	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if val := q.Filters[k]; k != "" && val != "" {
			v.Set(k, val)
		}
	}
	return v
}

// With returns a copy of q with filter key set to value. An empty value
// removes the filter.
func (q Query) With(key, value string) Query {
	filters := make(map[string]string, len(q.Filters)+1)
	for k, v := range q.Filters {
		filters[k] = v
	}
	if value == "" {
		delete(filters, key)
	} else {
		filters[key] = value
	}
	q.Filters = filters
	return q
}

// Filter returns the value of filter key, "" when unset
func (q Query) Filter(key string) string {
	return q.Filters[key]
}
