package fakeapi

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prohmpiriya/glownatura-admin/pkg/response"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// table keeps rows in insertion order. Callers hold Server.mu.
type table[T any] struct {
	order []string
	rows  map[string]*T
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]*T)}
}

func (t *table[T]) put(id string, row *T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = row
}

func (t *table[T]) get(id string) (*T, bool) {
	row, ok := t.rows[id]
	return row, ok
}

func (t *table[T]) remove(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

func (t *table[T]) all() []*T {
	out := make([]*T, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.rows[id])
	}
	return out
}

func (t *table[T]) len() int {
	return len(t.order)
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
}

// pageParams reads page and limit from the query string
func pageParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.Query("page"))
	limit, _ = strconv.Atoi(c.Query("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

// paginate slices items for the requested page
func paginate[T any](c *gin.Context, items []T) ([]T, *response.Pagination) {
	page, limit := pageParams(c)
	p := response.NewPagination(page, limit, len(items))

	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}, p
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], p
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func descending(c *gin.Context) bool {
	return c.Query("sortOrder") != "asc"
}
