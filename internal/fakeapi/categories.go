package fakeapi

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/glownatura-admin/internal/domain"
	"github.com/prohmpiriya/glownatura-admin/pkg/response"
)

type reorderRequest struct {
	Categories []struct {
		ID           string `json:"id"`
		DisplayOrder int    `json:"displayOrder"`
	} `json:"categories" binding:"required"`
}

func (s *Server) withProductCount(cat *domain.Category) domain.Category {
	out := *cat
	out.ProductCount = 0
	for _, p := range s.products.all() {
		if p.CategoryID() == cat.ID {
			out.ProductCount++
		}
	}
	return out
}

// GET /api/categories
func (s *Server) listCategories(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	search := c.Query("search")
	var matched []*domain.Category
	for _, cat := range s.categories.all() {
		if search != "" && !containsFold(cat.Name, search) {
			continue
		}
		matched = append(matched, cat)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].DisplayOrder < matched[j].DisplayOrder
	})

	page, p := paginate(c, matched)
	items := make([]domain.Category, 0, len(page))
	for _, cat := range page {
		items = append(items, s.withProductCount(cat))
	}
	response.Paginated(c, items, p)
}

// GET /api/categories/:id
func (s *Server) getCategory(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat, ok := s.categories.get(c.Param("id"))
	if !ok {
		response.NotFound(c, "Category not found")
		return
	}
	response.Success(c, s.withProductCount(cat))
}

func (s *Server) validateCategory(c *gin.Context, cat *domain.Category) bool {
	if strings.TrimSpace(cat.Name) == "" {
		response.BadRequest(c, "Category name is required")
		return false
	}
	parent := cat.ParentID()
	if parent == "" {
		return true
	}
	if parent == cat.ID {
		response.BadRequest(c, "A category cannot be its own parent")
		return false
	}
	if _, ok := s.categories.get(parent); !ok {
		response.BadRequest(c, "Parent category does not exist")
		return false
	}
	return true
}

// POST /api/categories
func (s *Server) createCategory(c *gin.Context) {
	var cat domain.Category
	if err := c.ShouldBindJSON(&cat); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.validateCategory(c, &cat) {
		return
	}
	if cat.Slug == "" {
		cat.Slug = slugify(cat.Name)
	}
	for _, other := range s.categories.all() {
		if other.Slug == cat.Slug {
			response.Error(c, http.StatusConflict, "DUPLICATE_SLUG", fmt.Sprintf("Category %q already exists", cat.Name))
			return
		}
	}
	if cat.DisplayOrder == 0 {
		cat.DisplayOrder = s.categories.len() + 1
	}

	now := s.now()
	cat.ID = newID()
	cat.CreatedAt = now
	cat.UpdatedAt = now
	s.categories.put(cat.ID, &cat)

	response.Created(c, s.withProductCount(&cat))
}

// PUT /api/categories/:id
func (s *Server) updateCategory(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.categories.get(c.Param("id"))
	if !ok {
		response.NotFound(c, "Category not found")
		return
	}

	next := *existing
	if err := c.ShouldBindJSON(&next); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	next.Record = existing.Record
	if !s.validateCategory(c, &next) {
		return
	}
	next.UpdatedAt = s.now()
	s.categories.put(next.ID, &next)

	response.Success(c, s.withProductCount(&next))
}

// DELETE /api/categories/:id
func (s *Server) deleteCategory(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.Param("id")
	if _, ok := s.categories.get(id); !ok {
		response.NotFound(c, "Category not found")
		return
	}
	for _, p := range s.products.all() {
		if p.CategoryID() == id {
			response.BadRequest(c, "Cannot delete a category that still has products")
			return
		}
	}
	for _, other := range s.categories.all() {
		if other.ParentID() == id {
			response.BadRequest(c, "Cannot delete a category that has subcategories")
			return
		}
	}

	s.categories.remove(id)
	response.SuccessMessage(c, "Category deleted successfully", nil)
}

// POST /api/categories/reorder
func (s *Server) reorderCategories(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range req.Categories {
		if _, ok := s.categories.get(entry.ID); !ok {
			response.NotFound(c, fmt.Sprintf("Category %s not found", entry.ID))
			return
		}
	}
	now := s.now()
	for _, entry := range req.Categories {
		cat, _ := s.categories.get(entry.ID)
		cat.DisplayOrder = entry.DisplayOrder
		cat.UpdatedAt = now
	}
	response.SuccessMessage(c, "Categories reordered successfully", nil)
}
