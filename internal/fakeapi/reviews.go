package fakeapi

import (
	"fmt"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/glownatura-admin/internal/domain"
	"github.com/prohmpiriya/glownatura-admin/pkg/response"
)

type reviewStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *Server) populatedReview(r *domain.Review) domain.Review {
	out := *r
	if p, ok := s.products.get(r.ProductID()); ok {
		cp := *p
		out.Product = domain.RefTo(cp.ID, &cp)
	}
	return out
}

// GET /api/reviews
func (s *Server) listReviews(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := c.Query("status")
	product := c.Query("product")
	search := c.Query("search")

	var matched []*domain.Review
	for _, r := range s.reviews.all() {
		if status != "" && string(r.Status) != status {
			continue
		}
		if product != "" && r.ProductID() != product {
			continue
		}
		if search != "" && !containsFold(r.Comment, search) && !containsFold(r.User.Name, search) {
			continue
		}
		matched = append(matched, r)
	}

	byRating := c.Query("sortBy") == "rating"
	desc := descending(c)
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if desc {
			a, b = b, a
		}
		if byRating {
			return a.Rating < b.Rating
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})

	page, p := paginate(c, matched)
	items := make([]domain.Review, 0, len(page))
	for _, r := range page {
		items = append(items, s.populatedReview(r))
	}
	response.Paginated(c, items, p)
}

// GET /api/reviews/:id
func (s *Server) getReview(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviews.get(c.Param("id"))
	if !ok {
		response.NotFound(c, "Review not found")
		return
	}
	response.Success(c, s.populatedReview(r))
}

// PUT /api/reviews/:id/status
func (s *Server) updateReviewStatus(c *gin.Context) {
	var req reviewStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Status is required")
		return
	}
	status := domain.ReviewStatus(req.Status)
	if !status.Valid() {
		response.BadRequest(c, fmt.Sprintf("Invalid review status %q", req.Status))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviews.get(c.Param("id"))
	if !ok {
		response.NotFound(c, "Review not found")
		return
	}
	r.Status = status
	r.UpdatedAt = s.now()
	response.SuccessMessage(c, "Review "+req.Status, s.populatedReview(r))
}

// PUT /api/reviews/bulk/status
func (s *Server) bulkReviewStatus(c *gin.Context) {
	var req bulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	status := domain.ReviewStatus(req.Status)
	if !status.Valid() {
		response.BadRequest(c, fmt.Sprintf("Invalid review status %q", req.Status))
		return
	}
	if len(req.ReviewIDs) == 0 {
		response.BadRequest(c, "reviewIds must not be empty")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated := 0
	now := s.now()
	for _, id := range req.ReviewIDs {
		if r, ok := s.reviews.get(id); ok {
			r.Status = status
			r.UpdatedAt = now
			updated++
		}
	}
	response.SuccessMessage(c, fmt.Sprintf("%d reviews updated", updated), gin.H{"modifiedCount": updated})
}

// DELETE /api/reviews/:id
func (s *Server) deleteReview(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.reviews.remove(c.Param("id")) {
		response.NotFound(c, "Review not found")
		return
	}
	response.SuccessMessage(c, "Review deleted successfully", nil)
}
