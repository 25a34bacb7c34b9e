package state

import (
	"context"
	"fmt"
	"io"

	"github.com/prohmpiriya/glownatura-admin/internal/domain"
	"github.com/prohmpiriya/glownatura-admin/internal/repository"
	"github.com/prohmpiriya/glownatura-admin/internal/resource"
)

type ProductRepository interface {
	List(ctx context.Context, q resource.Query) (*resource.Page[domain.Product], error)
	Delete(ctx context.Context, id string) error
	BulkUpdateStatus(ctx context.Context, ids []string, status domain.ProductStatus) error
}

// ProductList is the product catalogue screen
type ProductList struct {
	*List[domain.Product]
	repo ProductRepository
}

func NewProductList(repo ProductRepository, q resource.Query, opts Options) *ProductList {
	opts.LoadError = "Failed to load products"
	return &ProductList{List: NewList[domain.Product](repo.List, q, opts), repo: repo}
}

func (p *ProductList) Delete(ctx context.Context, id string) error {
	return p.Mutate(ctx, "Product deleted successfully", "Failed to delete product", func(ctx context.Context) error {
		return p.repo.Delete(ctx, id)
	})
}

func (p *ProductList) BulkUpdateStatus(ctx context.Context, ids []string, status domain.ProductStatus) error {
	return p.Mutate(ctx, fmt.Sprintf("%d products updated", len(ids)), "Failed to update products", func(ctx context.Context) error {
		return p.repo.BulkUpdateStatus(ctx, ids, status)
	})
}

type OrderRepository interface {
	List(ctx context.Context, q resource.Query) (*resource.Page[domain.Order], error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, trackingNumber string) (*domain.Order, error)
	ConfirmPayment(ctx context.Context, id string, paymentProof string) (*domain.Order, error)
	Cancel(ctx context.Context, id string, reason string) (*domain.Order, error)
	AddNote(ctx context.Context, id string, note string) (*domain.Order, error)
}

// orderActions are the order mutations shared by the list and detail screens
type orderActions struct {
	repo   OrderRepository
	mutate func(ctx context.Context, successMsg, failMsg string, fn func(ctx context.Context) error) error
}

func (a orderActions) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, trackingNumber string) error {
	return a.mutate(ctx, "Order status updated", "Failed to update order status", func(ctx context.Context) error {
		_, err := a.repo.UpdateStatus(ctx, id, status, trackingNumber)
		return err
	})
}

func (a orderActions) ConfirmPayment(ctx context.Context, id string, paymentProof string) error {
	return a.mutate(ctx, "Payment confirmed", "Failed to confirm payment", func(ctx context.Context) error {
		_, err := a.repo.ConfirmPayment(ctx, id, paymentProof)
		return err
	})
}

func (a orderActions) Cancel(ctx context.Context, id string, reason string) error {
	return a.mutate(ctx, "Order cancelled", "Failed to cancel order", func(ctx context.Context) error {
		_, err := a.repo.Cancel(ctx, id, reason)
		return err
	})
}

func (a orderActions) AddNote(ctx context.Context, id string, note string) error {
	return a.mutate(ctx, "Note added", "Failed to add note", func(ctx context.Context) error {
		_, err := a.repo.AddNote(ctx, id, note)
		return err
	})
}

// OrderList is the order management screen
type OrderList struct {
	*List[domain.Order]
	orderActions
}

func NewOrderList(repo OrderRepository, q resource.Query, opts Options) *OrderList {
	opts.LoadError = "Failed to load orders"
	l := NewList[domain.Order](repo.List, q, opts)
	return &OrderList{List: l, orderActions: orderActions{repo: repo, mutate: l.Mutate}}
}

// OrderDetail is a single order. Its mutations reload the order rather
// than a listing.
type OrderDetail struct {
	*Detail[domain.Order]
	orderActions

	id string
}

func NewOrderDetail(repo OrderRepository, id string, opts Options) *OrderDetail {
	opts.LoadError = "Failed to load order"
	d := NewDetail[domain.Order](func(ctx context.Context) (*domain.Order, error) {
		return repo.Get(ctx, id)
	}, opts)
	return &OrderDetail{Detail: d, orderActions: orderActions{repo: repo, mutate: d.Mutate}, id: id}
}

// ID returns the id of the order shown
func (o *OrderDetail) ID() string {
	return o.id
}

type ReviewRepository interface {
	List(ctx context.Context, q resource.Query) (*resource.Page[domain.Review], error)
	UpdateStatus(ctx context.Context, id string, status domain.ReviewStatus) (*domain.Review, error)
	BulkUpdateStatus(ctx context.Context, ids []string, status domain.ReviewStatus) error
	Delete(ctx context.Context, id string) error
}

// ReviewList is the review moderation screen
type ReviewList struct {
	*List[domain.Review]
	repo ReviewRepository
}

func NewReviewList(repo ReviewRepository, q resource.Query, opts Options) *ReviewList {
	opts.LoadError = "Failed to load reviews"
	return &ReviewList{List: NewList[domain.Review](repo.List, q, opts), repo: repo}
}

func (r *ReviewList) UpdateStatus(ctx context.Context, id string, status domain.ReviewStatus) error {
	return r.Mutate(ctx, "Review "+string(status), "Failed to update review status", func(ctx context.Context) error {
		_, err := r.repo.UpdateStatus(ctx, id, status)
		return err
	})
}

func (r *ReviewList) BulkUpdateStatus(ctx context.Context, ids []string, status domain.ReviewStatus) error {
	return r.Mutate(ctx, fmt.Sprintf("%d reviews %s", len(ids), status), "Failed to update reviews", func(ctx context.Context) error {
		return r.repo.BulkUpdateStatus(ctx, ids, status)
	})
}

func (r *ReviewList) Delete(ctx context.Context, id string) error {
	return r.Mutate(ctx, "Review deleted successfully", "Failed to delete review", func(ctx context.Context) error {
		return r.repo.Delete(ctx, id)
	})
}

type CategoryRepository interface {
	List(ctx context.Context, q resource.Query) (*resource.Page[domain.Category], error)
	Create(ctx context.Context, patch any) (*domain.Category, error)
	Update(ctx context.Context, id string, patch any) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, order []repository.CategoryOrder) error
}

// CategoryList is the category tree screen
type CategoryList struct {
	*List[domain.Category]
	repo CategoryRepository
}

func NewCategoryList(repo CategoryRepository, q resource.Query, opts Options) *CategoryList {
	opts.LoadError = "Failed to load categories"
	return &CategoryList{List: NewList[domain.Category](repo.List, q, opts), repo: repo}
}

func (c *CategoryList) Create(ctx context.Context, patch any) error {
	return c.Mutate(ctx, "Category created", "Failed to create category", func(ctx context.Context) error {
		_, err := c.repo.Create(ctx, patch)
		return err
	})
}

func (c *CategoryList) Update(ctx context.Context, id string, patch any) error {
	return c.Mutate(ctx, "Category updated", "Failed to update category", func(ctx context.Context) error {
		_, err := c.repo.Update(ctx, id, patch)
		return err
	})
}

func (c *CategoryList) Delete(ctx context.Context, id string) error {
	return c.Mutate(ctx, "Category deleted", "Failed to delete category", func(ctx context.Context) error {
		return c.repo.Delete(ctx, id)
	})
}

func (c *CategoryList) Reorder(ctx context.Context, order []repository.CategoryOrder) error {
	return c.Mutate(ctx, "Categories reordered", "Failed to reorder categories", func(ctx context.Context) error {
		return c.repo.Reorder(ctx, order)
	})
}

type MediaRepository interface {
	List(ctx context.Context, q resource.Query) (*resource.Page[domain.Media], error)
	Upload(ctx context.Context, filename string, content io.Reader) ([]domain.Media, error)
	Delete(ctx context.Context, id string) error
}

// MediaList is the media library screen
type MediaList struct {
	*List[domain.Media]
	repo MediaRepository
}

func NewMediaList(repo MediaRepository, q resource.Query, opts Options) *MediaList {
	opts.LoadError = "Failed to load media"
	return &MediaList{List: NewList[domain.Media](repo.List, q, opts), repo: repo}
}

// Upload stores a file and returns the created assets
func (m *MediaList) Upload(ctx context.Context, filename string, content io.Reader) ([]domain.Media, error) {
	var uploaded []domain.Media
	err := m.Mutate(ctx, "Image uploaded", "Failed to upload image", func(ctx context.Context) error {
		var err error
		uploaded, err = m.repo.Upload(ctx, filename, content)
		return err
	})
	return uploaded, err
}

func (m *MediaList) Delete(ctx context.Context, id string) error {
	return m.Mutate(ctx, "Media deleted", "Failed to delete media", func(ctx context.Context) error {
		return m.repo.Delete(ctx, id)
	})
}

var (
	_ ProductRepository  = (*repository.Products)(nil)
	_ OrderRepository    = (*repository.Orders)(nil)
	_ ReviewRepository   = (*repository.Reviews)(nil)
	_ CategoryRepository = (*repository.Categories)(nil)
	_ MediaRepository    = (*repository.Media)(nil)
)
