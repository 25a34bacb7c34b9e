package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(v float64) *float64 { return &v }

func TestProduct_Pricing(t *testing.T) {
	tests := []struct {
		name     string
		product  Product
		onSale   bool
		discount int
		active   float64
	}{
		{"no sale", Product{Price: 100}, false, 0, 100},
		{"on sale", Product{Price: 80, SalePrice: price(60)}, true, 25, 60},
		{"rounded discount", Product{Price: 30, SalePrice: price(20)}, true, 33, 20},
		{"sale above price", Product{Price: 50, SalePrice: price(55)}, false, 0, 55},
		{"zero sale price", Product{Price: 50, SalePrice: price(0)}, true, 0, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.onSale, tt.product.IsOnSale())
			assert.Equal(t, tt.discount, tt.product.DiscountPercentage())
			assert.Equal(t, tt.active, tt.product.ActivePrice())
		})
	}
}

func TestProduct_IsLowStock(t *testing.T) {
	assert.True(t, (&Product{Stock: 5, LowStockThreshold: 5}).IsLowStock())
	assert.False(t, (&Product{Stock: 6, LowStockThreshold: 5}).IsLowStock())
}

func TestProduct_DecodesCategoryEitherWay(t *testing.T) {
	var byID Product
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"p1","category":"c1","createdAt":"2026-01-02T03:04:05.000Z"}`), &byID))
	assert.Equal(t, "c1", byID.CategoryID())
	assert.False(t, byID.Category.Populated())
	assert.Equal(t, 2026, byID.CreatedAt.Year())

	var populated Product
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"p1","category":{"_id":"c2","name":"Rings","slug":"rings"}}`), &populated))
	assert.Equal(t, "c2", populated.CategoryID())
	require.True(t, populated.Category.Populated())
	assert.Equal(t, "Rings", populated.Category.Value().Name)
}

func TestRef_JSON(t *testing.T) {
	var r Ref[Category]
	require.NoError(t, json.Unmarshal([]byte(`null`), &r))
	assert.True(t, r.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`42`), &r))

	out, err := json.Marshal(RefID[Category]("c1"))
	require.NoError(t, err)
	assert.Equal(t, `"c1"`, string(out))

	out, err = json.Marshal(Ref[Category]{})
	require.NoError(t, err)
	assert.Equal(t, `null`, string(out))

	cat := &Category{Record: Record{ID: "c9"}, Name: "Necklaces"}
	out, err = json.Marshal(RefTo("c9", cat))
	require.NoError(t, err)
	assert.Contains(t, string(out), `"name":"Necklaces"`)
}

func TestCategory_IsTopLevel(t *testing.T) {
	var top, child Category
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"c1","name":"Jewelry"}`), &top))
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"c2","parent":{"_id":"c1","name":"Jewelry"}}`), &child))

	assert.True(t, top.IsTopLevel())
	assert.False(t, child.IsTopLevel())
	assert.Equal(t, "c1", child.ParentID())
}

func TestReview_Status(t *testing.T) {
	r := Review{Status: ReviewPending}
	assert.True(t, r.IsPending())
	r.Status = ReviewApproved
	assert.True(t, r.IsApproved())
	r.Status = ReviewRejected
	assert.True(t, r.IsRejected())
	assert.False(t, r.IsPending())
}

func TestOrderStatus_Transitions(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
		ok   bool
	}{
		{OrderPending, OrderConfirmed, true},
		{OrderPending, OrderCancelled, true},
		{OrderPending, OrderShipped, false},
		{OrderConfirmed, OrderProcessing, true},
		{OrderProcessing, OrderShipped, true},
		{OrderShipped, OrderDelivered, true},
		{OrderShipped, OrderCancelled, false},
		{OrderDelivered, OrderPending, false},
		{OrderCancelled, OrderPending, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}

	assert.Empty(t, OrderDelivered.NextStatuses())
	assert.Empty(t, OrderCancelled.NextStatuses())
	assert.Equal(t, []OrderStatus{OrderShipped, OrderCancelled}, OrderProcessing.NextStatuses())

	next := OrderPending.NextStatuses()
	next[0] = OrderDelivered
	assert.Equal(t, OrderConfirmed, OrderPending.NextStatuses()[0])
}

func TestOrder_Accessors(t *testing.T) {
	o := Order{Status: OrderShipped, PaymentStatus: PaymentPaid}
	assert.True(t, o.IsShipped())
	assert.True(t, o.IsPaid())
	assert.False(t, o.IsTerminal())
	assert.True(t, o.Status.RequiresTracking())

	o.Status = OrderDelivered
	assert.True(t, o.IsDelivered())
	assert.True(t, o.IsTerminal())

	assert.True(t, OrderConfirmed.Valid())
	assert.False(t, OrderStatus("lost").Valid())
}

func TestAdminAndMedia(t *testing.T) {
	assert.True(t, (&Admin{Role: RoleSuperAdmin}).IsSuperAdmin())
	assert.False(t, (&Admin{Role: RoleAdmin}).IsSuperAdmin())

	m := Media{CloudinaryURL: "https://cdn.test/a.png"}
	assert.True(t, m.IsUnused())
	assert.Equal(t, "https://cdn.test/a.png", m.Location())
	m.UsedIn = []string{"p1"}
	assert.False(t, m.IsUnused())
}
