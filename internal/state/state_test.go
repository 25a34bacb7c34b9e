package state

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prohmpiriya/glownatura-admin/internal/apierror"
	"github.com/prohmpiriya/glownatura-admin/internal/domain"
	"github.com/prohmpiriya/glownatura-admin/internal/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name string
}

func pageOf(names ...string) *resource.Page[item] {
	items := make([]item, 0, len(names))
	for _, n := range names {
		items = append(items, item{Name: n})
	}
	return &resource.Page[item]{Items: items, Pagination: resource.Pagination{Page: 1, Total: len(names)}}
}

func TestList_SetQueryFetchesOnce(t *testing.T) {
	var calls int32
	var gotQuery resource.Query
	l := NewList[item](func(_ context.Context, q resource.Query) (*resource.Page[item], error) {
		atomic.AddInt32(&calls, 1)
		gotQuery = q
		return pageOf("rose", "jasmine"), nil
	}, resource.Query{Limit: 10}, Options{})

	assert.Empty(t, l.Snapshot().Items)

	q := resource.Query{Page: 2, Limit: 10, Search: "serum"}
	require.NoError(t, l.SetQuery(context.Background(), q))

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, q, gotQuery)

	snap := l.Snapshot()
	assert.Len(t, snap.Items, 2)
	assert.Equal(t, 2, snap.Pagination.Total)
	assert.Equal(t, q, snap.Query)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Err)

	require.NoError(t, l.Refetch(context.Background()))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, q, gotQuery)
}

func TestList_LoadingWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	l := NewList[item](func(context.Context, resource.Query) (*resource.Page[item], error) {
		<-release
		return pageOf("a"), nil
	}, resource.Query{}, Options{})

	var mu sync.Mutex
	var loading []bool
	l.Subscribe(func(s Snapshot[item]) {
		mu.Lock()
		defer mu.Unlock()
		loading = append(loading, s.Loading)
	})

	done := make(chan error, 1)
	go func() { done <- l.Refetch(context.Background()) }()

	assert.Eventually(t, func() bool { return l.Snapshot().Loading }, time.Second, 5*time.Millisecond)
	close(release)
	require.NoError(t, <-done)

	assert.False(t, l.Snapshot().Loading)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{true, false}, loading)
}

func TestList_FetchFailureSetsErrAndNotifies(t *testing.T) {
	fail := true
	rec := &Recorder{}
	l := NewList[item](func(context.Context, resource.Query) (*resource.Page[item], error) {
		if fail {
			return nil, apierror.HTTP(http.StatusInternalServerError, "", "Database unavailable", nil)
		}
		return pageOf("a"), nil
	}, resource.Query{}, Options{Notifier: rec, LoadError: "Failed to load things"})

	err := l.Refetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, "HTTP_500", apierror.CodeOf(err))
	assert.Equal(t, "Database unavailable", l.Snapshot().Err)
	assert.Equal(t, []Notification{{Summary: "Failed to load things", Detail: "Database unavailable"}}, rec.All())

	// Err is cleared as soon as the next fetch starts
	var errAtStart string
	unsubscribe := l.Subscribe(func(s Snapshot[item]) {
		if s.Loading {
			errAtStart = s.Err
		}
	})
	defer unsubscribe()

	fail = false
	require.NoError(t, l.Refetch(context.Background()))
	assert.Equal(t, "", errAtStart)
	assert.Equal(t, "", l.Snapshot().Err)
}

func TestList_PlainErrorFallsBackToLoadError(t *testing.T) {
	l := NewList[item](func(context.Context, resource.Query) (*resource.Page[item], error) {
		return nil, errors.New("")
	}, resource.Query{}, Options{LoadError: "Failed to load things"})

	require.Error(t, l.Refetch(context.Background()))
	assert.Equal(t, "Failed to load things", l.Snapshot().Err)
}

// An earlier query answering after a later one must not win
func TestList_StaleResponseDiscarded(t *testing.T) {
	startedA := make(chan struct{})
	releaseA := make(chan struct{})

	l := NewList[item](func(_ context.Context, q resource.Query) (*resource.Page[item], error) {
		if q.Filter("status") == "pending" {
			close(startedA)
			<-releaseA
			return pageOf("pending-order"), nil
		}
		return pageOf("shipped-order"), nil
	}, resource.Query{}, Options{})

	ctx := context.Background()
	done := make(chan error, 1)
	go func() { done <- l.SetQuery(ctx, resource.Query{}.With("status", "pending")) }()
	<-startedA

	require.NoError(t, l.SetQuery(ctx, resource.Query{}.With("status", "shipped")))
	assert.False(t, l.Snapshot().Loading)

	close(releaseA)
	require.NoError(t, <-done)

	snap := l.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "shipped-order", snap.Items[0].Name)
	assert.Equal(t, "shipped", snap.Query.Filter("status"))
	assert.False(t, snap.Loading)
}

func TestList_SubscribeAndUnsubscribe(t *testing.T) {
	l := NewList[item](func(context.Context, resource.Query) (*resource.Page[item], error) {
		return pageOf("a"), nil
	}, resource.Query{}, Options{})

	var hits int32
	unsubscribe := l.Subscribe(func(Snapshot[item]) { atomic.AddInt32(&hits, 1) })

	require.NoError(t, l.Refetch(context.Background()))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))

	unsubscribe()
	require.NoError(t, l.Refetch(context.Background()))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestList_SnapshotIsACopy(t *testing.T) {
	l := NewList[item](func(context.Context, resource.Query) (*resource.Page[item], error) {
		return pageOf("a"), nil
	}, resource.Query{}, Options{})
	require.NoError(t, l.Refetch(context.Background()))

	snap := l.Snapshot()
	snap.Items[0].Name = "mutated"
	assert.Equal(t, "a", l.Snapshot().Items[0].Name)
}

type fakeOrders struct {
	lists     int32
	gets      int32
	statusErr error
	order     domain.Order
}

func (f *fakeOrders) List(context.Context, resource.Query) (*resource.Page[domain.Order], error) {
	atomic.AddInt32(&f.lists, 1)
	return &resource.Page[domain.Order]{Items: []domain.Order{f.order}}, nil
}

func (f *fakeOrders) Get(context.Context, string) (*domain.Order, error) {
	atomic.AddInt32(&f.gets, 1)
	o := f.order
	return &o, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, _ string, status domain.OrderStatus, _ string) (*domain.Order, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	f.order.Status = status
	return &f.order, nil
}

func (f *fakeOrders) ConfirmPayment(context.Context, string, string) (*domain.Order, error) {
	f.order.PaymentStatus = domain.PaymentPaid
	return &f.order, nil
}

func (f *fakeOrders) Cancel(context.Context, string, string) (*domain.Order, error) {
	f.order.Status = domain.OrderCancelled
	return &f.order, nil
}

func (f *fakeOrders) AddNote(context.Context, string, string) (*domain.Order, error) {
	return &f.order, nil
}

func TestOrderList_MutationSuccessRefetches(t *testing.T) {
	repo := &fakeOrders{order: domain.Order{Status: domain.OrderPending}}
	rec := &Recorder{}
	l := NewOrderList(repo, resource.Query{}, Options{Notifier: rec})
	ctx := context.Background()

	require.NoError(t, l.Refetch(ctx))
	require.NoError(t, l.UpdateStatus(ctx, "o1", domain.OrderConfirmed, ""))

	assert.Equal(t, int32(2), atomic.LoadInt32(&repo.lists))
	assert.Equal(t, domain.OrderConfirmed, l.Snapshot().Items[0].Status)
	assert.Equal(t, []Notification{{Success: true, Summary: "Order status updated"}}, rec.All())
}

// Shipping without a tracking number is rejected by the server
func TestOrderList_RejectedMutationSetsErrWithoutRefetch(t *testing.T) {
	rejection := apierror.HTTP(http.StatusBadRequest, apierror.CodeValidation, "Tracking number is required when status is shipped", nil)
	repo := &fakeOrders{order: domain.Order{Status: domain.OrderProcessing}, statusErr: rejection}
	rec := &Recorder{}
	l := NewOrderList(repo, resource.Query{}, Options{Notifier: rec})
	ctx := context.Background()

	require.NoError(t, l.Refetch(ctx))

	err := l.UpdateStatus(ctx, "o1", domain.OrderShipped, "")
	require.Error(t, err)
	got, ok := apierror.As(err)
	require.True(t, ok)
	assert.Same(t, rejection, got)

	assert.Equal(t, int32(1), atomic.LoadInt32(&repo.lists))
	assert.Equal(t, "Tracking number is required when status is shipped", l.Snapshot().Err)
	assert.Equal(t, domain.OrderProcessing, l.Snapshot().Items[0].Status)
	assert.Equal(t, []Notification{{
		Summary: "Failed to update order status",
		Detail:  "Tracking number is required when status is shipped",
	}}, rec.Errors())
}

func TestOrderDetail_MutationReloadsDetail(t *testing.T) {
	repo := &fakeOrders{order: domain.Order{Status: domain.OrderConfirmed}}
	d := NewOrderDetail(repo, "o1", Options{})
	ctx := context.Background()

	require.NoError(t, d.Load(ctx))
	require.NoError(t, d.Cancel(ctx, "o1", "changed mind"))

	assert.Equal(t, "o1", d.ID())
	assert.Equal(t, int32(2), atomic.LoadInt32(&repo.gets))
	assert.Equal(t, int32(0), atomic.LoadInt32(&repo.lists))
	require.NotNil(t, d.Snapshot().Value)
	assert.True(t, d.Snapshot().Value.IsCancelled())
}

func TestDetail_FailureKeepsPreviousValue(t *testing.T) {
	fail := false
	d := NewDetail[item](func(context.Context) (*item, error) {
		if fail {
			return nil, apierror.Network(errors.New("refused"))
		}
		return &item{Name: "kept"}, nil
	}, Options{LoadError: "Failed to load item"})
	ctx := context.Background()

	require.NoError(t, d.Load(ctx))
	fail = true
	require.Error(t, d.Refetch(ctx))

	snap := d.Snapshot()
	require.NotNil(t, snap.Value)
	assert.Equal(t, "kept", snap.Value.Name)
	assert.Equal(t, apierror.MessageNetwork, snap.Err)
	assert.False(t, snap.Loading)
}

type fakeReviews struct {
	deleteErr error
	lists     int32
}

func (f *fakeReviews) List(context.Context, resource.Query) (*resource.Page[domain.Review], error) {
	atomic.AddInt32(&f.lists, 1)
	return &resource.Page[domain.Review]{Items: []domain.Review{}}, nil
}

func (f *fakeReviews) UpdateStatus(context.Context, string, domain.ReviewStatus) (*domain.Review, error) {
	return &domain.Review{}, nil
}

func (f *fakeReviews) BulkUpdateStatus(context.Context, []string, domain.ReviewStatus) error {
	return nil
}

func (f *fakeReviews) Delete(context.Context, string) error {
	return f.deleteErr
}

func TestReviewList_Notifications(t *testing.T) {
	repo := &fakeReviews{}
	rec := &Recorder{}
	l := NewReviewList(repo, resource.Query{}, Options{Notifier: rec})
	ctx := context.Background()

	require.NoError(t, l.UpdateStatus(ctx, "r1", domain.ReviewApproved))
	require.NoError(t, l.BulkUpdateStatus(ctx, []string{"r1", "r2"}, domain.ReviewRejected))

	repo.deleteErr = apierror.HTTP(http.StatusNotFound, apierror.CodeNotFound, "Review not found", nil)
	require.Error(t, l.Delete(ctx, "r3"))

	assert.Equal(t, []Notification{
		{Success: true, Summary: "Review approved"},
		{Success: true, Summary: "2 reviews rejected"},
		{Summary: "Failed to delete review", Detail: "Review not found"},
	}, rec.All())
	assert.Equal(t, int32(2), atomic.LoadInt32(&repo.lists))
}

func TestPoller_FailureReadsAsZero(t *testing.T) {
	n := 4
	var err error
	p := NewPoller(func(context.Context) (int, error) { return n, err }, time.Hour, nil)

	assert.True(t, p.Loading())
	assert.Equal(t, 4, p.Refresh(context.Background()))
	assert.False(t, p.Loading())

	err = errors.New("offline")
	assert.Equal(t, 0, p.Refresh(context.Background()))
	assert.Equal(t, 0, p.Count())
}

func TestPoller_RunTicksUntilCancelled(t *testing.T) {
	var calls int32
	p := NewPoller(func(context.Context) (int, error) {
		return int(atomic.AddInt32(&calls, 1)), nil
	}, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return p.Count() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}
