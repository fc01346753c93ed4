package order_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/vastrika-storefront/internal/apperr"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/catalog"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/events"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/kv"
	"github.com/vasiliy-maslov/vastrika-storefront/internal/order"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) GetOrderByID(ctx context.Context, id string) (*order.Order, error) {
	args := m.Called(ctx, id)
	if o := args.Get(0); o != nil {
		return o.(*order.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) ListOrders(ctx context.Context) ([]order.Order, error) {
	args := m.Called(ctx)
	if o := args.Get(0); o != nil {
		return o.([]order.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) UpdateOrderStatus(ctx context.Context, id string, status order.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOrderRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

func newStore(t *testing.T) order.Service {
	t.Helper()
	repo, err := order.NewRepository(context.Background(), kv.NewMemoryStore(), nil, order.DemoOrders())
	require.NoError(t, err)
	return order.NewService(repo, nil)
}

func sampleOrder(id string) *order.Order {
	return &order.Order{
		ID:              id,
		CustomerName:    "Asha Rao",
		CustomerEmail:   "asha@example.com",
		ShippingAddress: "12 Lake View, Pune - 411001",
		PlacedAt:        time.Date(2025, time.January, 5, 10, 0, 0, 0, time.UTC),
		Total:           25000,
		Items: []order.Item{{
			ProductID: "1",
			Name:      "Royal Banarasi Silk Saree",
			Category:  catalog.CategorySarees,
			Size:      catalog.SizeM,
			Quantity:  2,
			UnitPrice: 12500,
		}},
	}
}

func TestOrderService_PlaceOrder(t *testing.T) {
	ctx := context.Background()
	svc := newStore(t)

	placed, err := svc.PlaceOrder(ctx, sampleOrder("VAS-1234"))

	require.NoError(t, err)
	assert.Equal(t, order.StatusProcessing, placed.Status)

	all, err := svc.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "VAS-1234", all[0].ID, "newest order comes first")
	assert.Equal(t, "ORD-7721", all[1].ID)
}

func TestOrderService_PlaceOrderDefaultsDate(t *testing.T) {
	svc := newStore(t)
	o := sampleOrder(" VAS-2000 ")
	o.PlacedAt = time.Time{}
	o.Status = ""

	placed, err := svc.PlaceOrder(context.Background(), o)

	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), placed.PlacedAt, time.Minute)
	assert.Equal(t, "VAS-2000", placed.ID)
	assert.Equal(t, order.StatusProcessing, placed.Status)

	// The caller's order is left as given.
	assert.True(t, o.PlacedAt.IsZero())
	assert.Equal(t, " VAS-2000 ", o.ID)
	assert.Empty(t, o.Status)
}

func TestOrderService_PlaceOrderValidation(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(o *order.Order)
		wantDetail string
	}{
		{name: "empty id", mutate: func(o *order.Order) { o.ID = "  " }, wantDetail: "id is required"},
		{name: "negative total", mutate: func(o *order.Order) { o.Total = -10 }, wantDetail: "total must be non-negative, got -10"},
		{name: "no items", mutate: func(o *order.Order) { o.Items = nil }, wantDetail: "order must contain at least one item"},
		{name: "zero quantity", mutate: func(o *order.Order) { o.Items[0].Quantity = 0 }, wantDetail: "quantity for product 1 must be greater than zero"},
		{name: "not processing", mutate: func(o *order.Order) { o.Status = order.StatusShipped }, wantDetail: `new orders start in Processing, got "Shipped"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockOrderRepository)
			svc := order.NewService(mockRepo, nil)
			o := sampleOrder("VAS-3000")
			tt.mutate(o)

			_, err := svc.PlaceOrder(context.Background(), o)

			require.ErrorIs(t, err, order.ErrInvalidOrder)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Contains(t, apperr.DetailsOf(err), tt.wantDetail)
			mockRepo.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
		})
	}
}

func TestOrderService_PlaceOrderDuplicateID(t *testing.T) {
	svc := newStore(t)

	_, err := svc.PlaceOrder(context.Background(), sampleOrder("ord-7721"))

	require.ErrorIs(t, err, order.ErrDuplicateOrderID)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestOrderService_PlaceOrderRepositoryFailure(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	mockPub := new(MockPublisher)
	svc := order.NewService(mockRepo, mockPub)
	cause := errors.New("disk full")
	mockRepo.On("CreateOrder", mock.Anything, mock.AnythingOfType("*order.Order")).Return(cause).Once()

	_, err := svc.PlaceOrder(context.Background(), sampleOrder("VAS-4000"))

	require.ErrorIs(t, err, cause)
	mockRepo.AssertExpectations(t)
	mockPub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestOrderService_SnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	svc := newStore(t)
	input := sampleOrder("VAS-5000")

	placed, err := svc.PlaceOrder(ctx, input)
	require.NoError(t, err)
	want := placed.Clone()

	input.Items[0].Quantity = 99
	input.Items[0].UnitPrice = 1
	input.Total = 1
	placed.Items[0].Name = "changed"

	got, err := svc.GetOrderByID(ctx, "VAS-5000")
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(want, *got))

	got.Items[0].Quantity = 7
	again, err := svc.GetOrderByID(ctx, "VAS-5000")
	require.NoError(t, err)
	assert.Equal(t, 2, again.Items[0].Quantity)
}

func TestOrderService_StatusTransitionScenario(t *testing.T) {
	ctx := context.Background()
	svc := newStore(t)

	_, err := svc.PlaceOrder(ctx, sampleOrder("VAS-6000"))
	require.NoError(t, err)
	before, err := svc.GetOrderByID(ctx, "VAS-6000")
	require.NoError(t, err)

	require.NoError(t, svc.UpdateOrderStatus(ctx, "VAS-6000", order.StatusDelivered))

	after, err := svc.GetOrderByID(ctx, "vas-6000")
	require.NoError(t, err)
	assert.Equal(t, order.StatusDelivered, after.Status)

	before.Status = order.StatusDelivered
	require.Empty(t, cmp.Diff(*before, *after))
}

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	tests := []struct {
		name     string
		current  order.Status
		next     order.Status
		wantErr  error
		wantKind apperr.Kind
		persists bool
	}{
		{name: "processing to shipped", current: order.StatusProcessing, next: order.StatusShipped, persists: true},
		{name: "processing to cancelled", current: order.StatusProcessing, next: order.StatusCancelled, persists: true},
		{name: "shipped to delivered", current: order.StatusShipped, next: order.StatusDelivered, persists: true},
		{name: "shipped to cancelled", current: order.StatusShipped, next: order.StatusCancelled, persists: true},
		{name: "same status is a no-op", current: order.StatusShipped, next: order.StatusShipped},
		{name: "shipped back to processing", current: order.StatusShipped, next: order.StatusProcessing, wantErr: order.ErrInvalidStatusTransition, wantKind: apperr.KindConflict},
		{name: "delivered is terminal", current: order.StatusDelivered, next: order.StatusCancelled, wantErr: order.ErrInvalidStatusTransition, wantKind: apperr.KindConflict},
		{name: "cancelled is terminal", current: order.StatusCancelled, next: order.StatusProcessing, wantErr: order.ErrInvalidStatusTransition, wantKind: apperr.KindConflict},
		{name: "unknown status", current: order.StatusProcessing, next: "Lost", wantErr: order.ErrInvalidStatus, wantKind: apperr.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			mockRepo := new(MockOrderRepository)
			mockPub := new(MockPublisher)
			svc := order.NewService(mockRepo, mockPub)

			current := sampleOrder("VAS-7000")
			current.Status = tt.current
			mockRepo.On("GetOrderByID", ctx, "VAS-7000").Return(current, nil).Maybe()
			if tt.persists {
				mockRepo.On("UpdateOrderStatus", ctx, "VAS-7000", tt.next).Return(nil).Once()
				mockPub.On("Publish", ctx, mock.MatchedBy(func(e events.Event) bool {
					return e.Type == events.TypeOrderStatusChanged && e.Key == "VAS-7000"
				})).Return(nil).Once()
			}

			err := svc.UpdateOrderStatus(ctx, "VAS-7000", tt.next)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
			} else {
				require.NoError(t, err)
			}
			if !tt.persists {
				mockRepo.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything)
				mockPub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
			}
			mockRepo.AssertExpectations(t)
			mockPub.AssertExpectations(t)
		})
	}
}

func TestOrderService_UpdateOrderStatusNotFound(t *testing.T) {
	svc := newStore(t)

	err := svc.UpdateOrderStatus(context.Background(), "VAS-0000", order.StatusShipped)

	require.ErrorIs(t, err, order.ErrOrderNotFound)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestOrderService_PublishFailureKeepsOrder(t *testing.T) {
	ctx := context.Background()
	repo, err := order.NewRepository(ctx, kv.NewMemoryStore(), nil, nil)
	require.NoError(t, err)
	mockPub := new(MockPublisher)
	mockPub.On("Publish", ctx, mock.MatchedBy(func(e events.Event) bool {
		return e.Type == events.TypeOrderPlaced && e.Key == "VAS-8000"
	})).Return(errors.New("broker down")).Once()
	svc := order.NewService(repo, mockPub)

	_, err = svc.PlaceOrder(ctx, sampleOrder("VAS-8000"))

	require.NoError(t, err)
	ok, err := svc.Exists(ctx, "VAS-8000")
	require.NoError(t, err)
	assert.True(t, ok)
	mockPub.AssertExpectations(t)
}

func TestOrderService_ListOrdersByEmail(t *testing.T) {
	ctx := context.Background()
	svc := newStore(t)

	orders, err := svc.ListOrdersByEmail(ctx, " Priya@Example.com")

	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "ORD-7721", orders[0].ID)
	assert.Equal(t, "Oct 24, 2024", orders[0].DisplayDate())

	none, err := svc.ListOrdersByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOrderService_Stats(t *testing.T) {
	ctx := context.Background()
	svc := newStore(t)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, order.Stats{TotalRevenue: 16000, PendingOrders: 1, OrderCount: 2}, stats)

	_, err = svc.PlaceOrder(ctx, sampleOrder("VAS-9000"))
	require.NoError(t, err)
	require.NoError(t, svc.UpdateOrderStatus(ctx, "ORD-9932", order.StatusShipped))

	stats, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, order.Stats{TotalRevenue: 41000, PendingOrders: 1, OrderCount: 3}, stats)
}

func TestOrderService_StatsRepositoryFailure(t *testing.T) {
	mockRepo := new(MockOrderRepository)
	svc := order.NewService(mockRepo, nil)
	mockRepo.On("ListOrders", mock.Anything).Return(nil, errors.New("timeout")).Once()

	_, err := svc.Stats(context.Background())

	require.Error(t, err)
	mockRepo.AssertExpectations(t)
}
