package cart

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SarthakSoni31/Driven-backend/internal/domain"
)

type fakeStore struct {
	carts map[string]string // customer -> cart
	items map[string][]domain.CartItem
}

func newFakeStore() *fakeStore {
	return &fakeStore{carts: map[string]string{}, items: map[string][]domain.CartItem{}}
}

func (f *fakeStore) Add(_ context.Context, customerID string, item domain.CartItem) (string, error) {
	cartID, ok := f.carts[customerID]
	if !ok {
		cartID = uuid.New().String()
		f.carts[customerID] = cartID
	}
	for i, existing := range f.items[cartID] {
		if existing.ProductID == item.ProductID && existing.Size == item.Size {
			f.items[cartID][i].Quantity += item.Quantity
			return cartID, nil
		}
	}
	item.ID = uuid.New().String()
	f.items[cartID] = append(f.items[cartID], item)
	return cartID, nil
}

func (f *fakeStore) CartIDFor(_ context.Context, customerID string) (string, error) {
	return f.carts[customerID], nil
}

func line(item domain.CartItem) domain.CartLine {
	return domain.CartLine{
		ID:       item.ID,
		Product:  &domain.ProductSummary{ID: item.ProductID},
		Quantity: item.Quantity,
		Size:     item.Size,
	}
}

func (f *fakeStore) ListLines(_ context.Context, cartID string) ([]domain.CartLine, error) {
	lines := []domain.CartLine{}
	for _, item := range f.items[cartID] {
		lines = append(lines, line(item))
	}
	return lines, nil
}

func (f *fakeStore) GetLine(_ context.Context, cartID, itemID string) (*domain.CartLine, error) {
	for _, item := range f.items[cartID] {
		if item.ID == itemID {
			l := line(item)
			return &l, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) UpdateQuantity(_ context.Context, cartID, itemID string, quantity int) error {
	items, ok := f.items[cartID]
	if !ok {
		return domain.NotFound("cart")
	}
	for i := range items {
		if items[i].ID == itemID {
			items[i].Quantity = quantity
			return nil
		}
	}
	return domain.NotFound("cart item")
}

func (f *fakeStore) Remove(_ context.Context, cartID, itemID string) (int, error) {
	items, ok := f.items[cartID]
	if !ok {
		return 0, domain.NotFound("cart")
	}
	for i := range items {
		if items[i].ID == itemID {
			f.items[cartID] = append(items[:i], items[i+1:]...)
			return len(f.items[cartID]), nil
		}
	}
	return 0, domain.NotFound("cart item")
}

func newTestService() (*Service, *fakeStore) {
	store := newFakeStore()
	return NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil))), store
}

func qty(n int) *int { return &n }

func TestAddMergesSameProductAndSize(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, AddInput{CustomerID: "c1", ProductID: "p1", Quantity: qty(2), Size: "M"})
	require.NoError(t, err)
	view, err := svc.Add(ctx, AddInput{CustomerID: "c1", ProductID: "p1", Quantity: qty(3), Size: " M "})
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 5, view.Items[0].Quantity)
	assert.Equal(t, "M", view.Items[0].Size)
}

func TestAddKeepsDistinctSizesApart(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, AddInput{CustomerID: "c1", ProductID: "p1", Size: "M"})
	require.NoError(t, err)
	view, err := svc.Add(ctx, AddInput{CustomerID: "c1", ProductID: "p1", Size: "L"})
	require.NoError(t, err)

	require.Len(t, view.Items, 2)
	for _, l := range view.Items {
		assert.Equal(t, 1, l.Quantity)
	}
}

func TestAddValidation(t *testing.T) {
	tests := []struct {
		name  string
		in    AddInput
		field string
	}{
		{"missing customer", AddInput{ProductID: "p1"}, "customer_id"},
		{"missing product", AddInput{CustomerID: "c1"}, "product_id"},
		{"zero quantity", AddInput{CustomerID: "c1", ProductID: "p1", Quantity: qty(0)}, "quantity"},
		{"negative quantity", AddInput{CustomerID: "c1", ProductID: "p1", Quantity: qty(-2)}, "quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService()
			_, err := svc.Add(context.Background(), tt.in)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestFetchWithoutCart(t *testing.T) {
	svc, _ := newTestService()

	view, err := svc.Fetch(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, view.CartID)
	assert.NotNil(t, view.Items)
	assert.Empty(t, view.Items)
}

func TestUpdateQuantityAndRemove(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	view, err := svc.Add(ctx, AddInput{CustomerID: "c1", ProductID: "p1"})
	require.NoError(t, err)
	_, err = svc.Add(ctx, AddInput{CustomerID: "c1", ProductID: "p2"})
	require.NoError(t, err)
	itemID := view.Items[0].ID

	updated, err := svc.UpdateQuantity(ctx, view.CartID, itemID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	_, err = svc.UpdateQuantity(ctx, view.CartID, itemID, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	remaining, err := svc.Remove(ctx, view.CartID, itemID)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)

	_, err = svc.Remove(ctx, view.CartID, itemID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Remove(ctx, "missing-cart", itemID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHandleAddAndFetch(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	for range 2 {
		req := httptest.NewRequest(http.MethodPost, "/api/cart",
			strings.NewReader(`{"customer_id":"c1","product_id":"p1","quantity":2}`))
		rec := httptest.NewRecorder()
		h.HandleAdd(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec := httptest.NewRecorder()
	h.HandleFetch(rec, httptest.NewRequest(http.MethodGet, "/api/cart?customer_id=c1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var view domain.CartView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	require.Len(t, view.Items, 1)
	assert.Equal(t, 4, view.Items[0].Quantity)
}

func TestHandleRemoveMissingItem(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	req := httptest.NewRequest(http.MethodDelete, "/api/cart/c/items/i", nil)
	req.SetPathValue("cartId", "c")
	req.SetPathValue("itemId", "i")
	rec := httptest.NewRecorder()

	h.HandleRemove(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
