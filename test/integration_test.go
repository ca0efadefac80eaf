//go:build integration

package test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/SarthakSoni31/Driven-backend/internal/cart"
	"github.com/SarthakSoni31/Driven-backend/internal/catalog"
	"github.com/SarthakSoni31/Driven-backend/internal/customers"
	"github.com/SarthakSoni31/Driven-backend/internal/domain"
	"github.com/SarthakSoni31/Driven-backend/internal/email"
	"github.com/SarthakSoni31/Driven-backend/internal/messaging"
	"github.com/SarthakSoni31/Driven-backend/internal/notify"
	"github.com/SarthakSoni31/Driven-backend/internal/orders"
	"github.com/SarthakSoni31/Driven-backend/internal/otp"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedCustomer(ctx context.Context, t *testing.T, db *sql.DB, addr string) *domain.Customer {
	t.Helper()
	c, err := customers.NewRepository(db).EnsureByEmail(ctx, addr, strings.Split(addr, "@")[0])
	if err != nil {
		t.Fatalf("failed to create customer: %v", err)
	}
	return c
}

func seedProduct(ctx context.Context, t *testing.T, db *sql.DB, name, price string) *domain.Product {
	t.Helper()
	p := &domain.Product{
		Name:   name,
		Slug:   strings.ToLower(name),
		Price:  decimal.RequireFromString(price),
		Images: []string{"https://img.example/" + strings.ToLower(name) + ".jpg"},
		Sizes:  []string{"M", "L"},
		Status: domain.ProductStatusLive,
	}
	if err := catalog.NewProductRepository(db).Create(ctx, p); err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	return p
}

func addAddress(ctx context.Context, t *testing.T, svc *customers.Service, customerID string, isDefault bool) string {
	t.Helper()
	c, err := svc.AddAddress(ctx, customerID, customers.AddressInput{
		Street: "1 MG Road", City: "Pune", State: "MH", Zip: "411001", IsDefault: isDefault,
	})
	if err != nil {
		t.Fatalf("failed to add address: %v", err)
	}
	return c.Addresses[len(c.Addresses)-1].ID
}

func TestConcurrentCartAddsMergeIntoOneLine(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := SetupDB(ctx, t)
	customer := seedCustomer(ctx, t, db, "cart@example.com")
	product := seedProduct(ctx, t, db, "Runner", "49.90")
	svc := cart.NewService(cart.NewRepository(db), discardLogger())

	const workers = 10
	one := 1
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Add(ctx, cart.AddInput{CustomerID: customer.ID, ProductID: product.ID, Quantity: &one, Size: "M"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent add failed: %v", err)
		}
	}

	view, err := svc.Fetch(ctx, customer.ID)
	if err != nil {
		t.Fatalf("failed to fetch cart: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("expected 1 cart line, got %d", len(view.Items))
	}
	line := view.Items[0]
	if line.Quantity != workers {
		t.Fatalf("expected quantity %d, got %d", workers, line.Quantity)
	}
	if line.Product == nil || line.Product.Name != "Runner" || line.Product.Image == "" {
		t.Fatalf("expected joined product, got %+v", line.Product)
	}

	if _, err := svc.Add(ctx, cart.AddInput{CustomerID: customer.ID, ProductID: product.ID, Size: "L"}); err != nil {
		t.Fatalf("failed to add second size: %v", err)
	}
	remaining, err := svc.Remove(ctx, view.CartID, line.ID)
	if err != nil {
		t.Fatalf("failed to remove line: %v", err)
	}
	if remaining != 1 {
		t.Fatalf("expected 1 remaining line, got %d", remaining)
	}
}

func TestAddressBookKeepsSingleDefault(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := SetupDB(ctx, t)
	customer := seedCustomer(ctx, t, db, "book@example.com")
	svc := customers.NewService(customers.NewRepository(db), discardLogger())

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.AddAddress(ctx, customer.ID, customers.AddressInput{
				Street: "Street", City: "Pune", State: "MH", Zip: "411001", IsDefault: true,
			}); err != nil {
				t.Errorf("concurrent add address failed: %v", err)
			}
		}()
	}
	wg.Wait()

	assertSingleDefault := func(t *testing.T) *domain.Customer {
		t.Helper()
		c, err := svc.Get(ctx, customer.ID)
		if err != nil {
			t.Fatalf("failed to get customer: %v", err)
		}
		var defaults []string
		for _, a := range c.Addresses {
			if a.IsDefault {
				defaults = append(defaults, a.ID)
			}
		}
		if len(c.Addresses) > 0 {
			if len(defaults) != 1 {
				t.Fatalf("expected exactly one default, got %v", defaults)
			}
			if c.DefaultAddressID == nil || *c.DefaultAddressID != defaults[0] {
				t.Fatalf("default_address_id %v does not match default %s", c.DefaultAddressID, defaults[0])
			}
		} else if c.DefaultAddressID != nil {
			t.Fatalf("expected no default_address_id, got %s", *c.DefaultAddressID)
		}
		return c
	}

	c := assertSingleDefault(t)
	if len(c.Addresses) != 5 {
		t.Fatalf("expected 5 addresses, got %d", len(c.Addresses))
	}

	for _, a := range c.Addresses {
		if err := svc.DeleteAddress(ctx, customer.ID, a.ID); err != nil {
			t.Fatalf("failed to delete address: %v", err)
		}
		assertSingleDefault(t)
	}

	if err := svc.DeleteAddress(ctx, customer.ID, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found deleting missing address, got %v", err)
	}
}

func TestPlaceOrder(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := SetupDB(ctx, t)
	addressBook := customers.NewService(customers.NewRepository(db), discardLogger())
	buyer := seedCustomer(ctx, t, db, "buyer@example.com")
	other := seedCustomer(ctx, t, db, "other@example.com")
	product := seedProduct(ctx, t, db, "Jacket", "120.00")

	ownAddress := addAddress(ctx, t, addressBook, buyer.ID, true)
	foreignAddress := addAddress(ctx, t, addressBook, other.ID, true)

	repo := orders.NewOrderRepository(db)
	svc := orders.NewService(repo, nil, discardLogger())

	total := decimal.RequireFromString("220.00")
	input := orders.PlaceInput{
		CustomerID:        buyer.ID,
		Items:             []orders.ItemInput{{ProductID: product.ID, Quantity: 2, Price: decimal.RequireFromString("110.00")}},
		ShippingAddressID: foreignAddress,
		PaymentMethod:     domain.PaymentCOD,
		TotalAmount:       &total,
	}

	_, err := svc.Place(ctx, input)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Field != "shipping_address_id" {
		t.Fatalf("expected shipping_address_id validation error, got %v", err)
	}

	input.ShippingAddressID = ownAddress
	order, err := svc.Place(ctx, input)
	if err != nil {
		t.Fatalf("failed to place order: %v", err)
	}
	if order.Status != domain.OrderStatusPending {
		t.Fatalf("expected status %s, got %s", domain.OrderStatusPending, order.Status)
	}

	stored, err := svc.Get(ctx, buyer.ID, order.ID)
	if err != nil {
		t.Fatalf("failed to get order: %v", err)
	}
	if !stored.TotalAmount.Equal(total) {
		t.Fatalf("expected total %s, got %s", total, stored.TotalAmount)
	}
	if len(stored.Items) != 1 || !stored.Items[0].Price.Equal(decimal.RequireFromString("110.00")) {
		t.Fatalf("expected supplied item price to be kept, got %+v", stored.Items)
	}
	if stored.Items[0].Product == nil || stored.Items[0].Product.Slug != "jacket" {
		t.Fatalf("expected joined product, got %+v", stored.Items[0].Product)
	}

	if _, err := svc.Get(ctx, other.ID, order.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected other customer to get not found, got %v", err)
	}

	updated, err := svc.UpdateStatus(ctx, order.ID, domain.OrderStatusShipped)
	if err != nil {
		t.Fatalf("failed to update status: %v", err)
	}
	if updated.Status != domain.OrderStatusShipped {
		t.Fatalf("expected status %s, got %s", domain.OrderStatusShipped, updated.Status)
	}
}

type capturingDispatcher struct {
	mu    sync.Mutex
	codes map[string]string
}

func (d *capturingDispatcher) Dispatch(_ context.Context, to, code string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.codes[to] = code
	return nil
}

func TestOtpLogin(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := SetupDB(ctx, t)
	dispatcher := &capturingDispatcher{codes: map[string]string{}}
	svc := otp.NewService(otp.NewRepository(db), customers.NewRepository(db), dispatcher, discardLogger())

	if err := svc.Send(ctx, "Shopper@Example.com"); err != nil {
		t.Fatalf("failed to send code: %v", err)
	}
	first := dispatcher.codes["shopper@example.com"]

	if err := svc.Send(ctx, "shopper@example.com"); err != nil {
		t.Fatalf("failed to resend code: %v", err)
	}
	latest := dispatcher.codes["shopper@example.com"]

	if first != latest {
		if _, err := svc.Verify(ctx, "shopper@example.com", first); !errors.Is(err, domain.ErrInvalidCode) {
			t.Fatalf("expected superseded code to be rejected, got %v", err)
		}
	}

	customer, err := svc.Verify(ctx, "shopper@example.com", latest)
	if err != nil {
		t.Fatalf("failed to verify code: %v", err)
	}
	if customer.Email != "shopper@example.com" || customer.Name != "shopper" {
		t.Fatalf("unexpected customer: %+v", customer)
	}

	again, err := svc.Verify(ctx, "shopper@example.com", latest)
	if err != nil {
		t.Fatalf("failed to verify code twice: %v", err)
	}
	if again.ID != customer.ID {
		t.Fatalf("expected the same customer, got %s and %s", customer.ID, again.ID)
	}
}

type capturingSender struct {
	sent chan email.Message
}

func (s *capturingSender) Send(_ context.Context, msg email.Message) error {
	s.sent <- msg
	return nil
}

func TestOrderPlacedNotification(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	db := SetupDB(ctx, t)
	brokers := SetupKafka(ctx, t, notify.Topics...)

	producer := messaging.NewProducer(brokers)
	defer func() { _ = producer.Close() }()

	addressBook := customers.NewService(customers.NewRepository(db), discardLogger())
	buyer := seedCustomer(ctx, t, db, "notify@example.com")
	product := seedProduct(ctx, t, db, "Scarf", "15.50")
	address := addAddress(ctx, t, addressBook, buyer.ID, true)

	svc := orders.NewService(orders.NewOrderRepository(db), producer, discardLogger())
	total := decimal.RequireFromString("31.00")
	order, err := svc.Place(ctx, orders.PlaceInput{
		CustomerID:        buyer.ID,
		Items:             []orders.ItemInput{{ProductID: product.ID, Quantity: 2, Price: decimal.RequireFromString("15.50")}},
		ShippingAddressID: address,
		PaymentMethod:     domain.PaymentCreditCard,
		TotalAmount:       &total,
	})
	if err != nil {
		t.Fatalf("failed to place order: %v", err)
	}

	sender := &capturingSender{sent: make(chan email.Message, 1)}
	handler := notify.NewNotificationHandler(sender, discardLogger())
	consumer := messaging.NewConsumer(brokers, notify.Topics, "notifier-test", messaging.WithStartOffset(kafka.FirstOffset))
	defer func() { _ = consumer.Close() }()

	consumeCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() { _ = consumer.Consume(consumeCtx, handler.Handle) }()

	select {
	case msg := <-sender.sent:
		if msg.To != "notify@example.com" {
			t.Fatalf("expected mail to notify@example.com, got %s", msg.To)
		}
		if !strings.Contains(msg.Body, order.ID) || !strings.Contains(msg.Body, "31.00") {
			t.Fatalf("unexpected confirmation body: %s", msg.Body)
		}
	case <-time.After(90 * time.Second):
		t.Fatal("timed out waiting for order confirmation")
	}
}
