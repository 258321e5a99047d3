package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/dbtest"
	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/store"
)

type capturingSender struct {
	mu    sync.Mutex
	codes map[string]string
	err   error
}

func newCapturingSender() *capturingSender {
	return &capturingSender{codes: map[string]string{}}
}

func (s *capturingSender) SendOTP(ctx context.Context, phone, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[phone] = code
	return s.err
}

func (s *capturingSender) last(phone string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[phone]
}

type fixture struct {
	db       *gorm.DB
	users    *store.UserStore
	products *store.ProductStore
	carts    *store.CartStore
	orders   *store.OrderStore
	sender   *capturingSender
	auth     *AuthService
	catalog  *CatalogService
	cart     *CartService
	order    *OrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)

	f := &fixture{
		db:       db,
		users:    store.NewUserStore(db),
		products: store.NewProductStore(db),
		carts:    store.NewCartStore(db),
		orders:   store.NewOrderStore(db),
		sender:   newCapturingSender(),
	}
	f.auth = NewAuthService(f.users, store.NewChallengeStore(db), f.sender, AuthConfig{
		JWTSecret:   "test-secret",
		TokenTTL:    24 * time.Hour,
		CodeLength:  4,
		CodeTTL:     10 * time.Minute,
		MaxAttempts: 3,
	})
	f.catalog = NewCatalogService(f.products, store.NewHomeProductStore(db), nil)
	f.cart = NewCartService(f.carts, f.products)
	f.order = NewOrderService(f.orders, f.carts, f.products, nil)
	return f
}

func (f *fixture) customer(t *testing.T, phone string) *models.User {
	t.Helper()
	user := &models.User{Phone: phone, Role: models.RoleCustomer}
	if err := f.users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (f *fixture) product(t *testing.T, title string, price int64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{Title: title, Price: decimal.NewFromInt(price), TotalQuantity: stock}
	if err := f.products.Create(context.Background(), product); err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func (f *fixture) stock(t *testing.T, product *models.Product) int {
	t.Helper()
	got, err := f.products.GetByID(context.Background(), product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	return got.TotalQuantity
}

func expectErr(t *testing.T, err, want error) {
	t.Helper()
	if !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}
