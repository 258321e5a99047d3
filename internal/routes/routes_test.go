package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/bazaar/internal/dbtest"
	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/notify"
	"github.com/example/bazaar/internal/services"
	"github.com/example/bazaar/internal/store"
	"github.com/example/bazaar/internal/utils"
)

const secret = "test-secret"

type testServer struct {
	app   *fiber.App
	users *store.UserStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := dbtest.Open(t)

	users := store.NewUserStore(db)
	products := store.NewProductStore(db)
	carts := store.NewCartStore(db)

	svc := Services{
		Auth: services.NewAuthService(users, store.NewChallengeStore(db), notify.LogSender{}, services.AuthConfig{
			JWTSecret:   secret,
			TokenTTL:    time.Hour,
			CodeLength:  4,
			CodeTTL:     time.Minute,
			MaxAttempts: 5,
			ExposeCode:  true,
		}),
		Catalog: services.NewCatalogService(products, store.NewHomeProductStore(db), nil),
		Cart:    services.NewCartService(carts, products),
		Orders:  services.NewOrderService(store.NewOrderStore(db), carts, products, nil),
	}

	return &testServer{app: NewApp(secret, svc, false), users: users}
}

func (s *testServer) tokenFor(t *testing.T, phone string, role models.Role) string {
	t.Helper()
	user := &models.User{Phone: phone, Role: role}
	if err := s.users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	token, _, err := utils.GenerateToken(secret, user.ID, role, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return token
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Token   string          `json:"token"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("auth", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, raw)
		}
	}
	return resp.StatusCode, env
}

func TestAdminCanAddProduct(t *testing.T) {
	s := newTestServer(t)
	admin := s.tokenFor(t, "7000000000", models.RoleAdmin)
	customer := s.tokenFor(t, "7000000001", models.RoleCustomer)
	body := map[string]interface{}{"title": "Shirt", "price": 499, "totalQuantity": 10}

	status, env := s.do(t, http.MethodPost, "/products/add", admin, body)
	if status != http.StatusOK || !env.Success {
		t.Fatalf("admin add: status %d, %+v", status, env)
	}
	var product models.Product
	if err := json.Unmarshal(env.Data, &product); err != nil {
		t.Fatalf("decode product: %v", err)
	}
	if product.Title != "Shirt" || product.TotalQuantity != 10 {
		t.Fatalf("unexpected product %+v", product)
	}

	status, env = s.do(t, http.MethodPost, "/products/add", customer, body)
	if status != http.StatusForbidden || env.Success {
		t.Fatalf("customer add: status %d, %+v", status, env)
	}

	status, _ = s.do(t, http.MethodPost, "/products/add", "", body)
	if status != http.StatusUnauthorized {
		t.Fatalf("anonymous add: status %d", status)
	}

	status, env = s.do(t, http.MethodGet, "/products/"+product.ID.String(), "", nil)
	if status != http.StatusOK {
		t.Fatalf("public get: status %d, %+v", status, env)
	}
}

func TestCheckoutFlow(t *testing.T) {
	s := newTestServer(t)
	admin := s.tokenFor(t, "7000000000", models.RoleAdmin)

	_, env := s.do(t, http.MethodPost, "/products/add", admin, map[string]interface{}{
		"title": "Shirt", "price": "499", "totalQuantity": 10,
	})
	var product models.Product
	if err := json.Unmarshal(env.Data, &product); err != nil {
		t.Fatalf("decode product: %v", err)
	}

	status, env := s.do(t, http.MethodPost, "/user/register", "", map[string]interface{}{
		"firstName": "Asha", "phoneNo": 9999999999,
	})
	if status != http.StatusCreated {
		t.Fatalf("register: status %d, %+v", status, env)
	}
	var receipt services.OTPReceipt
	if err := json.Unmarshal(env.Data, &receipt); err != nil {
		t.Fatalf("decode receipt: %v", err)
	}

	status, env = s.do(t, http.MethodPost, "/user/validateOtp", "", map[string]interface{}{
		"phoneNo": "9999999999", "otp": receipt.Code,
	})
	if status != http.StatusOK || env.Token == "" {
		t.Fatalf("validate: status %d, %+v", status, env)
	}
	token := env.Token

	status, _ = s.do(t, http.MethodPost, "/user/validateOtp", "", map[string]interface{}{
		"phoneNo": "9999999999", "otp": receipt.Code,
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("replayed code: status %d", status)
	}

	status, env = s.do(t, http.MethodPost, "/cart/add", token, map[string]interface{}{
		"productId": product.ID.String(), "quantity": 15,
	})
	if status != http.StatusBadRequest {
		t.Fatalf("over-stock add: status %d, %+v", status, env)
	}

	status, env = s.do(t, http.MethodPost, "/cart/add", token, map[string]interface{}{
		"productId": product.ID.String(), "quantity": 4,
	})
	if status != http.StatusOK {
		t.Fatalf("add: status %d, %+v", status, env)
	}

	status, env = s.do(t, http.MethodPost, "/orders/place", token, nil)
	if status != http.StatusCreated {
		t.Fatalf("place: status %d, %+v", status, env)
	}
	var order models.Order
	if err := json.Unmarshal(env.Data, &order); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 4 {
		t.Fatalf("unexpected order %+v", order)
	}

	_, env = s.do(t, http.MethodGet, "/cart", token, nil)
	var items []models.CartItem
	if err := json.Unmarshal(env.Data, &items); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("cart should be empty, got %d items", len(items))
	}

	_, env = s.do(t, http.MethodGet, "/products/"+product.ID.String(), "", nil)
	if err := json.Unmarshal(env.Data, &product); err != nil {
		t.Fatalf("decode product: %v", err)
	}
	if product.TotalQuantity != 6 {
		t.Fatalf("stock = %d, want 6", product.TotalQuantity)
	}

	status, _ = s.do(t, http.MethodPost, "/orders/place", token, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("empty cart checkout: status %d", status)
	}
}

func TestLoginUnknownPhone(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodPost, "/user/login", "", map[string]interface{}{"phoneNo": "8888888888"})
	if status != http.StatusUnauthorized || env.Success {
		t.Fatalf("status %d, %+v", status, env)
	}
}

func TestCartDeleteTwice(t *testing.T) {
	s := newTestServer(t)
	admin := s.tokenFor(t, "7000000000", models.RoleAdmin)
	customer := s.tokenFor(t, "7000000001", models.RoleCustomer)

	_, env := s.do(t, http.MethodPost, "/products/add", admin, map[string]interface{}{
		"title": "Mug", "price": 99, "totalQuantity": 3,
	})
	var product models.Product
	if err := json.Unmarshal(env.Data, &product); err != nil {
		t.Fatalf("decode product: %v", err)
	}

	_, env = s.do(t, http.MethodPost, "/cart/add", customer, map[string]interface{}{"productId": product.ID.String()})
	var item models.CartItem
	if err := json.Unmarshal(env.Data, &item); err != nil {
		t.Fatalf("decode item: %v", err)
	}
	if item.Quantity != 1 {
		t.Fatalf("default quantity should be 1, got %d", item.Quantity)
	}

	status, _ := s.do(t, http.MethodDelete, "/cart/delete/"+item.ID.String(), customer, nil)
	if status != http.StatusNoContent {
		t.Fatalf("delete: status %d", status)
	}
	status, _ = s.do(t, http.MethodDelete, "/cart/delete/"+item.ID.String(), customer, nil)
	if status != http.StatusNotFound {
		t.Fatalf("second delete: status %d", status)
	}
}

func TestMalformedRequests(t *testing.T) {
	s := newTestServer(t)
	customer := s.tokenFor(t, "7000000001", models.RoleCustomer)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"bad product id", http.MethodGet, "/products/not-a-uuid", "", http.StatusBadRequest},
		{"missing order", http.MethodGet, "/orders/00000000-0000-0000-0000-000000000001", customer, http.StatusNotFound},
		{"cart without token", http.MethodGet, "/cart", "", http.StatusUnauthorized},
		{"user list as customer", http.MethodGet, "/user", customer, http.StatusForbidden},
		{"health", http.MethodGet, "/healthz", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := s.do(t, tt.method, tt.path, tt.token, nil)
			if status != tt.want {
				t.Fatalf("status %d, want %d", status, tt.want)
			}
		})
	}
}
