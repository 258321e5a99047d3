package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestAddItemBeyondStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := f.customer(t, "9999999999")
	product := f.product(t, "Shirt", 499, 10)

	_, err := f.cart.AddItem(ctx, user.ID, product.ID, 15)
	expectErr(t, err, ErrInvalidQuantity)

	items, err := f.cart.ListItems(ctx, user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("cart should be unchanged, got %d items", len(items))
	}
}

func TestAddItemMergesLines(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := f.customer(t, "9999999999")
	product := f.product(t, "Shirt", 499, 10)

	first, err := f.cart.AddItem(ctx, user.ID, product.ID, 4)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	second, err := f.cart.AddItem(ctx, user.ID, product.ID, 6)
	if err != nil {
		t.Fatalf("add again: %v", err)
	}
	if second.ID != first.ID || second.Quantity != 10 {
		t.Fatalf("expected merged line of 10, got %+v", second)
	}

	_, err = f.cart.AddItem(ctx, user.ID, product.ID, 1)
	expectErr(t, err, ErrInvalidQuantity)

	items, err := f.cart.ListItems(ctx, user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 10 {
		t.Fatalf("unexpected cart %+v", items)
	}
	if items[0].Title != "Shirt" || !items[0].Price.Equal(product.Price) {
		t.Fatalf("line should carry product snapshot, got %+v", items[0])
	}
}

func TestAddItemValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := f.customer(t, "9999999999")
	product := f.product(t, "Shirt", 499, 10)

	tests := []struct {
		name      string
		productID uuid.UUID
		qty       int
		want      error
	}{
		{"zero quantity", product.ID, 0, ErrInvalidQuantity},
		{"negative quantity", product.ID, -2, ErrInvalidQuantity},
		{"unknown product", uuid.New(), 1, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.cart.AddItem(ctx, user.ID, tt.productID, tt.qty)
			expectErr(t, err, tt.want)
		})
	}
}

func TestUpdateItem(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.customer(t, "1000000001")
	other := f.customer(t, "1000000002")
	product := f.product(t, "Shirt", 499, 10)

	item, err := f.cart.AddItem(ctx, owner.ID, product.ID, 2)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	updated, err := f.cart.UpdateItem(ctx, owner.ID, item.ID, 7)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", updated.Quantity)
	}

	_, err = f.cart.UpdateItem(ctx, owner.ID, item.ID, 11)
	expectErr(t, err, ErrInvalidQuantity)
	_, err = f.cart.UpdateItem(ctx, owner.ID, item.ID, 0)
	expectErr(t, err, ErrInvalidQuantity)
	_, err = f.cart.UpdateItem(ctx, other.ID, item.ID, 1)
	expectErr(t, err, ErrNotFound)
	_, err = f.cart.UpdateItem(ctx, owner.ID, uuid.New(), 1)
	expectErr(t, err, ErrNotFound)
}

func TestDeleteItem(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.customer(t, "1000000001")
	other := f.customer(t, "1000000002")
	product := f.product(t, "Shirt", 499, 10)

	item, err := f.cart.AddItem(ctx, owner.ID, product.ID, 2)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	expectErr(t, f.cart.DeleteItem(ctx, other.ID, item.ID), ErrNotFound)
	if err := f.cart.DeleteItem(ctx, owner.ID, item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	expectErr(t, f.cart.DeleteItem(ctx, owner.ID, item.ID), ErrNotFound)
}
