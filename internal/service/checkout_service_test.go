package service

import (
	"context"
	"errors"
	"testing"

	"github.com/licence-store/internal/backend"
)

func TestCheckoutSubmitsCartAndClearsIt(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	ctx := context.Background()

	view, _ := env.carts.AddItem(ctx, "", 1)
	view, _ = env.carts.AddItem(ctx, view.SessionID, 2)
	view, _ = env.carts.AddItem(ctx, view.SessionID, 2)

	action, err := env.checkout.Checkout(ctx, CheckoutInput{
		SessionID:        view.SessionID,
		UserID:           testUserID,
		PaymentMethodID:  1,
		PaymentReference: "  VIR-2024-001 ",
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if action.ID != 900 {
		t.Fatalf("want action 900 got %d", action.ID)
	}
	if len(env.fake.checkouts) != 1 {
		t.Fatalf("want one checkout call got %d", len(env.fake.checkouts))
	}
	req := env.fake.checkouts[0]
	if req.PaymentReference != "VIR-2024-001" || len(req.Items) != 2 || req.Items[1].Quantity != 2 {
		t.Fatalf("unexpected checkout request %+v", req)
	}
	if after := env.carts.View(ctx, view.SessionID); len(after.Lines) != 0 {
		t.Fatalf("cart should be cleared after checkout, got %+v", after.Lines)
	}
}

func TestCheckoutKeepsCartWhenBackendRejects(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	env.fake.checkoutFails = true
	ctx := context.Background()

	view, _ := env.carts.AddItem(ctx, "", 1)
	_, err := env.checkout.Checkout(ctx, CheckoutInput{SessionID: view.SessionID, UserID: testUserID, PaymentMethodID: 1, PaymentReference: "REF"})
	if !errors.Is(err, ErrCheckoutFailed) || !errors.Is(err, backend.ErrRejected) {
		t.Fatalf("want ErrCheckoutFailed wrapping ErrRejected got %v", err)
	}
	if after := env.carts.View(ctx, view.SessionID); len(after.Lines) != 1 {
		t.Fatalf("cart must survive a failed checkout, got %+v", after.Lines)
	}
}

func TestCheckoutValidation(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)
	ctx := context.Background()
	view, _ := env.carts.AddItem(ctx, "", 1)

	cases := []struct {
		name  string
		input CheckoutInput
		want  error
	}{
		{"missing reference", CheckoutInput{SessionID: view.SessionID, UserID: testUserID, PaymentMethodID: 1, PaymentReference: "  "}, ErrPaymentReferenceMissing},
		{"unknown method", CheckoutInput{SessionID: view.SessionID, UserID: testUserID, PaymentMethodID: 42, PaymentReference: "REF"}, ErrPaymentMethodInvalid},
		{"empty cart", CheckoutInput{SessionID: "", UserID: testUserID, PaymentMethodID: 1, PaymentReference: "REF"}, ErrCartEmpty},
		{"no session", CheckoutInput{SessionID: view.SessionID, UserID: 99, PaymentMethodID: 1, PaymentReference: "REF"}, ErrSessionExpired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := env.checkout.Checkout(ctx, tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("want %v got %v", tc.want, err)
			}
		})
	}
	if len(env.fake.checkouts) != 0 {
		t.Fatalf("invalid checkouts must not reach the backend")
	}
}
