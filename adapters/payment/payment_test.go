package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRazorpay_CreateOrder(t *testing.T) {
	var gotAuth, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders" {
			t.Errorf("path = %s, want /orders", r.URL.Path)
		}
		user, pass, _ := r.BasicAuth()
		gotAuth = user + ":" + pass

		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		gotBody = body["currency"].(string)

		json.NewEncoder(w).Encode(map[string]string{"id": "order_test_123"})
	}))
	defer srv.Close()

	g := NewRazorpayGateway(RazorpayConfig{KeyID: "rzp_key", KeySecret: "rzp_secret"})
	g.baseURL = srv.URL

	id, err := g.CreateOrder(context.Background(), 19900, "INR", "ord-1")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if id != "order_test_123" {
		t.Errorf("id = %s, want order_test_123", id)
	}
	if gotAuth != "rzp_key:rzp_secret" {
		t.Errorf("auth = %s", gotAuth)
	}
	if gotBody != "INR" {
		t.Errorf("currency = %s, want INR", gotBody)
	}
}

func TestRazorpay_CreateOrder_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"description":"auth failed"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	g := NewRazorpayGateway(RazorpayConfig{KeyID: "bad", KeySecret: "bad"})
	g.baseURL = srv.URL

	if _, err := g.CreateOrder(context.Background(), 19900, "INR", "ord-1"); err == nil {
		t.Fatal("expected error for 401 response")
	}
}

func TestRazorpay_VerifySignature(t *testing.T) {
	g := NewRazorpayGateway(RazorpayConfig{KeyID: "rzp_key", KeySecret: "rzp_secret"})

	// A signature produced by a dummy gateway sharing the secret must
	// verify, anything else must not.
	helper := NewDummyGateway("rzp_secret")
	sig := helper.Sign("order_1", "pay_1")

	if !g.VerifySignature("order_1", "pay_1", sig) {
		t.Error("valid signature rejected")
	}
	if g.VerifySignature("order_1", "pay_2", sig) {
		t.Error("signature for wrong payment accepted")
	}
}

func TestDummy_RoundTrip(t *testing.T) {
	g := NewDummyGateway("test-secret")

	id1, err := g.CreateOrder(context.Background(), 100, "INR", "r1")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	id2, _ := g.CreateOrder(context.Background(), 100, "INR", "r2")
	if id1 == id2 {
		t.Errorf("order ids should differ: %s, %s", id1, id2)
	}

	sig := g.Sign(id1, "pay_1")
	if !g.VerifySignature(id1, "pay_1", sig) {
		t.Error("valid signature rejected")
	}
	if g.VerifySignature(id1, "pay_1", "bogus") {
		t.Error("bogus signature accepted")
	}
}

func TestFactory(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantName string
		wantErr  bool
	}{
		{"razorpay", Config{Provider: "razorpay", Razorpay: RazorpayConfig{KeyID: "k", KeySecret: "s"}}, "razorpay", false},
		{"razorpay missing creds", Config{Provider: "razorpay"}, "", true},
		{"dummy", Config{Provider: "dummy"}, "dummy", false},
		{"default", Config{}, "dummy", false},
		{"unknown", Config{Provider: "paypal"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if g.Name() != tt.wantName {
				t.Errorf("Name = %s, want %s", g.Name(), tt.wantName)
			}
		})
	}
}
