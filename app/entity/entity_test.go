package entity

import "testing"

func TestIsNativeToken(t *testing.T) {
	cases := []struct {
		token string
		want  bool
	}{
		{"", true},
		{"MAS", true},
		{"USDC", false},
		{"mas", false},
	}
	for _, c := range cases {
		if got := IsNativeToken(c.token); got != c.want {
			t.Fatalf("IsNativeToken(%q) = %v, want %v", c.token, got, c.want)
		}
	}
}

func TestNewPlanStartsActive(t *testing.T) {
	p := NewPlan(1, "AU1c", 100, 86400000, "")
	if !p.IsActive {
		t.Fatal("expected new plan active")
	}
}

func TestNewSubscriptionDefaults(t *testing.T) {
	s := NewSubscription(1, 2, "AU1s", 100, 50)
	if !s.IsActive {
		t.Fatal("expected new subscription active")
	}
	if s.PaymentCount != 0 {
		t.Fatalf("expected zero payment count, got %d", s.PaymentCount)
	}
	if s.NextPaymentTime != 100 || s.CreatedAt != 50 {
		t.Fatalf("unexpected timestamps %d/%d", s.NextPaymentTime, s.CreatedAt)
	}
}
