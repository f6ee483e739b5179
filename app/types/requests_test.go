package types

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newContext(method, path, body, caller string) echo.Context {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if caller != "" {
		req.Header.Set(CallerHeader, caller)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func TestCreatePlanRequestFromContext(t *testing.T) {
	ctx := newContext(http.MethodPost, "/plans", `{"price":100,"interval":86400000,"token":" MAS "}`, " AU1creator ")

	req, err := NewCreatePlanRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Caller != "AU1creator" {
		t.Fatalf("expected trimmed caller, got %q", req.Caller)
	}
	if req.Token != "MAS" {
		t.Fatalf("expected trimmed token, got %q", req.Token)
	}
	if req.Price != 100 || req.Interval != 86400000 {
		t.Fatalf("unexpected body fields %d/%d", req.Price, req.Interval)
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}

func TestCreatePlanRequestRequiresCaller(t *testing.T) {
	ctx := newContext(http.MethodPost, "/plans", `{"price":100,"interval":0}`, "")

	req, err := NewCreatePlanRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := req.Validate(); err == nil {
		t.Fatal("expected validation error for missing caller")
	}
}

func TestSubscribeRequestRejectsBadID(t *testing.T) {
	ctx := newContext(http.MethodPost, "/plans/abc/subscribe", "", "AU1sub")
	ctx.SetParamNames("id")
	ctx.SetParamValues("abc")

	if _, err := NewSubscribeRequestFromContext(ctx); err == nil {
		t.Fatal("expected parse error for non-numeric id")
	}
}

func TestSubscribeRequestRejectsZeroID(t *testing.T) {
	ctx := newContext(http.MethodPost, "/plans/0/subscribe", "", "AU1sub")
	ctx.SetParamNames("id")
	ctx.SetParamValues("0")

	req, err := NewSubscribeRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := req.Validate(); err == nil {
		t.Fatal("expected validation error for zero id")
	}
}

func TestCancelSubscriptionRequestValid(t *testing.T) {
	ctx := newContext(http.MethodPost, "/subscriptions/7/cancel", "", "AU1sub")
	ctx.SetParamNames("id")
	ctx.SetParamValues("7")

	req, err := NewCancelSubscriptionRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.SubscriptionID != 7 || req.Caller != "AU1sub" {
		t.Fatalf("unexpected request %+v", req)
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}

func TestAccountRequestRequiresAddress(t *testing.T) {
	ctx := newContext(http.MethodGet, "/accounts//balance", "", "")
	ctx.SetParamNames("address")
	ctx.SetParamValues("  ")

	req, err := NewAccountRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := req.Validate(); err == nil {
		t.Fatal("expected validation error for blank address")
	}
}

func TestFaucetRequestValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
		ok   bool
	}{
		{"valid", `{"address":"AU1a","amount":100}`, true},
		{"missing address", `{"amount":100}`, false},
		{"zero amount", `{"address":"AU1a"}`, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctx := newContext(http.MethodPost, "/faucet", c.body, "")
			req, err := NewFaucetRequestFromContext(ctx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := req.Validate(); (err == nil) != c.ok {
				t.Fatalf("validate = %v, want ok=%v", err, c.ok)
			}
		})
	}
}
