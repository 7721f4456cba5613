package checkout

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rippleeffect/charity-service/internal/config"
	"github.com/rippleeffect/charity-service/internal/domain"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *StripeGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g, err := NewStripeGateway(config.StripeConfig{
		SecretKey:  "sk_test_123",
		APIBase:    srv.URL,
		SuccessURL: "https://example.org/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  "https://example.org/cancel",
	}, zerolog.Nop())
	require.NoError(t, err)
	return g
}

func TestCreateSession(t *testing.T) {
	var form map[string]string
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())
		form = map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_1"}`))
	})

	s, err := g.CreateSession(context.Background(), domain.CheckoutRequest{
		UserID:      "u1",
		Charity:     "ASPCA",
		Amount:      decimal.RequireFromString("1.37"),
		Destination: "acct_123",
	})
	require.NoError(t, err)
	assert.Equal(t, &domain.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.com/c/pay/cs_test_1"}, s)

	assert.Equal(t, "payment", form["mode"])
	assert.Equal(t, "137", form["line_items[0][price_data][unit_amount]"])
	assert.Equal(t, "usd", form["line_items[0][price_data][currency]"])
	assert.Equal(t, "1", form["line_items[0][quantity]"])
	assert.Equal(t, "acct_123", form["payment_intent_data[transfer_data][destination]"])
	assert.Equal(t, "u1", form["metadata[user_id]"])
	assert.Equal(t, "ASPCA", form["metadata[charity]"])
	assert.Equal(t, "1.37", form["metadata[amount]"])
	assert.Equal(t, "u1", form["client_reference_id"])
}

func TestCreateSessionStripeError(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"No such destination: 'acct_nope'"}}`))
	})

	_, err := g.CreateSession(context.Background(), domain.CheckoutRequest{
		UserID: "u1", Charity: "ASPCA", Amount: decimal.RequireFromString("2"), Destination: "acct_nope",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No such destination")
}

func TestCreateSessionRejectsZeroAmount(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := g.CreateSession(context.Background(), domain.CheckoutRequest{Amount: decimal.RequireFromString("0.004")})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestNewStripeGatewayRequiresKey(t *testing.T) {
	_, err := NewStripeGateway(config.StripeConfig{}, zerolog.Nop())
	assert.Error(t, err)
}

func TestUnconfiguredGateway(t *testing.T) {
	_, err := Unconfigured{}.CreateSession(context.Background(), domain.CheckoutRequest{Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrCheckoutDisabled)
}
