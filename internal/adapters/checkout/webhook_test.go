package checkout

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rippleeffect/charity-service/internal/domain"
)

const testSecret = "whsec_test"

type fakeConfirmer struct {
	got []domain.CheckoutCompletion
	err error
}

func (f *fakeConfirmer) ConfirmDonation(ctx context.Context, c domain.CheckoutCompletion) error {
	f.got = append(f.got, c)
	return f.err
}

type fakeHealth struct{ err error }

func (f fakeHealth) Ping(ctx context.Context) error { return f.err }

func sign(payload string, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func event(eventType, session string) string {
	return fmt.Sprintf(`{"id":"evt_1","object":"event","api_version":"2020-08-27","type":%q,"data":{"object":%s}}`, eventType, session)
}

func post(t *testing.T, h http.Handler, body, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(body))
	req.Header.Set("Stripe-Signature", signature)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const paidSession = `{"id":"cs_1","object":"checkout.session","payment_status":"paid","amount_total":137,` +
	`"metadata":{"user_id":"u1","charity":"ASPCA","amount":"1.37"}}`

func TestWebhookConfirmsPaidSession(t *testing.T) {
	c := &fakeConfirmer{}
	h := NewWebhookHandler(testSecret, c, nil, zerolog.Nop()).Routes()

	body := event("checkout.session.completed", paidSession)
	rec := post(t, h, body, sign(body, testSecret))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, c.got, 1)
	assert.Equal(t, "cs_1", c.got[0].SessionID)
	assert.Equal(t, "u1", c.got[0].UserID)
	assert.Equal(t, "ASPCA", c.got[0].Charity)
	assert.True(t, decimal.RequireFromString("1.37").Equal(c.got[0].Amount))
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	c := &fakeConfirmer{}
	h := NewWebhookHandler(testSecret, c, nil, zerolog.Nop()).Routes()

	body := event("checkout.session.completed", paidSession)
	rec := post(t, h, body, sign(body, "whsec_other"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, c.got)
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"other type", event("payment_intent.created", `{"id":"pi_1","object":"payment_intent"}`)},
		{"unpaid", event("checkout.session.completed", `{"id":"cs_2","object":"checkout.session","payment_status":"unpaid","metadata":{"user_id":"u1","charity":"ASPCA"}}`)},
		{"no metadata", event("checkout.session.completed", `{"id":"cs_3","object":"checkout.session","payment_status":"paid","amount_total":100}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeConfirmer{}
			h := NewWebhookHandler(testSecret, c, nil, zerolog.Nop()).Routes()
			rec := post(t, h, tt.body, sign(tt.body, testSecret))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Empty(t, c.got)
		})
	}
}

func TestWebhookConfirmFailureIsRetryable(t *testing.T) {
	c := &fakeConfirmer{err: errors.New("store down")}
	h := NewWebhookHandler(testSecret, c, nil, zerolog.Nop()).Routes()

	body := event("checkout.session.completed", paidSession)
	rec := post(t, h, body, sign(body, testSecret))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWebhookRejectsWhenSecretUnset(t *testing.T) {
	c := &fakeConfirmer{}
	h := NewWebhookHandler("", c, nil, zerolog.Nop()).Routes()

	body := event("checkout.session.completed", paidSession)
	rec := post(t, h, body, sign(body, ""))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Empty(t, c.got)
}

func TestWebhookConfirmFailureStatus(t *testing.T) {
	for _, tt := range []struct {
		err  error
		want int
	}{
		{fmt.Errorf("load: %w", domain.ErrNotFound), http.StatusNotFound},
		{domain.ErrConflict, http.StatusConflict},
		{domain.ErrServiceUnavailable, http.StatusBadGateway},
		{domain.ErrInvalidAmount, http.StatusBadRequest},
		{domain.ErrMissingUser, http.StatusBadRequest},
	} {
		t.Run(tt.err.Error(), func(t *testing.T) {
			h := NewWebhookHandler(testSecret, &fakeConfirmer{err: tt.err}, nil, zerolog.Nop()).Routes()
			body := event("checkout.session.completed", paidSession)
			rec := post(t, h, body, sign(body, testSecret))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHealthz(t *testing.T) {
	for _, tt := range []struct {
		name string
		err  error
		want int
	}{
		{"healthy", nil, http.StatusOK},
		{"unhealthy", errors.New("no db"), http.StatusServiceUnavailable},
	} {
		t.Run(tt.name, func(t *testing.T) {
			h := NewWebhookHandler(testSecret, &fakeConfirmer{}, fakeHealth{tt.err}, zerolog.Nop()).Routes()
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestCompletionFallsBackToMetadataAmount(t *testing.T) {
	c := &fakeConfirmer{}
	h := NewWebhookHandler(testSecret, c, nil, zerolog.Nop()).Routes()

	body := event("checkout.session.completed", `{"id":"cs_4","object":"checkout.session","payment_status":"paid",`+
		`"client_reference_id":"u9","metadata":{"charity":"UNICEF","amount":"0.75"}}`)
	rec := post(t, h, body, sign(body, testSecret))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, c.got, 1)
	assert.Equal(t, "u9", c.got[0].UserID)
	assert.True(t, decimal.RequireFromString("0.75").Equal(c.got[0].Amount))
}
