package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/rippleeffect/charity-service/internal/domain"
	"github.com/rippleeffect/charity-service/internal/ports"
)

const maxWebhookBody = 65536

// Confirmer settles a paid checkout session against the donor's balance.
type Confirmer interface {
	ConfirmDonation(ctx context.Context, c domain.CheckoutCompletion) error
}

type WebhookHandler struct {
	secret    string
	confirmer Confirmer
	health    ports.HealthPort
	logger    zerolog.Logger
}

func NewWebhookHandler(secret string, confirmer Confirmer, health ports.HealthPort, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{secret: secret, confirmer: confirmer, health: health, logger: logger}
}

// Routes builds the HTTP surface: the Stripe webhook and a liveness probe.
func (h *WebhookHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)

	r.Get("/healthz", h.healthz)
	r.Post("/webhooks/stripe", h.stripeWebhook)
	return r
}

func (h *WebhookHandler) healthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health.Ping(r.Context()); err != nil {
			h.logger.Warn().Err(err).Msg("health check failed")
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *WebhookHandler) stripeWebhook(w http.ResponseWriter, r *http.Request) {
	// An empty secret would accept payloads signed with an empty key.
	if h.secret == "" {
		h.logger.Warn().Msg("webhook secret not configured, rejecting event")
		http.Error(w, "webhook not configured", http.StatusServiceUnavailable)
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "unreadable body", http.StatusRequestEntityTooLarge)
		return
	}

	event, err := webhook.ConstructEventWithOptions(payload, r.Header.Get("Stripe-Signature"), h.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		h.logger.Warn().Err(err).Msg("rejected webhook signature")
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		h.logger.Debug().Str("type", string(event.Type)).Msg("ignoring webhook event")
		w.WriteHeader(http.StatusOK)
		return
	}

	var s stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		http.Error(w, "malformed checkout session", http.StatusBadRequest)
		return
	}

	completion, ok := completionFrom(&s)
	if !ok {
		h.logger.Warn().Str("session_id", s.ID).Str("payment_status", string(s.PaymentStatus)).Msg("skipping checkout session")
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.confirmer.ConfirmDonation(r.Context(), completion); err != nil {
		h.logger.Error().Err(err).Str("session_id", s.ID).Msg("failed to confirm donation")
		http.Error(w, "confirmation failed", httpStatus(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

// httpStatus maps a confirmation failure onto the code Stripe sees. Anything
// other than 2xx makes Stripe redeliver the event later.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrServiceUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrMissingUser):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// completionFrom accepts only paid sessions that carry our metadata. The
// charged total wins over the metadata amount.
func completionFrom(s *stripe.CheckoutSession) (domain.CheckoutCompletion, bool) {
	if s.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return domain.CheckoutCompletion{}, false
	}
	userID := s.Metadata[MetaUserID]
	if userID == "" {
		userID = s.ClientReferenceID
	}
	charity := s.Metadata[MetaCharity]
	if s.ID == "" || userID == "" || charity == "" {
		return domain.CheckoutCompletion{}, false
	}

	amount := decimal.New(s.AmountTotal, -2)
	if s.AmountTotal == 0 {
		d, err := decimal.NewFromString(s.Metadata[MetaAmount])
		if err != nil {
			return domain.CheckoutCompletion{}, false
		}
		amount = d
	}
	return domain.CheckoutCompletion{
		SessionID: s.ID,
		UserID:    userID,
		Charity:   charity,
		Amount:    amount,
	}, true
}

func (h *WebhookHandler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}
