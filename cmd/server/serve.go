package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rippleeffect/charity-service/internal/adapters/checkout"
	grpcadapter "github.com/rippleeffect/charity-service/internal/adapters/grpc"
	"github.com/rippleeffect/charity-service/internal/adapters/llm"
	"github.com/rippleeffect/charity-service/internal/adapters/parser"
	"github.com/rippleeffect/charity-service/internal/adapters/store"
	"github.com/rippleeffect/charity-service/internal/config"
	"github.com/rippleeffect/charity-service/internal/pkg/grpcserver"
	"github.com/rippleeffect/charity-service/internal/ports"
	"github.com/rippleeffect/charity-service/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gRPC API and the Stripe webhook server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	var gateway ports.CheckoutGateway = checkout.Unconfigured{}
	if cfg.Stripe.SecretKey != "" {
		gateway, err = checkout.NewStripeGateway(cfg.Stripe, log.With().Str("component", "stripe").Logger())
		if err != nil {
			return err
		}
	} else {
		log.Warn().Msg("STRIPE_SECRET_KEY not set, donations are disabled")
	}

	svc, err := newService(ctx, st, gateway)
	if err != nil {
		return err
	}

	// Adapters (interfaces)
	grpcSrv := grpcserver.New(cfg.GRPCAddr, log.With().Str("component", "grpc").Logger())
	grpcadapter.RegisterCharityServer(grpcSrv.Server, grpcadapter.NewServer(svc, log))
	grpcSrv.SetServingStatus(grpcadapter.ServiceName, true)

	if cfg.Stripe.WebhookSecret == "" {
		log.Warn().Msg("STRIPE_WEBHOOK_SECRET not set, webhook endpoint rejects all events")
	}
	webhook := checkout.NewWebhookHandler(cfg.Stripe.WebhookSecret, svc, st, log.With().Str("component", "webhook").Logger())
	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           webhook.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := grpcSrv.Start(); err != nil {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		grpcSrv.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openStore(ctx context.Context, c config.StoreConfig) (ports.Store, error) {
	l := log.With().Str("component", "store").Str("driver", c.Driver).Logger()
	switch c.Driver {
	case "sqlite":
		return store.NewSQLiteStore(ctx, c.SQLitePath, l)
	case "dynamodb":
		return store.NewDynamoDBStore(ctx, c.DynamoDB, l)
	case "memory", "":
		l.Warn().Msg("using in-memory store, data is lost on exit")
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", c.Driver)
	}
}

func newService(ctx context.Context, st ports.Store, gateway ports.CheckoutGateway) (*usecase.CharityService, error) {
	gen, err := llm.New(ctx, cfg.LLM, log.With().Str("component", "llm").Str("provider", cfg.LLM.Provider).Logger())
	if err != nil {
		return nil, fmt.Errorf("failed to create text generator: %w", err)
	}
	minimum, err := cfg.Stripe.Minimum()
	if err != nil {
		return nil, err
	}
	return usecase.NewCharityService(usecase.Deps{
		LLM:             gen,
		Parser:          parser.NewRulesParser(),
		Store:           st,
		Checkout:        gateway,
		Logger:          log.With().Str("component", "service").Logger(),
		LLMTimeout:      cfg.LLM.Timeout,
		MaxConcurrency:  cfg.LLM.MaxConcurrency,
		MinimumDonation: &minimum,
	}), nil
}
