package cmd

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/matthieukhl/buildright/internal/assistant"
	"github.com/matthieukhl/buildright/internal/auth"
	"github.com/matthieukhl/buildright/internal/cart"
	"github.com/matthieukhl/buildright/internal/catalog"
	"github.com/matthieukhl/buildright/internal/config"
	"github.com/matthieukhl/buildright/internal/describe"
	"github.com/matthieukhl/buildright/internal/events"
	"github.com/matthieukhl/buildright/internal/llm"
	"github.com/matthieukhl/buildright/internal/logging"
	"github.com/matthieukhl/buildright/internal/server"
	"github.com/matthieukhl/buildright/internal/types"
)

// app holds the stores and bridges shared by the commands
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	bus       *events.Bus
	catalog   *catalog.Store
	cart      *cart.Cart
	gate      *auth.Gate
	provider  types.Provider
	describer *describe.Describer
	chats     *assistant.Registry
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger, err := logging.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	bus := events.NewBus()
	if err := bus.LogEvents(logger); err != nil {
		return nil, err
	}

	seed, err := catalog.LoadFixture(cfg.Catalog.Fixture)
	if err != nil {
		return nil, err
	}
	ids, err := catalog.NewSnowflakeIDs(cfg.Catalog.NodeID)
	if err != nil {
		return nil, err
	}

	taxRate := cart.DefaultTaxRate
	if cfg.Store.TaxRate != "" {
		taxRate, err = decimal.NewFromString(cfg.Store.TaxRate)
		if err != nil {
			return nil, fmt.Errorf("invalid store.tax_rate %q: %w", cfg.Store.TaxRate, err)
		}
	}

	provider, err := llm.NewProvider(ctx, &cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm provider: %w", err)
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		bus:       bus,
		catalog:   catalog.New(seed, ids, bus),
		cart:      cart.New(taxRate, bus),
		gate:      auth.NewGate(auth.NewStaticAuthenticator(cfg.Admin.Username, cfg.Admin.Password), bus),
		provider:  provider,
		describer: describe.New(provider, logger),
		chats:     assistant.NewRegistry(provider, logger, bus),
	}, nil
}

func (a *app) server() *server.Server {
	return server.NewServer(server.Deps{
		Catalog:   a.catalog,
		Cart:      a.cart,
		Gate:      a.gate,
		Describer: a.describer,
		Chats:     a.chats,
		Logger:    a.logger,
		Model:     a.provider.Model(),
	})
}

func (a *app) close() {
	if err := a.chats.CloseAll(); err != nil {
		a.logger.Warn("failed to close chat sessions", zap.Error(err))
	}
	_ = a.logger.Sync()
}
