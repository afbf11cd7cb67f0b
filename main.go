package main

import (
	"context"

	"github.com/Aquilabot/KreaPC-Specs/internal/config"
	"github.com/Aquilabot/KreaPC-Specs/pkg/browser"
	"github.com/Aquilabot/KreaPC-Specs/pkg/gateway"
	"github.com/Aquilabot/KreaPC-Specs/pkg/keylock"
	"github.com/Aquilabot/KreaPC-Specs/pkg/normalizer"
	"github.com/Aquilabot/KreaPC-Specs/pkg/resolver"
	"github.com/Aquilabot/KreaPC-Specs/pkg/store"
	"github.com/Aquilabot/KreaPC-Specs/pkg/validate"
	"github.com/gofiber/fiber/v2/log"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()

	// Proxy gateway, optionally rendering through a local headless browser
	var gatewayOpts []gateway.Option
	if cfg.Proxy.RenderMode == config.RenderModeBrowser {
		b := browser.New(cfg.Proxy.BrowserProxy, cfg.Proxy.Token)
		defer b.Close()
		gatewayOpts = append(gatewayOpts, gateway.WithRenderer(b))
	}
	gw := gateway.New(cfg.Proxy, nil, gatewayOpts...)

	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	norm, err := normalizer.New(cfg.Normalizer.Denylist...)
	if err != nil {
		log.Fatal(err)
	}

	engineOpts := []resolver.EngineOption{
		resolver.WithNormalizer(norm),
		resolver.WithLockWait(cfg.Lock.Wait),
	}
	if cfg.Lock.RedisAddr != "" {
		locker, err := keylock.DialRedis(ctx, cfg.Lock)
		if err != nil {
			log.Fatal(err)
		}
		defer locker.Close()
		engineOpts = append(engineOpts, resolver.WithLocker(locker))
	}

	orchestrator := resolver.NewOrchestrator(
		gw,
		validate.New(cfg.Validation.MinOverlap),
		resolver.DefaultProviders().Enabled(cfg.Providers),
		cfg.Providers.MaxCandidates,
	)
	engine := resolver.NewEngine(orchestrator, st, engineOpts...)

	app := newApp(engine, gw.Credits())

	// Start the server
	log.Fatal(app.Listen(cfg.ListenAddr))
}

func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	if cfg.Driver == config.StorePostgres {
		pg, err := store.OpenPostgres(ctx, cfg.DSN, cfg.Migrate)
		if err != nil {
			return nil, err
		}
		return pg, nil
	}
	log.Info("Using in-memory spec store, records are lost on restart")
	return store.NewMemory(), nil
}
