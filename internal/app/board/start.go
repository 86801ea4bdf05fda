package board

import (
	"context"
	"fmt"
	"os"

	"orderboard/internal/catalog"
	"orderboard/internal/common/db"
	"orderboard/internal/common/httpx"
	"orderboard/internal/common/logger"
	"orderboard/internal/common/mq"
	"orderboard/internal/config"
	"orderboard/internal/gateway"
	"orderboard/internal/kanban"
)

// Run wires the board service and serves until ctx is canceled. Everything is
// constructed here and passed down explicitly; no component reaches for
// globals. The store lives exactly as long as the service: torn down on
// shutdown, rebuilt from the gateway on the next start.
func Run(ctx context.Context, cfg config.App) error {
	lg := logger.New("board-service")

	conn, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer conn.Close()

	mqc, err := mq.Dial(cfg.Rabbit)
	if err != nil {
		return fmt.Errorf("connect rabbitmq: %w", err)
	}
	defer mqc.Close()
	if err := mqc.DeclareChanges(); err != nil {
		return fmt.Errorf("declare changes topology: %w", err)
	}

	feed := gateway.NewChangeFeed(mqc, lg)
	gw := gateway.New(conn, feed, lg)
	if err := gw.EnsureSchema(ctx); err != nil {
		return err
	}

	store := kanban.NewStore()
	cat := catalog.New()
	notices := NewNotices()

	coord := kanban.NewCoordinator(store, gw, notices, lg)
	adapter := kanban.NewAdapter(store, coord)

	ordersStep := gateway.RefreshOrders(gw, store)
	refresh := func(ctx context.Context) error {
		if err := ordersStep(ctx); err != nil {
			notices.Warning("could not refresh orders, showing last known data")
			return err
		}
		// Catalog staleness is tolerable; orders are not.
		if products, err := gw.FetchProducts(ctx); err == nil {
			cat.ReplaceProducts(products)
		} else {
			lg.Warn("products_refresh_failed", err, nil)
		}
		if customers, err := gw.FetchCustomers(ctx); err == nil {
			cat.ReplaceCustomers(customers)
		} else {
			lg.Warn("customers_refresh_failed", err, nil)
		}
		return nil
	}

	refresher := gateway.NewRefresher(refresh, lg)
	coord.OnStaleReference(refresher.Kick)

	sub := feed.Subscribe(refresher.Kick)
	defer feed.Unsubscribe(sub)

	go func() {
		if err := feed.Run(ctx, consumerName()); err != nil {
			lg.Error("change_feed_stopped", err, nil)
		}
	}()
	go refresher.Run(ctx)

	if err := refresh(ctx); err != nil {
		lg.Warn("initial_load_failed", err, nil)
	} else {
		lg.Info("initial_load_done", map[string]any{"orders": store.Len()})
	}

	h := NewHandler(store, adapter, cat, gw, refresher, notices, lg)
	router := NewRouter(h, cfg.Server.AllowedOrigin, cfg.Auth.JWTSecret)

	srv := httpx.New(fmt.Sprintf(":%d", cfg.Server.Port), router)
	lg.Info("service_started", map[string]any{"port": cfg.Server.Port})
	err = srv.Run(ctx)

	// Let in-flight persists settle so no optimistic state is abandoned
	// mid-reconciliation.
	coord.Wait()
	lg.Info("service_stopped", nil)
	return err
}

func consumerName() string {
	h, _ := os.Hostname()
	return "board-service-" + h
}
