package main

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ahinestrog/librosapi/internal/cart"
	"github.com/ahinestrog/librosapi/internal/catalog"
	"github.com/ahinestrog/librosapi/internal/config"
	"github.com/ahinestrog/librosapi/internal/events"
	"github.com/ahinestrog/librosapi/internal/grpcserver"
	"github.com/ahinestrog/librosapi/internal/httpapi"
	"github.com/ahinestrog/librosapi/internal/logging"
	"github.com/ahinestrog/librosapi/internal/sqlitedb"
	"github.com/ahinestrog/librosapi/internal/user"
)

type stores struct {
	books catalog.Repository
	users user.Registry
	carts cart.Store
	db    *sql.DB
}

func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	var s stores
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		db, err := sqlitedb.Open(ctx, cfg.SQLiteDSN)
		if err != nil {
			return stores{}, err
		}
		s = stores{books: catalog.NewSQLiteRepo(db), users: user.NewSQLiteRegistry(db), carts: cart.NewSQLiteStore(db), db: db}
	default:
		s = stores{books: catalog.NewMemoryRepo(), users: user.NewMemoryRegistry(), carts: cart.NewMemoryStore()}
	}
	if cfg.BookCacheSize > 0 {
		cached, err := catalog.NewCachedRepository(s.books, cfg.BookCacheSize)
		if err != nil {
			return stores{}, err
		}
		s.books = cached
	}
	return s, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logging.Setup(cfg.LogLevel, cfg.LogPretty)
	log.Info().
		Str("http", cfg.HTTPAddr).
		Str("grpc", cfg.GRPCAddr).
		Str("store", cfg.StoreDriver).
		Bool("events", cfg.RabbitURL != "").
		Msg("starting librosapi")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := openStores(ctx, cfg)
	must(err)
	if st.db != nil {
		defer st.db.Close()
	}

	// Eventos opcionales: sin broker el servicio sigue funcionando
	var pub events.Publisher
	rabbit, err := events.NewRabbit(cfg.RabbitURL, cfg.RabbitExchange)
	if err != nil {
		log.Warn().Err(err).Msg("RabbitMQ not available, continuing without events")
	} else if rabbit != nil {
		defer rabbit.Close()
		pub = rabbit
	}

	books := catalog.NewService(st.books, pub)
	if cfg.SeedCatalog {
		n, err := books.Seed(ctx, catalog.StarterBooks)
		must(err)
		log.Info().Int("books", n).Msg("catalog seeded")
	}
	carts := cart.NewService(st.carts, books, pub)
	users := user.NewService(st.users, st.carts, pub)

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewServer(books, users, carts, cfg.CORSOrigins).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 2)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	var grpcSrv *grpcserver.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		must(err)
		grpcSrv = grpcserver.New()
		go func() {
			log.Info().Str("addr", cfg.GRPCAddr).Msg("gRPC health listening")
			if err := grpcSrv.Serve(lis); err != nil {
				errc <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		log.Warn().Msg("shutting down...")
	case err := <-errc:
		log.Error().Err(err).Msg("server failed")
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer stop()
	if grpcSrv != nil {
		grpcSrv.Shutdown()
	}
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	log.Info().Msg("bye")
}

func must(err error) {
	if err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}
