// Package server boots the shop: it connects the stores, builds the
// services, serves HTTP and gRPC, and shuts everything down on SIGINT or
// SIGTERM.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/planty/app/controllers"
	"github.com/shashiranjanraj/planty/app/repositories"
	"github.com/shashiranjanraj/planty/app/routes"
	"github.com/shashiranjanraj/planty/app/services"
	"github.com/shashiranjanraj/planty/config"
	"github.com/shashiranjanraj/planty/internal/kernel"
	"github.com/shashiranjanraj/planty/pkg/auth"
	"github.com/shashiranjanraj/planty/pkg/cache"
	"github.com/shashiranjanraj/planty/pkg/database"
	"github.com/shashiranjanraj/planty/pkg/event"
	grpcserver "github.com/shashiranjanraj/planty/pkg/grpc"
	"github.com/shashiranjanraj/planty/pkg/logger"
	"github.com/shashiranjanraj/planty/pkg/mail"
	"github.com/shashiranjanraj/planty/pkg/queue"
	"github.com/shashiranjanraj/planty/pkg/ratelimit"
	"github.com/shashiranjanraj/planty/pkg/storage"
	"github.com/shashiranjanraj/planty/pkg/ws"
)

const (
	// OrderEventsQueue is the durable broker queue order events land in.
	OrderEventsQueue = "order_events"

	cachePrefix     = "planty:"
	queueWorkers    = 4
	healthInterval  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Start runs the server until a shutdown signal arrives.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}
	if err := config.CheckJWTSecret(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Connect(ctx, config.MongoURI(), config.MongoDatabase(), config.DBTimeout()); err != nil {
		return err
	}
	defer database.Disconnect(context.Background()) //nolint:errcheck

	if config.LogToMongo() {
		mh := logger.NewMongoHandler(database.Collection(database.Logs), slog.LevelInfo)
		logger.Setup(config.AppEnv(), os.Stdout, mh)
		defer mh.Close()
	}

	infra := connectRedis(ctx)
	defer infra.close()

	disks, err := storage.Connect(ctx, storage.ConfigFromEnv())
	if err != nil {
		return err
	}
	disk := disks.Default()

	issuer, err := auth.NewIssuer(config.JWTSecret())
	if err != nil {
		return err
	}

	var sink queue.Sink = queue.LogSink{}
	if url := config.AMQPURL(); url != "" {
		amqpSink := queue.NewAMQP(url, OrderEventsQueue)
		defer amqpSink.Close() //nolint:errcheck
		sink = amqpSink
	}
	q := queue.New(infra.driver, sink, queue.WithFailedStore(queue.NewMongoFailedStore(database.DB)))
	q.Start(ctx, queueWorkers)

	hub := ws.NewHub(ws.AllowOrigins(config.CORSOrigins()))
	go hub.Run(ctx)

	bus := event.NewBus()
	wireEvents(bus, hub, q)

	timeout := config.DBTimeout()
	users := repositories.NewUserRepository(database.DB, timeout)
	plants := repositories.NewPlantRepository(database.DB, timeout)

	userSvc := services.NewUserService(users, issuer, auth.NewHasher(config.BcryptCost()),
		mailer(), infra.limiter, services.UserConfigFromEnv())
	plantSvc := services.NewPlantService(plants, cache.New(infra.cache, cachePrefix), config.CacheTTL(), disk)
	cartSvc := services.NewCartService(repositories.NewCartRepository(database.DB, timeout), users, plants)
	favSvc := services.NewFavoriteService(repositories.NewFavoriteRepository(database.DB, timeout), users, plants)
	orderSvc := services.NewOrderService(repositories.NewOrderRepository(database.DB, timeout), users, plants, bus)

	deps := kernel.Deps{
		Issuer: issuer,
		Controllers: routes.Controllers{
			Users:     controllers.NewUserController(userSvc),
			Plants:    controllers.NewPlantController(plantSvc),
			Carts:     controllers.NewCartController(cartSvc),
			Favorites: controllers.NewFavoriteController(favSvc),
			Orders:    controllers.NewOrderController(orderSvc),
		},
		Limiter:     infra.limiter,
		RateLimit:   config.RateLimit(),
		CORSOrigins: config.CORSOrigins(),
		Catalog:     plantSvc,
		Hub:         hub,
	}
	if root, ok := storage.Root(disk); ok {
		deps.StorageRoot = root
	}
	k, err := kernel.NewHTTPKernel(deps)
	if err != nil {
		return err
	}

	gs := grpcserver.New(database.Ping)
	if err := gs.Start(config.GRPCPort()); err != nil {
		return err
	}
	defer gs.Stop()
	go gs.Watch(ctx, healthInterval)

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           k.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: listen: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("HTTP server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// infra is what Redis backs, or its in-memory stand-ins.
type infra struct {
	cache   cache.Backend
	limiter ratelimit.Limiter
	driver  queue.Driver
	close   func()
}

// connectRedis falls back to in-memory backends when Redis is unreachable,
// so a single instance still runs without it.
func connectRedis(ctx context.Context) infra {
	rdb, err := cache.Connect(ctx, config.RedisAddr(), config.RedisPassword())
	if err != nil {
		logger.Warn("redis unavailable, using in-memory cache, limiter and queue", "error", err)
		mem := ratelimit.NewMemory()
		mem.StartSweeper(ctx, time.Minute)
		return infra{
			cache:   cache.NewMemory(),
			limiter: mem,
			driver:  queue.NewMemoryDriver(1024),
			close:   func() {},
		}
	}
	return infra{
		cache:   cache.NewRedis(rdb),
		limiter: ratelimit.NewRedis(rdb, "planty:rl:"),
		driver:  queue.NewRedisDriver(rdb),
		close:   func() { closeRedis(rdb) },
	}
}

func closeRedis(rdb *redis.Client) {
	if err := rdb.Close(); err != nil {
		logger.Warn("redis close", "error", err)
	}
}

// mailer sends over SMTP when credentials are configured and logs otherwise.
func mailer() mail.Mailer {
	if config.MailUsername() == "" {
		logger.Warn("MAIL_USERNAME not set, reset codes will be logged instead of emailed")
		return mail.LogMailer{}
	}
	return mail.NewSMTP(mail.ConfigFromEnv())
}
