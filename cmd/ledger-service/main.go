package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auction-ledger/internal/api/handlers"
	"auction-ledger/internal/config"
	"auction-ledger/internal/domain"
	"auction-ledger/internal/infrastructure/file"
	"auction-ledger/internal/infrastructure/mysql"
	"auction-ledger/internal/infrastructure/redis"
	"auction-ledger/internal/infrastructure/websocket"
	"auction-ledger/internal/ledger"
	"auction-ledger/internal/services"
	"auction-ledger/pkg/logger"

	redisClient "github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	log := logger.New()
	log.Info("Starting Auction Ledger Service")

	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize Redis
	rdb := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to Redis", "address", cfg.Redis.Address)

	// MySQL audit trail is optional: an empty DSN disables it.
	var auditRepo domain.LedgerEventRepository
	if cfg.MySQL.DSN != "" {
		db, err := sql.Open("mysql", cfg.MySQL.DSN)
		if err != nil {
			log.Error("Failed to connect to MySQL", "error", err)
			os.Exit(1)
		}
		defer func(db *sql.DB) {
			if err := db.Close(); err != nil {
				log.Error("Failed to close MySQL connection", "error", err)
			}
		}(db)

		db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

		if err := db.PingContext(ctx); err != nil {
			log.Error("Failed to ping MySQL", "error", err)
			os.Exit(1)
		}
		log.Info("Connected to MySQL, audit trail enabled")

		auditRepo = mysql.NewMySQLLedgerEventRepository(db)
	}

	// Select the snapshot backend
	var snapshots domain.SnapshotStore
	switch cfg.Snapshot.Backend {
	case "redis":
		snapshots = redis.NewRedisSnapshotStore(rdb, cfg.Snapshot.Key)
	default:
		snapshots = file.NewSnapshotStore(cfg.Snapshot.Path)
	}
	log.Info("Snapshot backend selected", "backend", cfg.Snapshot.Backend)

	// Initialize the aggregate and restore it. A corrupted snapshot
	// must abort startup: continuing would discard committed state.
	store := ledger.NewStore(log)
	checkpointer := services.NewCheckpointer(store, snapshots, cfg.Snapshot.AutosaveSpec, log)
	if err := checkpointer.Restore(context.Background()); err != nil {
		log.Error("Failed to restore state", "error", err)
		os.Exit(1)
	}

	if err := checkpointer.Start(context.Background()); err != nil {
		log.Error("Failed to start checkpointer", "error", err)
		os.Exit(1)
	}

	eventPublisher := redis.NewEventPublisher(rdb)
	ledgerService := services.NewLedgerService(store, eventPublisher, auditRepo, log)

	// Spectator fan-out: the subscriber bridges redis events onto the
	// websocket connection manager.
	connManager := websocket.NewConnectionManager(log)
	subscriber := redis.NewRedisEventSubscriber(rdb, log)
	subCtx, subCancel := context.WithCancel(context.Background())
	defer subCancel()
	go func() {
		err := subscriber.SubscribeToLedgerEvents(subCtx, func(event *domain.LedgerEvent) error {
			return connManager.BroadcastToItem(event.ItemID, event)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Event subscription ended", "error", err)
		}
	}()

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestID())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: `{"time":"${time_rfc3339}","id":"${id}","remote_ip":"${remote_ip}","host":"${host}","method":"${method}","uri":"${uri}","user_agent":"${user_agent}","status":${status},"error":"${error}","latency":${latency},"latency_human":"${latency_human}","bytes_in":${bytes_in},"bytes_out":${bytes_out}}` + "\n",
	}))
	e.Use(middleware.Recover())

	ledgerHandler := handlers.NewLedgerHandler(ledgerService, log)
	wsHandler := handlers.NewWebSocketHandler(ledgerService, connManager, log)

	// Mutations require a verified caller identity; queries do not.
	api := e.Group("/api/v1")
	mutations := api.Group("", handlers.CallerIdentity)
	mutations.POST("/items", ledgerHandler.ListItem)
	mutations.POST("/items/:id/bids", ledgerHandler.BidForItem)
	mutations.PATCH("/items/:id", ledgerHandler.UpdateListing)
	mutations.POST("/items/:id/stop", ledgerHandler.StopListing)

	api.GET("/items", ledgerHandler.ListAllItems)
	api.GET("/items/count", ledgerHandler.GetListedItemsCount)
	api.GET("/items/:id", ledgerHandler.GetItem)
	api.GET("/items/:id/bids", ledgerHandler.GetBidsForItem)
	api.GET("/items/:id/bids/highest", ledgerHandler.GetHighestBidForItem)
	api.GET("/stats/most-expensive-sold", ledgerHandler.GetMostExpensiveSoldItem)
	api.GET("/stats/most-bids", ledgerHandler.GetItemWithMostBids)
	if ledgerService.HistoryEnabled() {
		api.GET("/items/:id/history", ledgerHandler.GetItemHistory)
	}

	e.GET("/ws/items/:id", wsHandler.HandleConnection)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"service":   "ledger-service",
			"timestamp": time.Now().Format(time.RFC3339),
			"items":     store.ListedItemsCount(),
		})
	})

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("Starting ledger server", "address", serverAddr)

	go func() {
		if err := e.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down ledger service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	subCancel()

	// Pre-shutdown save. If the aggregate cannot be persisted the
	// process must not pretend the shutdown was clean.
	if err := shutdown(shutdownCtx, e, checkpointer, log); err != nil {
		log.Error("Failed to save snapshot on shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Ledger service stopped")
}

type dispatcher interface {
	Shutdown(ctx context.Context) error
}

// shutdown drains the dispatch layer before the final snapshot is
// taken. The ordering matters: a mutation accepted while the server
// drains must be captured by the save, so the save runs only once no
// more operations can reach the aggregate.
func shutdown(ctx context.Context, d dispatcher, checkpointer *services.Checkpointer, log logger.Logger) error {
	if err := d.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if err := checkpointer.Stop(); err != nil {
		log.Error("Failed to stop checkpointer", "error", err)
	}

	return checkpointer.Save(ctx)
}
