package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/mediapoint/roster/internal/api"
	"github.com/mediapoint/roster/internal/config"
	"github.com/mediapoint/roster/internal/pkg/distlock"
	"github.com/mediapoint/roster/internal/pkg/logger"
	"github.com/mediapoint/roster/internal/runstate"
	"github.com/mediapoint/roster/internal/service/processing"
	"github.com/mediapoint/roster/internal/storage"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

// extractHost returns the host part of a connection URL for logging
// without credentials.
func extractHost(dsn string) string {
	at := strings.Index(dsn, "@")
	if at < 0 {
		return "(unknown)"
	}
	rest := dsn[at+1:]
	if slash := strings.Index(rest, "/"); slash >= 0 {
		rest = rest[:slash]
	}
	return rest
}

func main() {
	log.Println("╔════════════════════════════════════════════════════════════╗")
	log.Println("║  Roster Processor (cmd/server/main.go)                    ║")
	log.Println("║  Upload, classify and download subscriber rosters         ║")
	log.Println("╚════════════════════════════════════════════════════════════╝")

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if lvl, ok := logger.ParseLevel(cfg.Logging.Level); ok {
		logger.SetLevel(lvl)
	} else {
		log.Printf("[config] unknown log level %q, keeping INFO", cfg.Logging.Level)
	}
	logger.SetRedactPII(cfg.Logging.Redact())

	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional PostgreSQL connection (postgres state backend and advisory lock)
	var db *sql.DB
	if cfg.Database.URL != "" {
		log.Printf("[db] Connecting to PostgreSQL at %s", extractHost(cfg.Database.URL))
		db, err = sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)

		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		err = db.PingContext(pingCtx)
		pingCancel()
		if err != nil {
			log.Fatalf("Database ping failed: %v", err)
		}
		defer db.Close()
		log.Println("[db] PostgreSQL connected")
	}

	// Optional Redis connection (redis state backend and lock)
	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)

		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		err = redisClient.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			log.Fatalf("Redis ping failed: %v", err)
		}
		defer redisClient.Close()
		log.Printf("[redis] Connected to %s", opts.Addr)
	}

	blobs, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	log.Printf("Storage backend: %s", cfg.Storage.Type)

	state, err := newStateStore(ctx, cfg, db, redisClient)
	if err != nil {
		log.Fatalf("Failed to initialize run state: %v", err)
	}
	log.Printf("Run state backend: %s", cfg.State.Backend)

	newLock := func() distlock.DistLock {
		return distlock.NewLock(redisClient, db, cfg.Lock.Key, cfg.Lock.TTL())
	}

	svc := processing.NewService(blobs, state, processing.NewPipeline(cfg.Roster), newLock,
		processing.Keys{Source: cfg.Roster.SourceName, Output: cfg.Roster.OutputName})

	server, err := api.NewServer(cfg.Server, svc, api.NewHealthChecker(db, redisClient, blobs))
	if err != nil {
		log.Fatalf("Failed to build API server: %v", err)
	}

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, port)
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// newStateStore builds the run state backend named in the config.
func newStateStore(ctx context.Context, cfg *config.Config, db *sql.DB, redisClient *redis.Client) (runstate.Store, error) {
	switch cfg.State.Backend {
	case "memory":
		return runstate.NewMemoryStore(), nil
	case "redis":
		if redisClient == nil {
			return nil, fmt.Errorf("state backend redis requires REDIS_URL")
		}
		return runstate.NewRedisStore(redisClient, cfg.State.Key), nil
	case "postgres":
		if db == nil {
			return nil, fmt.Errorf("state backend postgres requires DATABASE_URL")
		}
		store := runstate.NewPostgresStore(db, cfg.State.Key)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("creating state table: %w", err)
		}
		return store, nil
	case "dynamodb":
		awsCfg, err := storage.LoadAWSConfig(ctx, cfg.Storage)
		if err != nil {
			return nil, err
		}
		return runstate.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.State.DynamoDBTable, cfg.State.Key), nil
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.State.Backend)
	}
}
