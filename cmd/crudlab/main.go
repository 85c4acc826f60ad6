package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	// _ "github.com/mattn/go-sqlite3" // requires gcc
	_ "modernc.org/sqlite"

	config "github.com/davicafu/crudlab/internal/config"
	itemDomain "github.com/davicafu/crudlab/internal/item/domain"
	itemHttp "github.com/davicafu/crudlab/internal/item/infra/inbound/http"
	itemClickhouse "github.com/davicafu/crudlab/internal/item/infra/outbound/analytics/clickhouse"
	itemMongo "github.com/davicafu/crudlab/internal/item/infra/outbound/db/mongodb"
	itemPostgre "github.com/davicafu/crudlab/internal/item/infra/outbound/db/postgre"
	itemSqlite "github.com/davicafu/crudlab/internal/item/infra/outbound/db/sqlite"
	"github.com/davicafu/crudlab/internal/shared/application"
	sharedDomain "github.com/davicafu/crudlab/internal/shared/domain"
	"github.com/davicafu/crudlab/internal/shared/infra/auth"
	sharedEvents "github.com/davicafu/crudlab/internal/shared/infra/events"
	sharedHttp "github.com/davicafu/crudlab/internal/shared/infra/inbound/http"
	sharedBus "github.com/davicafu/crudlab/internal/shared/infra/platform/bus"
	sharedCache "github.com/davicafu/crudlab/internal/shared/infra/platform/cache"
	"github.com/davicafu/crudlab/internal/shared/infra/relayer"
	"github.com/davicafu/crudlab/pkg/logger"
)

// ---------------- Main ----------------
func main() {
	logger.Init()          // inicializa zap
	log := logger.Logger() // obtiene logger estructurado
	defer log.Sync()       // flush buffers al salir

	ctx := context.Background()
	cfg := config.LoadConfig()

	// ---------------- DB ----------------
	var itemRepo itemDomain.ItemRepository

	switch cfg.DBDriver {
	case "postgres":
		db, err := sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			log.Fatal("failed to open Postgres", zap.Error(err))
		}
		defer db.Close()
		cfg.Pool.Apply(db)

		if err := db.PingContext(ctx); err != nil {
			log.Fatal("failed to ping Postgres", zap.Error(err))
		}
		if err := itemPostgre.InitPostgres(db); err != nil {
			log.Fatal("failed to initialize Postgres", zap.Error(err))
		}
		itemRepo = itemPostgre.NewItemRepoPostgres(db)

	case "mongo":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatal("failed to connect to MongoDB", zap.Error(err))
		}
		defer client.Disconnect(ctx)

		repo, err := itemMongo.NewItemRepoMongoDB(ctx, client, cfg.MongoDB)
		if err != nil {
			log.Fatal("failed to initialize MongoDB", zap.Error(err))
		}
		itemRepo = repo

	default: // sqlite
		db, err := sql.Open("sqlite", cfg.SQLitePath)
		if err != nil {
			log.Fatal("failed to open SQLite", zap.Error(err))
		}
		defer db.Close()
		cfg.Pool.Apply(db)

		if err := db.PingContext(ctx); err != nil {
			log.Fatal("failed to ping SQLite", zap.Error(err))
		}
		if err := itemSqlite.InitSQLite(db); err != nil {
			log.Fatal("failed to initialize SQLite", zap.Error(err))
		}
		itemRepo = itemSqlite.NewItemRepoSQLite(db)
	}

	// ---------------- Cache ----------------
	var cacheInstance sharedCache.Cache
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("⚠️ Redis no disponible, cache en memoria:", zap.Error(err))
		memCache := sharedCache.NewInMemoryCache(cfg.CacheTTL, 3*cfg.CacheTTL)
		defer memCache.Stop()
		cacheInstance = memCache
	} else {
		cacheInstance = sharedCache.NewRedisCache(rdb, cfg.CacheTTL)
		log.Info("✅ Redis conectado, cache habilitado")
	}

	// ---------------- Events ----------------
	var eventPublisher sharedBus.EventBus
	var auditEvents <-chan interface{}

	if cfg.UseKafka {
		log.Info("🚀 Usando Kafka como bus de eventos")

		writer := kafka.NewWriter(kafka.WriterConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		})
		defer writer.Close()

		eventPublisher = sharedEvents.NewKafkaPublisher(writer, log)
	} else {
		log.Info("⚡️Usando bus de eventos en memoria (canales de Go)")

		inMemoryBus := sharedEvents.NewInMemoryEventBus(cfg.KafkaTopic)
		eventPublisher = inMemoryBus
		auditEvents = inMemoryBus.Subscribe(100)
	}

	// ------------- Audit Worker -------------
	// Sólo en modo in-memory: con Kafka la auditoría la alimentaría un
	// consumidor externo del topic.
	var auditRepo *itemClickhouse.ItemAuditRepo
	if cfg.ClickHouseAddr != "" && auditEvents != nil {
		repo, err := itemClickhouse.NewItemAuditRepo(cfg.ClickHouseAddr, cfg.ClickHouseDB)
		if err != nil {
			log.Fatal("failed to connect to ClickHouse", zap.Error(err))
		}
		if err := repo.InitSchema(); err != nil {
			log.Fatal("failed to initialize ClickHouse schema", zap.Error(err))
		}
		auditRepo = repo

		log.Info("🎧 Iniciando audit worker sobre ClickHouse")
		auditWorker := relayer.NewAuditWorker(auditEvents, auditRepo, cfg.AuditPeriod, cfg.AuditLimit, log)
		auditWorker.Start(ctx)
	}

	// --------------- Servicio ---------------
	itemService := application.NewCRUDService("item", itemRepo, cacheInstance, eventPublisher, log)

	// ---------------- Auth ------------------
	var guard sharedDomain.CapabilityChecker
	if cfg.AuthToken != "" {
		guard = auth.NewTokenChecker(cfg.AuthToken)
	} else {
		log.Warn("⚠️ AUTH_TOKEN vacío, API abierta sin credenciales")
		guard = auth.AllowAll{}
	}

	// ---------------- HTTP ------------------
	router := gin.Default()
	router.Use(sharedHttp.ErrorHandler(log))
	router.Use(sharedHttp.CORS(cfg.AllowedOrigin))
	router.Use(auth.TokenFromHeader())

	itemHandler := itemHttp.NewItemHandler(itemService, guard, cfg.PageSize)
	itemHttp.RegisterItemRoutes(router, itemHandler)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if auditRepo != nil {
		router.GET("/items/trends", func(c *gin.Context) {
			if err := guard.Check(c.Request.Context(), sharedDomain.CapabilityRead); err != nil {
				c.Error(err)
				return
			}
			end := time.Now().UTC()
			start := end.AddDate(0, 0, -30)
			trends, err := auditRepo.GetDailyTrend(c.Request.Context(), start, end)
			if err != nil {
				c.Error(sharedDomain.Storage(err))
				return
			}
			c.JSON(200, gin.H{"data": trends})
		})
	}

	log.Info("🚀 Server running",
		zap.String("url", "http://localhost:"+cfg.HTTPPort),
	)
	if err := router.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
