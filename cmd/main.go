package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-clinic-scheduler/config"
	"github.com/oksasatya/go-clinic-scheduler/internal/application"
	"github.com/oksasatya/go-clinic-scheduler/internal/container"
	"github.com/oksasatya/go-clinic-scheduler/internal/domain/entity"
	"github.com/oksasatya/go-clinic-scheduler/internal/infrastructure/idgen"
	"github.com/oksasatya/go-clinic-scheduler/internal/infrastructure/jsonfile"
	"github.com/oksasatya/go-clinic-scheduler/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/go-clinic-scheduler/internal/infrastructure/postgres"
	"github.com/oksasatya/go-clinic-scheduler/internal/infrastructure/redisstore"
	"github.com/oksasatya/go-clinic-scheduler/internal/infrastructure/search"
	"github.com/oksasatya/go-clinic-scheduler/internal/interface/middleware"
	"github.com/oksasatya/go-clinic-scheduler/internal/router"
	"github.com/oksasatya/go-clinic-scheduler/pkg/helpers"
	"github.com/oksasatya/go-clinic-scheduler/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()
	loc := cfg.Location()

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetClock(application.SystemClock{Location: loc})
	container.SetIDAllocator(idgen.Sequential{})

	closeStorage := setupStorage(ctx, cfg, logger)
	defer closeStorage()

	// Redis: distributed lock + rate limiting; in-process lock otherwise
	container.SetLocker(memory.NewKeyedLocker())
	if cfg.RedisAddr != "" {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() { _ = rdb.Close() }()
		if err := helpers.PingRedis(ctx, rdb); err != nil {
			logger.WithError(err).Fatal("failed to connect to redis")
		}
		container.SetRedis(rdb)
		container.SetLocker(redisstore.NewLocker(rdb, cfg.AppName+":", logger))
	}

	if cfg.GCSBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.WithError(err).Fatal("failed to init GCS client")
		}
		defer func() { _ = gcsClient.Close() }()
		container.SetGCS(gcsClient)
	}

	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEventsQueue)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to rabbitmq")
		}
		defer pub.Close()
		container.SetRabbitPub(pub)
	}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Fatal("failed to init elasticsearch client")
		}
		if err := helpers.EnsureIndex(ctx, es, cfg.ESPatientsIndex, search.Mapping); err != nil {
			logger.WithError(err).Warn("patients index unavailable, search falls back to scan")
		}
		container.SetES(es)
	}

	if cfg.CancelTokenSecret != "" {
		container.SetCancelTokens(helpers.NewCancelTokenManager(cfg.CancelTokenSecret, cfg.CancelTokenTTL))
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.WithFields(logrus.Fields{"port": cfg.Port, "storage": cfg.StorageDriver, "tz": loc.String()}).
			Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

// setupStorage installs the repositories for cfg.StorageDriver and returns a
// cleanup func.
func setupStorage(ctx context.Context, cfg *config.Config, logger *logrus.Logger) func() {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		container.SetRepositories(memory.NewStore[entity.Patient](), memory.NewStore[entity.Doctor](), memory.NewStore[entity.Appointment]())
		logger.Warn("using in-memory storage, data is lost on restart")
		return func() {}
	case config.StoragePostgres:
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			pool.Close()
			log.Fatalf("migration failed: %v", err)
		}
		container.SetPGPool(pool)
		container.SetRepositories(
			pginfra.NewPatientRepository(pool),
			pginfra.NewDoctorRepository(pool),
			pginfra.NewAppointmentRepository(pool),
		)
		return pool.Close
	case config.StorageJSONFile:
		stores := jsonfile.Open(cfg.DataDir)
		container.SetRepositories(stores.Patients, stores.Doctors, stores.Appointments)
		logger.WithField("dir", cfg.DataDir).Info("using json file storage")
		return func() {}
	}
	log.Fatalf("unknown STORAGE_DRIVER %q (want memory, jsonfile or postgres)", cfg.StorageDriver)
	return nil
}
