package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Shopify/sarama"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/practice-sem-2/chat-service/internal/server"
	storage "github.com/practice-sem-2/chat-service/internal/storages"
	usecase "github.com/practice-sem-2/chat-service/internal/usecases"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
)

func initLogger(level string) *logrus.Logger {

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{
		PrettyPrint: true,
	})

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
		logger.
			WithField("log_level", level).
			Warning("specified invalid log level")
	} else {
		logger.SetLevel(logLevel)
		logger.
			WithField("log_level", level).
			Infof("specified %s log level", logLevel.String())
	}

	return logger
}

func initDB(dsn string, logger *logrus.Logger) *sqlx.DB {
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		logger.Fatalf("can't connect to database: %s", err.Error())
	}

	err = db.Ping()

	if err != nil {
		logger.Fatalf("database ping failed: %s", err.Error())
	}

	logger.Info("successfully connected to database")
	return db
}

func runMigrations(dir string, dsn string, logger *logrus.Logger) {
	if dir == "" {
		logger.Info("MIGRATIONS_DIR is not set, skipping migrations")
		return
	}

	m, err := migrate.New(dir, dsn)
	if err != nil {
		logger.Fatalf("can't open migrations: %s", err.Error())
	}
	defer m.Close()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("database schema is up to date")
	} else if err != nil {
		logger.Fatalf("can't migrate database: %s", err.Error())
	} else {
		logger.Info("database successfully migrated")
	}
}

func initServer(address string, s server.Services, h *server.HealthChecker, logger *logrus.Logger) (*grpc.Server, net.Listener) {

	listener, err := net.Listen("tcp", address)
	logger.Infof("start listening on %s", address)

	if err != nil {
		logger.Fatalf("can't listen to address: %s", err.Error())
	}

	return server.NewGrpcServer(s, h, logger), listener
}

func initProducer(logger *logrus.Logger) sarama.SyncProducer {
	brokers := viper.GetString("KAFKA_BROKERS")
	if len(brokers) == 0 {
		logger.Fatal("KAFKA_BROKERS environment variable must be defined")
	}

	addrs := strings.Split(brokers, ",")
	producer, err := sarama.NewSyncProducer(addrs, storage.NewProducerConfig())

	if err != nil {
		logger.WithError(err).Fatalf("can't create producer")
	}

	return producer
}

func main() {
	viper.AutomaticEnv()
	viper.SetDefault("UPDATES_TOPIC", "chat-rooms-updates")
	viper.SetDefault("HEALTH_CHECK_INTERVAL", 5*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var host string
	var port int
	var logLevel string

	flag.IntVar(&port, "port", 80, "port on which server will be started")
	flag.StringVar(&host, "host", "0.0.0.0", "host on which server will be started")
	flag.StringVar(&logLevel, "log", "info", "log level")

	flag.Parse()

	logger := initLogger(logLevel)

	dsn := viper.GetString("DB_DSN")
	runMigrations(viper.GetString("MIGRATIONS_DIR"), viper.GetString("MIGRATIONS_DSN"), logger)

	db := initDB(dsn, logger)
	defer func(db *sqlx.DB) {
		err := db.Close()
		if err != nil {
			logger.Fatalf("during db connection close an error occurred: %s", err.Error())
		}
	}(db)

	producer := initProducer(logger)
	defer func(p sarama.SyncProducer) {
		if err := p.Close(); err != nil {
			logger.WithError(err).Error("can't close producer")
		}
	}(producer)

	store := storage.NewRegistry(db, producer, &storage.UpdatesStoreConfig{
		UpdatesTopic: viper.GetString("UPDATES_TOPIC"),
	})

	membership := usecase.NewMembershipUsecase(store, logger.WithField("usecase", "membership"))
	services := server.Services{
		Rooms:         usecase.NewRoomsUsecase(store, membership, usecase.NewValidator()),
		Membership:    membership,
		ReadPositions: usecase.NewReadPositionsUsecase(store),
	}

	health := server.NewHealthChecker(db, logger, viper.GetDuration("HEALTH_CHECK_INTERVAL"))
	go health.Run(ctx)

	address := fmt.Sprintf("%s:%d", host, port)
	srv, lis := initServer(address, services, health, logger)
	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	go func(ctx context.Context) {
		select {
		case sig := <-osSignal:
			cancel()
			srv.GracefulStop()
			logger.Infof("%s caught. Gracefully shutdown", sig.String())
		case <-ctx.Done():
			return
		}
	}(ctx)

	err := srv.Serve(lis)
	if err != nil {
		logger.Fatalf("grpc serving error: %s", err.Error())
	}
}
