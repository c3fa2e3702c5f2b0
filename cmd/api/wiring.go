package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/Logistica-api/internal/application/inventory"
	"github.com/jhoicas/Logistica-api/internal/infrastructure/memory"
	"github.com/jhoicas/Logistica-api/internal/infrastructure/messaging"
	"github.com/jhoicas/Logistica-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Logistica-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/Logistica-api/internal/interfaces/http"
	"github.com/jhoicas/Logistica-api/pkg/config"
	"github.com/jhoicas/Logistica-api/pkg/logger"
)

// storage unidad de trabajo y lado de lectura del outbox del driver elegido.
type storage struct {
	runner inventory.TxRunner
	outbox messaging.Store
	close  func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.DriverMemory {
		s := memory.New(memory.WithLockTimeout(cfg.DB.LockTimeout))
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return &storage{runner: s, outbox: s, close: func() {}}, nil
	}

	dsn := cfg.DB.ConnectionString()
	if cfg.DB.RunMigrations {
		if err := postgres.RunMigrations(dsn, log); err != nil {
			return nil, err
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	return &storage{
		runner: postgres.NewTxRunner(pool, cfg.DB.LockTimeout),
		outbox: postgres.NewOutboxStore(pool),
		close:  pool.Close,
	}, nil
}

// rabbitPublisher cierra también la conexión AMQP.
type rabbitPublisher struct {
	*messaging.RabbitPublisher
	conn *amqp.Connection
}

func (p rabbitPublisher) Close() error {
	_ = p.RabbitPublisher.Close()
	return p.conn.Close()
}

func openPublisher(cfg *config.Config) (messaging.Publisher, error) {
	switch cfg.Events.Broker {
	case config.BrokerRabbitMQ:
		conn, err := amqp.Dial(cfg.Events.AMQPURL)
		if err != nil {
			return nil, fmt.Errorf("conexión a RabbitMQ: %w", err)
		}
		pub, err := messaging.NewRabbitPublisher(conn, cfg.Events.Exchange)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		return rabbitPublisher{RabbitPublisher: pub, conn: conn}, nil
	case config.BrokerKafka:
		return messaging.NewKafkaPublisher(messaging.NewKafkaWriter(cfg.Events.KafkaBrokers, cfg.Events.KafkaTopic)), nil
	default:
		return messaging.NopPublisher{}, nil
	}
}

// openIdempotency devuelve nil (sin soporte de Idempotency-Key) si REDIS_ADDR está vacío.
func openIdempotency(ctx context.Context, cfg *config.Config, log *logger.Logger) (httpRouter.IdempotencyStore, func(), error) {
	if cfg.Redis.Addr == "" {
		return nil, func() {}, nil
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("ping %s: %w", cfg.Redis.Addr, err)
	}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("idempotencia con Redis habilitada")
	return redis.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL), func() { _ = rdb.Close() }, nil
}

func relayID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "relay"
	}
	return host + "-" + uuid.NewString()[:8]
}
