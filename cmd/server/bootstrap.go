package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/cache"
	"github.com/example/bazaar/internal/config"
	"github.com/example/bazaar/internal/database"
	"github.com/example/bazaar/internal/mq"
	"github.com/example/bazaar/internal/notify"
	"github.com/example/bazaar/internal/routes"
	"github.com/example/bazaar/internal/services"
	"github.com/example/bazaar/internal/storage"
	"github.com/example/bazaar/internal/store"
)

const notifyTimeout = 15 * time.Second

// runtime holds the long-lived connections shared by the commands.
type runtime struct {
	cfg   *config.Config
	db    *gorm.DB
	redis *redis.Client
	queue *mq.MQ
	media storage.ObjectStorage
}

func connectDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func connectQueue(cfg *config.Config) (*mq.MQ, error) {
	if cfg.MQ.URL == "" {
		return nil, nil
	}
	client, err := mq.NewRabbitMQClient(cfg.MQ)
	if err != nil {
		return nil, err
	}
	return mq.New(client), nil
}

func newRuntime(ctx context.Context, cfg *config.Config) (*runtime, error) {
	db, err := connectDatabase(cfg)
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, db: db}

	if cfg.Redis.Addr != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.redis = client
	}

	if cfg.Minio.Endpoint != "" {
		client, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			rt.Close()
			return nil, err
		}
		if err := client.EnsureBucket(ctx); err != nil {
			rt.Close()
			return nil, err
		}
		rt.media = client
	}

	queue, err := connectQueue(cfg)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.queue = queue

	return rt, nil
}

// Close releases every open connection.
func (rt *runtime) Close() {
	if rt.queue != nil {
		if err := rt.queue.Close(); err != nil {
			log.Printf("[Bootstrap] close queue: %v", err)
		}
	}
	if rt.redis != nil {
		if err := rt.redis.Close(); err != nil {
			log.Printf("[Bootstrap] close redis: %v", err)
		}
	}
	if rt.db != nil {
		if sqlDB, err := rt.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func (rt *runtime) otpSender() (services.OTPSender, error) {
	switch rt.cfg.OTP.Delivery {
	case "", "log":
		return notify.LogSender{}, nil
	case "sms":
		if rt.cfg.SMS.GatewayURL == "" {
			return nil, errors.New("OTP_DELIVERY=sms requires SMS_GATEWAY_URL")
		}
		return notify.NewAsyncSender(notify.NewSMSGateway(rt.cfg.SMS.GatewayURL, rt.cfg.SMS.Token), notifyTimeout), nil
	case "queue":
		if rt.queue == nil {
			return nil, errors.New("OTP_DELIVERY=queue requires RABBITMQ_URL")
		}
		return notify.NewQueueSender(rt.queue), nil
	default:
		return nil, fmt.Errorf("unknown OTP_DELIVERY %q", rt.cfg.OTP.Delivery)
	}
}

func (rt *runtime) orderNotifier() services.OrderNotifier {
	if rt.queue != nil {
		return notify.NewAsyncNotifier(notify.NewQueueNotifier(rt.queue), notifyTimeout)
	}
	if rt.cfg.TelegramBotToken != "" && rt.cfg.TelegramAdminChat != "" {
		return notify.NewAsyncNotifier(notify.NewTelegramService(rt.cfg.TelegramBotToken, rt.cfg.TelegramAdminChat), notifyTimeout)
	}
	return nil
}

func (rt *runtime) services() (routes.Services, error) {
	sender, err := rt.otpSender()
	if err != nil {
		return routes.Services{}, err
	}

	var products store.ProductRepository = store.NewProductStore(rt.db)
	if rt.redis != nil {
		products = cache.NewCachedProductRepository(products, rt.redis, rt.cfg.Redis.TTL)
	}
	carts := store.NewCartStore(rt.db)

	return routes.Services{
		Auth:    services.NewAuthService(store.NewUserStore(rt.db), store.NewChallengeStore(rt.db), sender, services.AuthConfigFrom(rt.cfg)),
		Catalog: services.NewCatalogService(products, store.NewHomeProductStore(rt.db), rt.media),
		Cart:    services.NewCartService(carts, products),
		Orders:  services.NewOrderService(store.NewOrderStore(rt.db), carts, products, rt.orderNotifier()),
	}, nil
}
