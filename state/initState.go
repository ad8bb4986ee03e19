package state

import (
	"context"
	"time"

	"github.com/ramanchaudhary2058/sajilobackend/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"gorm.io/gorm"
)

// AppState carries the shared backing-service handles. Redis and Mongo are optional and nil when not configured.
type AppState struct {
	Ctx    context.Context
	Cancel context.CancelFunc
	DB     *gorm.DB
	Redis  *redis.Client
	Mongo  *mongo.Client
}

func InitAppState(ctx context.Context, cancel context.CancelFunc) (*AppState, error) {
	dbUrl := config.Conf.DATABASE.Postgres.DSN
	rAddr := config.Conf.DATABASE.Redis.Addr
	rPass := config.Conf.DATABASE.Redis.Password
	rDB := config.Conf.DATABASE.Redis.DB
	mongoUrl := config.Conf.DATABASE.Mongo.Url

	db, _, err := InitPostgres(dbUrl)
	if err != nil {
		return nil, err
	}

	appState := &AppState{
		Ctx:    ctx,
		Cancel: cancel,
		DB:     db,
	}

	if rAddr != "" {
		rdb, err := InitRedis(rAddr, rPass, rDB)
		if err != nil {
			appState.Close()
			return nil, err
		}
		appState.Redis = rdb
	} else {
		log.Warn().Msg("redis address is empty, room cache and background jobs are disabled")
	}

	if mongoUrl != "" {
		mongoClient, err := InitMongo(ctx, mongoUrl)
		if err != nil {
			appState.Close()
			return nil, err
		}
		appState.Mongo = mongoClient
	} else {
		log.Warn().Msg("mongo url is empty, dead jobs will only be logged")
	}

	return appState, nil
}

func (a *AppState) Close() {
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			log.Info().Msg("Closing PostgreSQL database connection...")
			sqlDB.Close()
		}
	}

	if a.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		log.Info().Msg("Closing MongoDB client...")
		defer cancel()
		if err := a.Mongo.Disconnect(ctx); err != nil {
			log.Error().Err(err).Msg("failed to disconnect MongoDB client")
		}
	}

	if a.Redis != nil {
		log.Info().Msg("Closing Redis client...")
		if err := a.Redis.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close Redis client")
		}
	}
}
