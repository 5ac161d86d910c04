package main

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/cabinet-comptable/backoffice/internal/core/authz"
	mongostore "github.com/cabinet-comptable/backoffice/internal/infrastructure/db/mongo"
	redisstore "github.com/cabinet-comptable/backoffice/internal/infrastructure/db/redis"
	"github.com/cabinet-comptable/backoffice/internal/pkg/config"
)

// stores holds the connections shared by every command.
type stores struct {
	registry *authz.Registry
	mongo    *mongodriver.Client
	db       *mongodriver.Database
	// redis is nil when REDIS_ADDR is empty.
	redis *goredis.Client

	closers []func() error
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	table, err := authz.TableByName(cfg.RoleVariant)
	if err != nil {
		return nil, err
	}
	registry, err := authz.NewRegistry(table)
	if err != nil {
		return nil, fmt.Errorf("role variant %s: %w", cfg.RoleVariant, err)
	}

	client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}
	s := &stores{registry: registry, mongo: client, db: db}
	s.closers = append(s.closers, func() error { return client.Disconnect(context.Background()) })
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s.redis = rdb
		s.closers = append(s.closers, rdb.Close)
		log.Info().Msg("connected to redis")
	}
	return s, nil
}

// Close releases connections in reverse order of opening.
func (s *stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	s.closers = nil
	return errors.Join(errs...)
}
