package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/kp9community/portal/internal/api/handler"
	"github.com/kp9community/portal/internal/core/domain"
	"github.com/kp9community/portal/internal/core/ports"
	"github.com/kp9community/portal/internal/infrastructure/db/jsonfile"
	"github.com/kp9community/portal/internal/infrastructure/db/memory"
	mongodb "github.com/kp9community/portal/internal/infrastructure/db/mongo"
	redisdb "github.com/kp9community/portal/internal/infrastructure/db/redis"
	"github.com/kp9community/portal/internal/infrastructure/queue"
	"github.com/kp9community/portal/internal/pkg/config"
)

const (
	usersResource         = "users"
	announcementsResource = "announcements"
	logsResource          = "logs"
)

// stores bundles the three record stores plus whatever the chosen backend
// needs for readiness and shutdown.
type stores struct {
	users         ports.RecordStore[domain.User]
	announcements ports.RecordStore[domain.Announcement]
	logs          ports.RecordStore[domain.LogEntry]

	pingers []handler.Pinger
	closers []func(context.Context) error
}

func (s *stores) close(ctx context.Context) {
	for _, c := range s.closers {
		_ = c(ctx)
	}
}

// openStores builds the record stores for cfg.Storage.Driver. ctx bounds the
// lifetime of the per-resource writer workers.
func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	log = log.With().Str("driver", cfg.Storage.Driver).Logger()

	switch cfg.Storage.Driver {
	case config.DriverFile:
		if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		w := queue.NewWriter(cfg.Storage.Writers, log)
		w.Start(ctx)
		return &stores{
			users:         jsonfile.New[domain.User](cfg.Storage.DataDir, usersResource, w, log),
			announcements: jsonfile.New[domain.Announcement](cfg.Storage.DataDir, announcementsResource, w, log),
			logs:          jsonfile.New[domain.LogEntry](cfg.Storage.DataDir, logsResource, w, log),
		}, nil

	case config.DriverMemory:
		log.Warn().Msg("memory storage selected; data is lost on exit")
		return &stores{
			users:         memory.New[domain.User](),
			announcements: memory.New[domain.Announcement](),
			logs:          memory.New[domain.LogEntry](),
		}, nil

	case config.DriverRedis:
		client, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return nil, err
		}
		p := cfg.Redis.Prefix
		w := queue.NewWriter(cfg.Storage.Writers, log)
		w.Start(ctx)
		return &stores{
			users:         redisdb.NewRecordStore[domain.User](client, p, usersResource, w, log),
			announcements: redisdb.NewRecordStore[domain.Announcement](client, p, announcementsResource, w, log),
			logs:          redisdb.NewRecordStore[domain.LogEntry](client, p, logsResource, w, log),
			pingers:       []handler.Pinger{redisdb.NewPinger(client)},
			closers:       []func(context.Context) error{func(context.Context) error { return client.Close() }},
		}, nil

	case config.DriverMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		w := queue.NewWriter(cfg.Storage.Writers, log)
		w.Start(ctx)
		return &stores{
			users:         mongodb.NewRecordStore[domain.User](db, usersResource, w, log),
			announcements: mongodb.NewRecordStore[domain.Announcement](db, announcementsResource, w, log),
			logs:          mongodb.NewRecordStore[domain.LogEntry](db, logsResource, w, log),
			pingers:       []handler.Pinger{mongodb.NewPinger(client)},
			closers:       []func(context.Context) error{client.Disconnect},
		}, nil
	}

	return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
}
