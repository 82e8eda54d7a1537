package bootstrap

import (
	"context"
	"fmt"

	"github.com/gin-contrib/sessions"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/spf13/afero"
	"github.com/stuproj/projectshelf/internal/config"
	"github.com/stuproj/projectshelf/internal/infra/blob"
	"github.com/stuproj/projectshelf/internal/infra/cache"
	"github.com/stuproj/projectshelf/internal/infra/db"
	"github.com/stuproj/projectshelf/internal/infra/flash"
	"github.com/stuproj/projectshelf/internal/infra/logger"
	"github.com/stuproj/projectshelf/internal/infra/queue"
	"github.com/stuproj/projectshelf/internal/middleware"
	"github.com/stuproj/projectshelf/internal/modules/handler"
	"github.com/stuproj/projectshelf/internal/modules/repo"
	"github.com/stuproj/projectshelf/internal/modules/service"
	"github.com/stuproj/projectshelf/internal/web"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.Log.Level)
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := db.Migrate(d); err != nil {
				return nil, fmt.Errorf("auto migrate: %w", err)
			}
		}
		return d, nil
	})

	// Redis, only resolved when flash messages are kept in redis
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		rdb := cache.New(cfg)
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return rdb, nil
	})

	// RabbitMQ history events; disabled without a broker url
	do.Provide(inj, func(i *do.Injector) (service.EventPublisher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.RabbitMQ.URL == "" {
			return nil, nil
		}
		conn, err := amqp.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			return nil, fmt.Errorf("dial rabbitmq: %w", err)
		}
		pub, err := queue.NewPublisher(conn, cfg.RabbitMQ.Exchange, do.MustInvoke[*zap.Logger](i))
		if err != nil {
			return nil, err
		}
		return pub, nil
	})

	// upload store
	do.Provide(inj, func(i *do.Injector) (blob.Store, error) {
		cfg := do.MustInvoke[*config.Config](i)
		switch cfg.Upload.Backend {
		case "", "local":
			return blob.NewLocal(afero.NewOsFs(), cfg.Upload.Dir)
		case "s3":
			return blob.NewS3(context.Background(), cfg)
		default:
			return nil, fmt.Errorf("unsupported upload backend %q", cfg.Upload.Backend)
		}
	})

	// flash messages
	do.Provide(inj, func(i *do.Injector) (sessions.Store, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.Session.Store == "redis" {
			return nil, nil
		}
		return flash.NewCookieSessionStore(cfg.Session.Secret), nil
	})
	do.Provide(inj, func(i *do.Injector) (flash.Store, error) {
		cfg := do.MustInvoke[*config.Config](i)
		switch cfg.Session.Store {
		case "", "cookie":
			return flash.NewCookieStore(), nil
		case "redis":
			return flash.NewRedisStore(do.MustInvoke[*redis.Client](i)), nil
		default:
			return nil, fmt.Errorf("unsupported session store %q", cfg.Session.Store)
		}
	})

	// metrics
	do.Provide(inj, func(i *do.Injector) (*middleware.Metrics, error) {
		if !do.MustInvoke[*config.Config](i).Metrics.Enabled {
			return nil, nil
		}
		return middleware.NewMetrics(), nil
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.Transactor, error) {
		return repo.NewTransactor(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.ProjectRepo, error) {
		return repo.NewProjectRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.HistoryRepo, error) {
		return repo.NewHistoryRepo(do.MustInvoke[*gorm.DB](i)), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (service.FileIntake, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return service.NewFileIntake(
			do.MustInvoke[blob.Store](i),
			service.IntakeOptions{
				AllowedExtensions: cfg.Upload.AllowedExtensions,
				EnforceExtensions: cfg.Upload.EnforceExtensions,
			},
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.HistoryService, error) {
		return service.NewHistoryService(
			do.MustInvoke[repo.HistoryRepo](i),
			do.MustInvoke[service.EventPublisher](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ProjectService, error) {
		return service.NewProjectService(
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[repo.Transactor](i),
			do.MustInvoke[service.HistoryService](i),
			do.MustInvoke[service.FileIntake](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ExportService, error) {
		return service.NewExportService(do.MustInvoke[repo.ProjectRepo](i)), nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.PageHandler, error) {
		return handler.NewPageHandler(
			do.MustInvoke[service.ProjectService](i),
			do.MustInvoke[service.HistoryService](i),
			do.MustInvoke[service.ExportService](i),
			do.MustInvoke[flash.Store](i),
			do.MustInvoke[*config.Config](i).Upload.MaxBytes,
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.AssetHandler, error) {
		return handler.NewAssetHandler(
			web.Static(),
			do.MustInvoke[blob.Store](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.APIHandler, error) {
		return handler.NewAPIHandler(
			do.MustInvoke[service.ProjectService](i),
			do.MustInvoke[service.HistoryService](i),
		), nil
	})

	return inj
}
