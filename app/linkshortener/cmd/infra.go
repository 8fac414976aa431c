package cmd

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	loggerKit "github.com/superj80820/link-shortener/kit/logger"
	ormKit "github.com/superj80820/link-shortener/kit/orm"
	redisKit "github.com/superj80820/link-shortener/kit/redis"
	mysqlContainer "github.com/superj80820/link-shortener/kit/testing/mysql/container"
	postgresContainer "github.com/superj80820/link-shortener/kit/testing/postgres/container"
	redisContainer "github.com/superj80820/link-shortener/kit/testing/redis/container"
	apiKeyORMRepo "github.com/superj80820/link-shortener/link/repository/apikey/orm"
	linkORMRepo "github.com/superj80820/link-shortener/link/repository/link/orm"
)

// infra holds the connections shared by every command. Containers started
// for an empty uri are terminated on close.
type infra struct {
	logger *loggerKit.Logger
	db     *ormKit.DB
	cache  *redisKit.Cache

	closers []func()
}

func setupInfra(ctx context.Context, cfg config, withCache bool) (*infra, error) {
	logger, err := loggerKit.NewLogger(cfg.logPath, cfg.logLevel(), cfg.loggerOptions()...)
	if err != nil {
		return nil, errors.Wrap(err, "create logger failed")
	}
	i := &infra{logger: logger}

	db, err := i.setupDB(ctx, cfg)
	if err != nil {
		i.close()
		return nil, errors.Wrap(err, "setup db failed")
	}
	i.db = db
	i.closers = append(i.closers, func() { db.Close() })

	if withCache {
		cache, err := i.setupCache(ctx, cfg)
		if err != nil {
			i.close()
			return nil, errors.Wrap(err, "setup cache failed")
		}
		i.cache = cache
		i.closers = append(i.closers, func() { cache.Close() })
	}

	return i, nil
}

func (i *infra) setupDB(ctx context.Context, cfg config) (*ormKit.DB, error) {
	autoMigrate := cfg.autoMigrate

	var useDB ormKit.Option
	switch cfg.dbDriver {
	case "mysql":
		mysqlURI := cfg.mysqlURI
		if mysqlURI == "" {
			container, err := mysqlContainer.CreateMySQL(ctx)
			if err != nil {
				return nil, errors.Wrap(err, "create mysql container failed")
			}
			i.closers = append(i.closers, func() { container.Terminate(context.Background()) })
			mysqlURI = container.GetURI()
			autoMigrate = true

			i.logger.Info(fmt.Sprintf("testcontainers mysql uri: %s", mysqlURI))
		}
		useDB = ormKit.UseMySQL(mysqlURI)
	case "postgres":
		postgresURI := cfg.postgresURI
		if postgresURI == "" {
			container, err := postgresContainer.CreatePostgres(ctx, postgresContainer.SetZone(cfg.dbTimeZone))
			if err != nil {
				return nil, errors.Wrap(err, "create postgres container failed")
			}
			i.closers = append(i.closers, func() { container.Terminate(context.Background()) })
			postgresURI = container.GetURI()
			autoMigrate = true

			i.logger.Info(fmt.Sprintf("testcontainers postgres uri: %s", postgresURI))
		}
		useDB = ormKit.UsePostgres(postgresURI)
	case "sqlite":
		useDB = ormKit.UseSQLite(cfg.sqlitePath)
		autoMigrate = true
	default:
		return nil, errors.New("unknown db driver: " + cfg.dbDriver)
	}

	db, err := ormKit.CreateDB(useDB, ormKit.SetPool(cfg.dbMaxOpenConns, cfg.dbMaxIdleConns, cfg.dbConnMaxLifetime))
	if err != nil {
		return nil, errors.Wrap(err, "create db failed")
	}

	if autoMigrate {
		if err := linkORMRepo.Migrate(db); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "migrate link failed")
		}
		if err := apiKeyORMRepo.Migrate(db); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "migrate api key failed")
		}
	}

	return db, nil
}

func (i *infra) setupCache(ctx context.Context, cfg config) (*redisKit.Cache, error) {
	redisURI := cfg.redisURI
	if redisURI == "" {
		container, err := redisContainer.CreateRedis(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "create redis container failed")
		}
		i.closers = append(i.closers, func() { container.Terminate(context.Background()) })
		redisURI = container.GetURI()

		i.logger.Info(fmt.Sprintf("testcontainers redis uri: %s", redisURI))
	}

	cache, err := redisKit.CreateCache(redisURI, cfg.redisPassword, cfg.redisDB)
	if err != nil {
		return nil, errors.Wrap(err, "create cache failed")
	}
	return cache, nil
}

// close releases resources in reverse order of creation.
func (i *infra) close() {
	for idx := len(i.closers) - 1; idx >= 0; idx-- {
		i.closers[idx]()
	}
	i.logger.Sync()
}
