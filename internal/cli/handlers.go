package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/BartekS5/posts-etl/internal/etl"
	"github.com/BartekS5/posts-etl/internal/scheduler"
	"github.com/BartekS5/posts-etl/internal/store"
	"github.com/BartekS5/posts-etl/pkg/database"
	"github.com/BartekS5/posts-etl/pkg/logger"
	"github.com/pkg/errors"
)

// cleanup releases connections opened by the builders below, last first.
type cleanup []func()

func (c cleanup) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

// newRunner builds the pipeline with every enabled sink and wraps it in a
// Runner for the posts DAG. The returned cleanup must be called even on error.
func (a *app) newRunner(ctx context.Context) (*scheduler.Runner, cleanup, error) {
	var done cleanup

	loader, err := a.newLoader(ctx, &done)
	if err != nil {
		return nil, done, err
	}

	client := &http.Client{Timeout: a.cfg.HTTP.Timeout}
	pipeline := etl.NewPipeline(etl.NewHTTPExtractor(client, a.sourceURL), loader)

	var opts []scheduler.Option
	if a.cfg.History.Enabled {
		hist, err := a.openHistory(ctx, &done)
		if err != nil {
			return nil, done, err
		}
		opts = append(opts, scheduler.WithHistory(hist))
	}
	if a.cfg.Metrics.Enabled {
		opts = append(opts, scheduler.WithMetrics(scheduler.NewMetrics(a.registry)))
	}

	runner, err := scheduler.NewRunner(scheduler.PostsDAG(), pipeline, opts...)
	return runner, done, err
}

func (a *app) newLoader(ctx context.Context, done *cleanup) (etl.Loader, error) {
	loaders := etl.MultiLoader{etl.NewCSVLoader(etl.DefaultOutputPath)}

	if a.cfg.Mongo.Enabled {
		client, err := database.ConnectMongo(ctx, a.cfg.Mongo.URI)
		if err != nil {
			return nil, err
		}
		*done = append(*done, func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				logger.Warnf("Error disconnecting from MongoDB: %v", err)
			}
		})
		coll := client.Database(a.cfg.Mongo.Database).Collection(a.cfg.Mongo.Collection)
		loaders = append(loaders, etl.NewMongoLoader(coll))
		logger.Infof("Mirroring posts to MongoDB collection %s.%s", a.cfg.Mongo.Database, a.cfg.Mongo.Collection)
	}

	if a.cfg.SQL.Enabled {
		db, err := database.ConnectSQL(ctx, a.cfg.SQL.ConnString)
		if err != nil {
			return nil, err
		}
		*done = append(*done, func() { db.Close() })
		sqlLoader := etl.NewSQLLoader(db, a.cfg.SQL.Table)
		if err := sqlLoader.EnsureTable(ctx); err != nil {
			return nil, err
		}
		loaders = append(loaders, sqlLoader)
		logger.Infof("Mirroring posts to SQL Server table %s", a.cfg.SQL.Table)
	}

	if len(loaders) == 1 {
		return loaders[0], nil
	}
	return loaders, nil
}

func (a *app) openHistory(ctx context.Context, done *cleanup) (*store.History, error) {
	if !a.cfg.History.Enabled {
		return nil, errors.New("run history is disabled (history.enabled=false)")
	}
	db, err := database.OpenSQLite(a.cfg.History.Path)
	if err != nil {
		return nil, err
	}
	*done = append(*done, func() { db.Close() })

	hist := store.NewHistory(db)
	if err := hist.Migrate(ctx); err != nil {
		return nil, err
	}
	return hist, nil
}
