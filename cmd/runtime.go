package cmd

import (
	"context"
	"database/sql"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-billing-ledger/app/ledger"
	"github.com/vibast-solutions/ms-go-billing-ledger/app/scheduler"
	"github.com/vibast-solutions/ms-go-billing-ledger/app/settlement"
	"github.com/vibast-solutions/ms-go-billing-ledger/app/storage"
	"github.com/vibast-solutions/ms-go-billing-ledger/config"

	_ "github.com/go-sql-driver/mysql"
)

// ledgerStack bundles the wired service components shared by the serve and
// dispatch commands.
type ledgerStack struct {
	store      storage.Backend
	queue      *scheduler.Queue
	settler    *settlement.Native
	ledger     *ledger.Ledger
	dispatcher *scheduler.Dispatcher
	events     *ledger.Recorder
	cleanup    func()
}

func mustBuildLedgerStack() (*config.Config, *ledgerStack) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	store, cleanup := mustOpenStorage(cfg)

	queue := scheduler.NewQueue()
	settler := settlement.NewNative()
	recorder := ledger.NewRecorder(4096)
	events := ledger.MultiSink{ledger.NewLogSink(), recorder}
	l := ledger.New(store, queue, settler, ledger.SystemClock{}, events)
	dispatcher := scheduler.NewDispatcher(queue, store, l, cfg.Dispatcher.PollInterval, cfg.Dispatcher.BatchSize)

	return cfg, &ledgerStack{
		store:      store,
		queue:      queue,
		settler:    settler,
		ledger:     l,
		dispatcher: dispatcher,
		events:     recorder,
		cleanup:    cleanup,
	}
}

func mustOpenStorage(cfg *config.Config) (storage.Backend, func()) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		logrus.Warn("Using in-memory storage; state is lost on restart")
		return storage.NewMemory(), func() {}

	case config.StorageDriverRedis:
		backend, err := storage.NewRedis(cfg.Storage.RedisURL)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to connect to redis")
		}
		return backend, func() {
			if err := backend.Close(); err != nil {
				logrus.WithError(err).Warn("Failed to close redis client")
			}
		}

	case config.StorageDriverMySQL:
		db, err := sql.Open("mysql", cfg.Storage.MySQLDSN)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to connect to database")
		}
		db.SetMaxOpenConns(cfg.Storage.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Storage.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Storage.ConnMaxLifetime)

		if err := db.Ping(); err != nil {
			_ = db.Close()
			logrus.WithError(err).Fatal("Failed to ping database")
		}

		backend := storage.NewMySQL(db)
		if err := backend.EnsureSchema(context.Background()); err != nil {
			_ = db.Close()
			logrus.WithError(err).Fatal("Failed to ensure storage schema")
		}
		return backend, func() {
			if err := db.Close(); err != nil {
				logrus.WithError(err).Warn("Failed to close database")
			}
		}

	default:
		logrus.WithField("driver", cfg.Storage.Driver).Fatal("Unknown storage driver")
		return nil, nil
	}
}
