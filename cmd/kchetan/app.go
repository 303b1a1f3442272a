package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/krishichetan/kchetan/internal/client/api"
	"github.com/krishichetan/kchetan/internal/client/storage"
	"github.com/krishichetan/kchetan/internal/config"
	"github.com/krishichetan/kchetan/internal/controller"
	"github.com/krishichetan/kchetan/internal/db"
	"github.com/krishichetan/kchetan/internal/repository"
	"github.com/krishichetan/kchetan/internal/screen"
)

// cleanInterval is how often the sql store purges expired sessions.
const cleanInterval = time.Hour

// app is the wired client.
type app struct {
	ctl    *controller.Controller
	screen *screen.Store
	store  controller.SessionStore
	db     *sql.DB
}

// newApp builds the API client, the session store and the controller.
// The session cleaner runs until ctx is done.
func newApp(ctx context.Context, opts *config.Options, log *zap.Logger) (*app, error) {
	httpClient, err := api.NewHTTPClient(opts.CAFile, time.Duration(opts.Timeout))
	if err != nil {
		return nil, err
	}

	a := &app{screen: screen.New()}
	switch opts.SessionStore {
	case config.StoreSQL:
		conn, err := db.Open(ctx, opts.SessionDSN)
		if err != nil {
			return nil, fmt.Errorf("cannot init session database: %w", err)
		}
		a.db = conn
		a.store = repository.NewSQLSessionRepository(conn)
		db.StartSessionCleaner(ctx, conn, cleanInterval, time.Duration(opts.SessionRetention), log)
	default:
		a.store = storage.NewLocalStorage(opts.SessionFile)
	}

	client := api.New(opts.BackendURL, httpClient)
	log.Debug("backend client ready", zap.String("url", client.BaseURL()))

	a.ctl = controller.New(
		client,
		a.store,
		a.screen,
		log,
		controller.WithLanguage(opts.Language),
		controller.WithLocation(opts.Location),
	)
	return a, nil
}

// Close stops the controller and releases the database.
func (a *app) Close() {
	a.ctl.Close()
	if a.db != nil {
		_ = a.db.Close()
	}
}
