package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartSessionCleaner deletes sessions older than retention every interval
// until ctx is done.
func StartSessionCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := PurgeSessions(ctx, db, time.Now().Add(-retention), log); err != nil {
					continue
				}
			}
		}
	}()
}

// PurgeSessions deletes sessions created before cutoff and returns how
// many were removed.
func PurgeSessions(ctx context.Context, db *sql.DB, cutoff time.Time, log *zap.Logger) (int64, error) {
	res, err := db.ExecContext(ctx, `
        DELETE FROM sessions
         WHERE created_at < $1
    `, cutoff.Unix())
	if err != nil {
		log.Error("failed to clean expired sessions", zap.Error(err))
		return 0, err
	}
	rows, _ := res.RowsAffected()
	if rows > 0 {
		log.Info("cleaned expired sessions", zap.Int64("removed", rows))
	}
	return rows, nil
}
