package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartStaleJobExpirer marks jobs that never reached a terminal status
// within the retention window as EXPIRED, on an interval.
func StartStaleJobExpirer(
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
				cutoff := time.Now().Add(-retention)
				res, err := db.ExecContext(ctx, `
                    UPDATE verification_jobs
                       SET status = 'EXPIRED'
                     WHERE status IN ('PENDING', 'PROCESSING')
                       AND created_at < $1
                `, cutoff)
				if err != nil {
					log.Error("failed to expire stale verification jobs", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("expired stale verification jobs", zap.Int64("expired", rows))
				}
			}
		}
	}()
}
