package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bondfire/core/internal/models"
	"github.com/bondfire/core/internal/modules/commerce/purchase"
	"github.com/bondfire/core/internal/modules/content/card"
	"github.com/bondfire/core/internal/modules/content/deck"
	"github.com/bondfire/core/internal/modules/game/session"
	appconfigs "github.com/bondfire/core/internal/modules/system/configs"
	pkgcron "github.com/bondfire/core/internal/pkg/cron"
	"github.com/bondfire/core/internal/pkg/taskqueue"
)

const taskRetention = 7 * 24 * time.Hour

// registerCronJobs registers all scheduled background jobs.
func (a *App) registerCronJobs() {
	db := a.db
	cronLogger := a.logger.Named("cron")

	cfgSvc := appconfigs.NewService(db)
	sessionSvc := session.NewService(db, card.NewService(db), purchase.NewService(db, cfgSvc), cfgSvc)
	deckSvc := deck.NewService(db)
	taskSvc := taskqueue.NewService(a.rc)

	a.sched.Register(pkgcron.Job{
		Name:        "expire_game_sessions",
		Description: "finish active sessions idle past the configured TTL",
		Interval:    time.Hour,
		Fn: func(ctx context.Context) error {
			n, err := sessionSvc.ExpireStale()
			if err != nil {
				cronLogger.Warn("session expiry failed", zap.Error(err))
				return err
			}
			if n > 0 {
				cronLogger.Info(fmt.Sprintf("expired %d stale sessions", n))
			}
			return nil
		},
	})

	a.sched.Register(pkgcron.Job{
		Name:        "refresh_deck_counts",
		Description: "recompute card counters on every deck",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			var ids []string
			if err := db.Model(&models.DeckModel{}).Pluck("id", &ids).Error; err != nil {
				return err
			}
			for _, id := range ids {
				if err := deckSvc.RefreshCardCounts(id); err != nil {
					cronLogger.Warn("deck count refresh failed", zap.String("deck_id", id), zap.Error(err))
				}
			}
			return nil
		},
	})

	a.sched.Register(pkgcron.Job{
		Name:        "cleanup_task_queue",
		Description: "remove finished background tasks older than the retention window",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			cutoff := time.Now().Add(-taskRetention).UnixMilli()
			if err := taskSvc.DeleteCompleted(ctx, cutoff); err != nil {
				cronLogger.Warn("task cleanup failed", zap.Error(err))
				return err
			}
			return nil
		},
	})
}
