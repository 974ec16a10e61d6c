package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/shelflineapp/shelfline-server/internal/logger"
	"github.com/shelflineapp/shelfline-server/internal/service"
)

// SessionCleanupJob runs periodic expired-session cleanup.
type SessionCleanupJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *SessionCleanupJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideSessionCleanupJob provides the periodic session cleanup job.
func ProvideSessionCleanupJob(i do.Injector) (*SessionCleanupJob, error) {
	sessionService := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		// Initial cleanup on startup.
		if count, err := sessionService.DeleteExpiredSessions(ctx); err != nil {
			log.Warn("Initial session cleanup failed", "error", err)
		} else if count > 0 {
			log.Info("Initial session cleanup completed", "deleted", count)
		}

		for {
			select {
			case <-ticker.C:
				if count, err := sessionService.DeleteExpiredSessions(ctx); err != nil {
					log.Warn("Session cleanup failed", "error", err)
				} else if count > 0 {
					log.Info("Session cleanup completed", "deleted", count)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Session cleanup job started")

	return &SessionCleanupJob{cancel: cancel}, nil
}

// CachePruneJob prunes stale BGG metadata cache rows daily.
type CachePruneJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *CachePruneJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideCachePruneJob provides the periodic metadata cache pruning job.
func ProvideCachePruneJob(i do.Injector) (*CachePruneJob, error) {
	metadataService := do.MustInvoke[*service.MetadataService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if count, err := metadataService.PruneCache(ctx); err != nil {
					log.Warn("Metadata cache prune failed", "error", err)
				} else if count > 0 {
					log.Info("Metadata cache pruned", "deleted", count)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return &CachePruneJob{cancel: cancel}, nil
}
