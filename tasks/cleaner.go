package tasks

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"yatube/cache"
	"yatube/storage"
)

// CleanExpiredData reclaims expired sessions and expired cached pages once
// an hour. Cache staleness is unaffected: entries past their window are
// already invisible to readers.
func CleanExpiredData(manager *storage.Manager, pages cache.Pages) {
	for {
		select {
		case <-time.After(1 * time.Hour):
			if err := manager.DeleteExpiredSessions(context.Background()); err != nil {
				log.Errorf("Error deleting expired sessions: %v", err)
			}
			pages.DeleteExpired()
		}
	}
}
