package tasks

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"social/storage/db/queries"
)

// Cleaner periodically drops read notifications past their retention
// window. Runs on a cron schedule; blocking.
type Cleaner struct {
	queries   *queries.Queries
	retention time.Duration
}

func NewCleaner(q *queries.Queries, retention time.Duration) *Cleaner {
	return &Cleaner{
		queries:   q,
		retention: retention,
	}
}

func (c *Cleaner) Run() {
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@hourly", c.clean); err != nil {
		log.Errorf("Error scheduling cleaner: %v", err)
		return
	}
	scheduler.Run()
}

func (c *Cleaner) clean() {
	deleted, err := c.queries.DeleteOldNotifications(
		context.Background(),
		time.Now().Add(-c.retention),
	)
	if err != nil {
		log.Errorf("Error cleaning old notifications: %v", err)
		return
	}
	if deleted > 0 {
		log.Infof("Cleaned %d old notifications", deleted)
	}
}
