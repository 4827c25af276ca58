package main

import (
	"context"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"social/auth"
	"social/cache"
	"social/config"
	"social/monitoring"
	"social/realtime"
	"social/server"
	"social/storage/db"
	"social/storage/db/queries"
	"social/tasks"
	"social/utils"
)

func runBackgroundTasks(q *queries.Queries, retention time.Duration) {
	// Old notifications cleanup
	go utils.Recoverer(math.MaxInt, 1, func() {
		tasks.NewCleaner(q, retention).Run()
	})
}

func main() {
	log.SetLevel(log.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	connectionPool, err := db.Connect(ctx, cfg.DSN())
	if err != nil {
		panic(err)
	}
	q := queries.New(connectionPool)

	redisOptions := redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: "", // no password set
		DB:       0,  // use default DB
	}
	redisConnection := redis.NewClient(&redisOptions)
	feedsCache := cache.NewFeedsCache(
		redisConnection,
		time.Duration(cfg.FeedCacheTTLMinutes)*time.Minute,
	)
	presence := cache.NewPresenceRegistry(
		redisConnection,
		time.Duration(cfg.PresenceTTLSeconds)*time.Second,
	)

	monitoring.Register()

	hub := realtime.NewHub(presence)
	tokens := auth.NewTokenIssuer(
		cfg.JWTSecret,
		time.Duration(cfg.TokenExpiryMinutes)*time.Minute,
	)

	s := server.NewServer(cfg.Port, q, feedsCache, presence, hub, tokens)

	// Run background tasks
	runBackgroundTasks(q, time.Duration(cfg.NotificationRetentionDays)*24*time.Hour)

	s.Run()
}
