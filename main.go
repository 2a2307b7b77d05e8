package main

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"yatube/auth"
	"yatube/cache"
	"yatube/server"
	"yatube/storage"
	"yatube/storage/models"
	"yatube/tasks"
	"yatube/utils"
)

// The index view is cached for this window; a deleted post can stay visible
// on the index until it elapses.
const pageCacheSeconds = 20

const sessionMaxAge = 14 * 24 * time.Hour

func newPageCache() cache.Pages {
	redisHost := os.Getenv("REDIS_HOST")
	if redisHost == "" {
		return cache.NewMemoryPages(pageCacheSeconds * time.Second)
	}

	redisPort := os.Getenv("REDIS_PORT")
	return cache.NewRedisPages(
		&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", redisHost, redisPort),
			Password: "", // no password set
			DB:       0,  // use default DB
		},
		pageCacheSeconds*time.Second,
	)
}

func main() {
	godotenv.Load()
	log.SetLevel(log.InfoLevel)

	db, err := gorm.Open(
		postgres.Open(
			fmt.Sprintf(
				"user=%s password=%s dbname=%s sslmode=disable host=%s port=%s",
				os.Getenv("DB_USERNAME"),
				os.Getenv("DB_PASSWORD"),
				"yatube",
				os.Getenv("DB_HOST"),
				os.Getenv("DB_PORT"),
			),
		),
		&gorm.Config{},
	)
	if err != nil {
		panic(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := models.Migrate(db); err != nil {
		panic(err)
	}

	manager := storage.NewManager(db)
	sessions := auth.NewManager(manager, sessionMaxAge)
	pages := newPageCache()

	s := server.NewServer(manager, sessions, pages)

	// Expired data cleanup
	go utils.Recoverer(math.MaxInt, 1, func() {
		tasks.CleanExpiredData(manager, pages)
	})

	s.Run()
}
