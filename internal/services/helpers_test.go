package services

import (
	"context"
	"testing"
	"time"

	"postboard/internal/config"
	"postboard/internal/db"
	"postboard/internal/models"
	"postboard/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// testEnv 一组共享数据库、缓存与时钟的服务
type testEnv struct {
	db           *gorm.DB
	clock        *fakeClock
	cache        *utils.Cache
	auth         *AuthService
	posts        *PostService
	interactions *InteractionService
	ranking      *RankingService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := db.Open(config.DriverSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(conn))
	require.NoError(t, db.SeedTopics(conn))
	return conn
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn := newTestDB(t)
	clock := &fakeClock{t: baseTime}
	cache, err := utils.NewCache(100, time.Hour)
	require.NoError(t, err)

	env := &testEnv{
		db:           conn,
		clock:        clock,
		cache:        cache,
		auth:         NewAuthService(conn, utils.NewTokenIssuer([]byte("test-secret"), time.Hour)),
		posts:        NewPostService(conn, cache),
		interactions: NewInteractionService(conn, cache),
		ranking:      NewRankingService(conn, cache),
	}
	env.posts.now = clock.Now
	env.interactions.now = clock.Now
	env.ranking.now = clock.Now
	return env
}

func (e *testEnv) createPost(t *testing.T, owner string, expiresIn time.Duration, topics ...string) *models.Post {
	t.Helper()
	if len(topics) == 0 {
		topics = []string{models.TopicTech}
	}
	post, err := e.posts.Create(context.Background(), owner, PostInput{
		Title:          "Post by " + owner,
		Topics:         topics,
		Body:           "Some **body** text",
		ExpirationTime: e.clock.Now().Add(expiresIn).Format(time.RFC3339),
	})
	require.NoError(t, err)
	return post
}
