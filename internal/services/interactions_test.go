package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"postboard/internal/apperr"
	"postboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReact_LikeAndDislike(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	post := env.createPost(t, "alice", time.Hour)

	liked, err := env.interactions.React(ctx, post.ID, "bob", models.InteractionLike)
	require.NoError(t, err)
	assert.Equal(t, 1, liked.LikeCount)
	assert.Equal(t, 0, liked.DislikeCount)

	disliked, err := env.interactions.React(ctx, post.ID, "carol", models.InteractionDislike)
	require.NoError(t, err)
	assert.Equal(t, 1, disliked.LikeCount)
	assert.Equal(t, 1, disliked.DislikeCount)

	var ledger int64
	require.NoError(t, env.db.Model(&models.Interaction{}).Where("post_id = ?", post.ID).Count(&ledger).Error)
	assert.Equal(t, int64(2), ledger)
}

func TestReact_DuplicateIsConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	post := env.createPost(t, "alice", time.Hour)

	_, err := env.interactions.React(ctx, post.ID, "bob", models.InteractionLike)
	require.NoError(t, err)

	_, err = env.interactions.React(ctx, post.ID, "bob", models.InteractionLike)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	got, err := env.posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikeCount)

	// 点赞与点踩分别去重
	_, err = env.interactions.React(ctx, post.ID, "bob", models.InteractionDislike)
	require.NoError(t, err)
	_, err = env.interactions.React(ctx, post.ID, "bob", models.InteractionDislike)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestReact_ConcurrentDuplicates(t *testing.T) {
	env := newTestEnv(t)
	post := env.createPost(t, "alice", time.Hour)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.interactions.React(context.Background(), post.ID, "bob", models.InteractionLike)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case apperr.Is(err, apperr.KindConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)

	got, err := env.posts.Get(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikeCount)
}

func TestReact_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	post := env.createPost(t, "alice", time.Hour)

	t.Run("owner cannot react", func(t *testing.T) {
		_, err := env.interactions.React(ctx, post.ID, "alice", models.InteractionLike)
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
		_, err = env.interactions.React(ctx, post.ID, "alice", models.InteractionDislike)
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})

	t.Run("unknown post", func(t *testing.T) {
		_, err := env.interactions.React(ctx, 999, "bob", models.InteractionLike)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})

	t.Run("comment is not a reaction", func(t *testing.T) {
		_, err := env.interactions.React(ctx, post.ID, "bob", models.InteractionComment)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("expired post", func(t *testing.T) {
		expired := env.createPost(t, "alice", -time.Minute)
		_, err := env.interactions.React(ctx, expired.ID, "bob", models.InteractionLike)
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
		_, err = env.interactions.Comment(ctx, expired.ID, "bob", "too late")
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})

	got, err := env.posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, got.LikeCount)
	assert.Zero(t, got.DislikeCount)
}

func TestReact_PersistsExpiryWhenRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	post := env.createPost(t, "alice", time.Minute)

	env.clock.Advance(2 * time.Minute)

	_, err := env.interactions.React(ctx, post.ID, "bob", models.InteractionLike)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	var stored models.Post
	require.NoError(t, env.db.First(&stored, post.ID).Error)
	assert.Equal(t, models.StatusExpired, stored.Status)
	assert.Zero(t, stored.LikeCount)

	var ledger int64
	require.NoError(t, env.db.Model(&models.Interaction{}).Where("post_id = ?", post.ID).Count(&ledger).Error)
	assert.Zero(t, ledger)
}

func TestComment_PersistsExpiryWhenRejected(t *testing.T) {
	env := newTestEnv(t)
	post := env.createPost(t, "alice", time.Minute)

	env.clock.Advance(time.Minute)

	_, err := env.interactions.Comment(context.Background(), post.ID, "bob", "too late")
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	var stored models.Post
	require.NoError(t, env.db.First(&stored, post.ID).Error)
	assert.Equal(t, models.StatusExpired, stored.Status)
	assert.Zero(t, stored.CommentCount)
}

func TestComment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	post := env.createPost(t, "alice", time.Hour)

	comments, err := env.interactions.ListComments(ctx, post.ID)
	require.NoError(t, err)
	assert.NotNil(t, comments)
	assert.Empty(t, comments)

	for i, user := range []string{"bob", "alice", "bob"} {
		env.clock.Advance(time.Second)
		updated, err := env.interactions.Comment(ctx, post.ID, user, fmt.Sprintf("comment %d", i))
		require.NoError(t, err)
		assert.Equal(t, i+1, updated.CommentCount)
		assert.Len(t, updated.Comments, i+1)
	}

	comments, err = env.interactions.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "comment 0", comments[0].Text)
	assert.Equal(t, "alice", comments[1].User)
	assert.Equal(t, "comment 2", comments[2].Text)
	assert.True(t, comments[0].Timestamp.Before(comments[2].Timestamp))

	got, err := env.posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.CommentCount)
	assert.Len(t, got.Comments, 3)
}

func TestComment_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	post := env.createPost(t, "alice", time.Hour)

	_, err := env.interactions.Comment(ctx, post.ID, "bob", "   ")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = env.interactions.Comment(ctx, 999, "bob", "hello")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = env.interactions.ListComments(ctx, 999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	got, err := env.posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, got.CommentCount)
}
