package services

import (
	"context"
	"strings"
	"time"

	"postboard/internal/apperr"
	"postboard/internal/models"
	"postboard/internal/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var counterColumns = map[models.InteractionType]string{
	models.InteractionLike:    "like_count",
	models.InteractionDislike: "dislike_count",
	models.InteractionComment: "comment_count",
}

type InteractionService struct {
	db    *gorm.DB
	cache *utils.Cache
	now   Clock
}

func NewInteractionService(db *gorm.DB, cache *utils.Cache) *InteractionService {
	return &InteractionService{db: db, cache: cache, now: utcNow}
}

// React 点赞或点踩。流水插入与计数器自增在同一事务内完成；
// 重复反应由 reaction_key 唯一索引拦截（ON CONFLICT DO NOTHING）。
func (s *InteractionService) React(ctx context.Context, postID uint, user string, kind models.InteractionType) (*models.Post, error) {
	if !kind.IsReaction() {
		return nil, apperr.Validation("reaction must be Like or Dislike")
	}
	verb := strings.ToLower(string(kind))

	now := s.now()
	if err := expireIfDue(s.db.WithContext(ctx), postID, now); err != nil {
		return nil, storageErr(err, "error recording "+verb)
	}

	var result *models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := s.livePost(tx, postID, now)
		if err != nil {
			return err
		}
		if post.Owner == user {
			return apperr.Forbidden("post owner cannot " + verb + " their own post")
		}

		key := models.ReactionKeyFor(postID, user, kind)
		record := models.Interaction{
			PostID:      postID,
			Type:        kind,
			User:        user,
			ReactionKey: &key,
			Timestamp:   now,
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&record)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("you have already " + verb + "d this post")
		}

		if result, err = bumpCounter(tx, postID, kind); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, storageErr(err, "error recording "+verb)
	}

	purge(s.cache)
	return result, nil
}

// Comment 追加评论并累加评论数
func (s *InteractionService) Comment(ctx context.Context, postID uint, user, text string) (*models.Post, error) {
	now := s.now()
	if err := expireIfDue(s.db.WithContext(ctx), postID, now); err != nil {
		return nil, storageErr(err, "error adding comment")
	}

	var result *models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.livePost(tx, postID, now); err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			return apperr.Validation("comment cannot be empty")
		}

		record := models.Interaction{
			PostID:      postID,
			Type:        models.InteractionComment,
			User:        user,
			CommentText: text,
			Timestamp:   now,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		post, err := bumpCounter(tx, postID, models.InteractionComment)
		if err != nil {
			return err
		}
		if post.Comments, err = loadComments(tx, postID); err != nil {
			return err
		}
		result = post
		return nil
	})
	if err != nil {
		return nil, storageErr(err, "error adding comment")
	}

	purge(s.cache)
	return result, nil
}

// ListComments 帖子的评论，无评论时返回空列表
func (s *InteractionService) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	tx := s.db.WithContext(ctx)

	var count int64
	if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return nil, storageErr(err, "error retrieving comments")
	}
	if count == 0 {
		return nil, apperr.NotFound("post not found")
	}

	comments, err := loadComments(tx, postID)
	if err != nil {
		return nil, storageErr(err, "error retrieving comments")
	}
	return comments, nil
}

// livePost 读取帖子并刷新状态；已过期的帖子不再接受互动
func (s *InteractionService) livePost(tx *gorm.DB, postID uint, now time.Time) (*models.Post, error) {
	post, err := loadPost(tx, postID)
	if err != nil {
		return nil, err
	}
	if err := syncStatus(tx, post, now); err != nil {
		return nil, err
	}
	if post.Status == models.StatusExpired {
		return nil, apperr.Forbidden("post has expired and no longer accepts interactions")
	}
	return post, nil
}

// expireIfDue 在互动事务之外写入到期状态，拒绝互动导致的回滚不会撤销它
func expireIfDue(tx *gorm.DB, postID uint, now time.Time) error {
	return tx.Model(&models.Post{}).
		Where("id = ? AND status = ? AND expiration_time <= ?", postID, models.StatusLive, now).
		UpdateColumn("status", models.StatusExpired).Error
}

func bumpCounter(tx *gorm.DB, postID uint, kind models.InteractionType) (*models.Post, error) {
	column := counterColumns[kind]
	if err := tx.Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1)).Error; err != nil {
		return nil, err
	}
	return loadPost(tx, postID)
}
