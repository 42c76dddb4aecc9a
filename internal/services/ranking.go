package services

import (
	"context"
	"errors"
	"time"

	"postboard/internal/apperr"
	"postboard/internal/models"
	"postboard/internal/utils"

	"gorm.io/gorm"
)

// 热度 = 点赞 + 点踩 + 评论
const scoreExpr = "(like_count + dislike_count + comment_count) DESC"

// RankingService 按话题浏览与热度排行，结果走本地 LRU 缓存
type RankingService struct {
	db    *gorm.DB
	cache *utils.Cache
	now   Clock
}

// rankingEntry 缓存条目；到 validUntil 时话题内有帖子会切换状态
type rankingEntry struct {
	post       *models.Post
	posts      []models.Post
	validUntil time.Time
}

func (e *rankingEntry) fresh(now time.Time) bool {
	return e.validUntil.IsZero() || now.Before(e.validUntil)
}

func NewRankingService(db *gorm.DB, cache *utils.Cache) *RankingService {
	return &RankingService{db: db, cache: cache, now: utcNow}
}

// MostPopular 话题内指定状态下热度最高的帖子。
// 同分时较新的帖子优先，再按 ID 倒序。
func (s *RankingService) MostPopular(ctx context.Context, topic string, status models.PostStatus) (*models.Post, error) {
	if !models.IsValidTopic(topic) {
		return nil, apperr.Validation("invalid topic: " + topic)
	}
	if status != models.StatusLive && status != models.StatusExpired {
		return nil, apperr.Validation("status must be live or expired")
	}

	now := s.now()
	key := "popular:" + topic + ":" + string(status)
	if entry := s.cached(key, now); entry != nil {
		if entry.post == nil {
			return nil, apperr.NotFound("no " + string(status) + " posts found for topic " + topic)
		}
		post := *entry.post
		return &post, nil
	}

	tx := s.db.WithContext(ctx)
	if err := syncAllStatuses(tx, now); err != nil {
		return nil, storageErr(err, "error retrieving popular post")
	}

	var post models.Post
	err := tx.Preload("Topics", orderTopics).
		Where("id IN (?)", postsInTopic(tx, topic)).
		Where("status = ?", status).
		Order(scoreExpr).Order("created_at DESC").Order("id DESC").
		Take(&post).Error

	var found *models.Post
	switch {
	case err == nil:
		found = &post
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, storageErr(err, "error retrieving popular post")
	}

	validUntil, err := nextTransition(tx, topic, now)
	if err != nil {
		return nil, storageErr(err, "error retrieving popular post")
	}
	s.store(key, &rankingEntry{post: found, validUntil: validUntil})

	if found == nil {
		return nil, apperr.NotFound("no " + string(status) + " posts found for topic " + topic)
	}
	result := *found
	return &result, nil
}

// ListByTopic 话题下全部帖子（含已过期），按创建时间倒序
func (s *RankingService) ListByTopic(ctx context.Context, topic string) ([]models.Post, error) {
	if !models.IsValidTopic(topic) {
		return nil, apperr.Validation("invalid topic: " + topic)
	}

	now := s.now()
	key := "topic:" + topic
	if entry := s.cached(key, now); entry != nil {
		return append([]models.Post{}, entry.posts...), nil
	}

	tx := s.db.WithContext(ctx)
	if err := syncAllStatuses(tx, now); err != nil {
		return nil, storageErr(err, "error retrieving posts")
	}

	posts := []models.Post{}
	if err := tx.Preload("Topics", orderTopics).
		Where("id IN (?)", postsInTopic(tx, topic)).
		Order("created_at DESC").Order("id DESC").
		Find(&posts).Error; err != nil {
		return nil, storageErr(err, "error retrieving posts")
	}

	validUntil, err := nextTransition(tx, topic, now)
	if err != nil {
		return nil, storageErr(err, "error retrieving posts")
	}
	s.store(key, &rankingEntry{posts: posts, validUntil: validUntil})

	return append([]models.Post{}, posts...), nil
}

func (s *RankingService) cached(key string, now time.Time) *rankingEntry {
	if s.cache == nil {
		return nil
	}
	entry, ok := s.cache.Get(key).(*rankingEntry)
	if !ok {
		return nil
	}
	if !entry.fresh(now) {
		s.cache.Delete(key)
		return nil
	}
	return entry
}

func (s *RankingService) store(key string, entry *rankingEntry) {
	if s.cache != nil {
		s.cache.Set(key, entry)
	}
}

// postsInTopic 子查询：带有该话题的帖子 ID
func postsInTopic(tx *gorm.DB, topic string) *gorm.DB {
	return tx.Session(&gorm.Session{NewDB: true}).
		Table("post_topics").
		Select("post_topics.post_id").
		Joins("JOIN topics ON topics.id = post_topics.topic_id").
		Where("topics.name = ?", topic)
}

// nextTransition 话题内下一个到期时间；没有待过期的帖子时返回零值
func nextTransition(tx *gorm.DB, topic string, now time.Time) (time.Time, error) {
	var next models.Post
	err := tx.Select("id", "expiration_time").
		Where("id IN (?)", postsInTopic(tx, topic)).
		Where("expiration_time > ?", now).
		Order("expiration_time ASC").
		Take(&next).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return next.ExpirationTime, nil
}
