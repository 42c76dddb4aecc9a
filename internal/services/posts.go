package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"postboard/internal/apperr"
	"postboard/internal/models"
	"postboard/internal/utils"

	"gorm.io/gorm"
)

// PostInput 创建帖子的请求体
type PostInput struct {
	Title          string   `json:"title"`
	Topics         []string `json:"topics"`
	Body           string   `json:"body"`
	ExpirationTime string   `json:"expirationTime"`
}

// PostPatch 更新帖子的请求体，nil 字段保持不变
type PostPatch struct {
	Title          *string  `json:"title"`
	Topics         []string `json:"topics"`
	Body           *string  `json:"body"`
	ExpirationTime *string  `json:"expirationTime"`
}

type PostService struct {
	db    *gorm.DB
	cache *utils.Cache
	now   Clock
}

func NewPostService(db *gorm.DB, cache *utils.Cache) *PostService {
	return &PostService{db: db, cache: cache, now: utcNow}
}

// Create 校验并保存帖子，状态按过期时间立即计算
func (s *PostService) Create(ctx context.Context, owner string, in PostInput) (*models.Post, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperr.Validation("title is required")
	}
	if strings.TrimSpace(in.Body) == "" {
		return nil, apperr.Validation("body is required")
	}
	topicNames, err := normalizeTopics(in.Topics)
	if err != nil {
		return nil, err
	}
	exp, err := parseExpiration(in.ExpirationTime)
	if err != nil {
		return nil, err
	}

	now := s.now()
	post := models.Post{
		Title:          in.Title,
		Body:           in.Body,
		Owner:          owner,
		ExpirationTime: exp,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	post.Status = post.StatusAt(now)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		topics, err := findTopics(tx, topicNames)
		if err != nil {
			return err
		}
		post.Topics = topics
		return tx.Omit("Topics.*").Create(&post).Error
	})
	if err != nil {
		return nil, storageErr(err, "error creating post")
	}

	purge(s.cache)
	return &post, nil
}

// Update 仅作者可改；所有权在写语句中再次校验
func (s *PostService) Update(ctx context.Context, id uint, owner string, patch PostPatch) (*models.Post, error) {
	now := s.now()
	var updated *models.Post

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := loadPost(tx, id)
		if err != nil {
			return err
		}
		if post.Owner != owner {
			return apperr.Forbidden("only the post owner can update this post")
		}

		fields := map[string]interface{}{}
		if patch.Title != nil {
			if strings.TrimSpace(*patch.Title) == "" {
				return apperr.Validation("title is required")
			}
			post.Title = *patch.Title
			fields["title"] = post.Title
		}
		if patch.Body != nil {
			if strings.TrimSpace(*patch.Body) == "" {
				return apperr.Validation("body is required")
			}
			post.Body = *patch.Body
			fields["body"] = post.Body
		}
		if patch.ExpirationTime != nil {
			exp, err := parseExpiration(*patch.ExpirationTime)
			if err != nil {
				return err
			}
			post.ExpirationTime = exp
			fields["expiration_time"] = exp
		}
		var topics []models.Topic
		if patch.Topics != nil {
			names, err := normalizeTopics(patch.Topics)
			if err != nil {
				return err
			}
			if topics, err = findTopics(tx, names); err != nil {
				return err
			}
		}

		post.RefreshStatus(now)
		post.UpdatedAt = now
		fields["status"] = post.Status
		fields["updated_at"] = now

		res := tx.Model(&models.Post{}).
			Where("id = ? AND owner = ?", id, owner).
			Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("post not found")
		}

		if topics != nil {
			if err := tx.Model(post).Association("Topics").Replace(topics); err != nil {
				return err
			}
			post.Topics = topics
		}
		updated = post
		return nil
	})
	if err != nil {
		return nil, storageErr(err, "error updating post")
	}

	purge(s.cache)
	return updated, nil
}

// Delete 仅作者可删；互动流水不级联删除
func (s *PostService) Delete(ctx context.Context, id uint, owner string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND owner = ?", id, owner).Delete(&models.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var existing models.Post
			err := tx.Select("id", "owner").Take(&existing, id).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("post not found")
			}
			if err != nil {
				return err
			}
			return apperr.Forbidden("only the post owner can delete this post")
		}
		return tx.Model(&models.Post{ID: id}).Association("Topics").Clear()
	})
	if err != nil {
		return storageErr(err, "error deleting post")
	}

	purge(s.cache)
	return nil
}

// Get 读取单篇帖子，附带评论与渲染后的正文
func (s *PostService) Get(ctx context.Context, id uint) (*models.Post, error) {
	tx := s.db.WithContext(ctx)

	post, err := loadPost(tx, id)
	if err != nil {
		return nil, storageErr(err, "error retrieving post")
	}
	if err := syncStatus(tx, post, s.now()); err != nil {
		return nil, storageErr(err, "error retrieving post")
	}

	comments, err := loadComments(tx, post.ID)
	if err != nil {
		return nil, storageErr(err, "error retrieving post")
	}
	post.Comments = comments
	post.BodyHTML = utils.RenderMarkdown(post.Body)
	return post, nil
}

// ListAll 全部帖子，按创建时间倒序
func (s *PostService) ListAll(ctx context.Context) ([]models.Post, error) {
	tx := s.db.WithContext(ctx)
	if err := syncAllStatuses(tx, s.now()); err != nil {
		return nil, storageErr(err, "error retrieving posts")
	}

	posts := []models.Post{}
	if err := tx.Preload("Topics", orderTopics).
		Order("created_at DESC").Order("id DESC").
		Find(&posts).Error; err != nil {
		return nil, storageErr(err, "error retrieving posts")
	}
	return posts, nil
}

// ListByUser 某用户发布的帖子；用户不存在时返回 NotFound
func (s *PostService) ListByUser(ctx context.Context, username string) ([]models.Post, error) {
	tx := s.db.WithContext(ctx)

	var user models.User
	if err := tx.Select("id").Where("username = ?", username).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, storageErr(err, "error retrieving posts")
	}

	if err := syncAllStatuses(tx, s.now()); err != nil {
		return nil, storageErr(err, "error retrieving posts")
	}

	posts := []models.Post{}
	if err := tx.Preload("Topics", orderTopics).
		Where("owner = ?", username).
		Order("created_at DESC").Order("id DESC").
		Find(&posts).Error; err != nil {
		return nil, storageErr(err, "error retrieving posts")
	}
	return posts, nil
}

// normalizeTopics 校验话题并去重，保持首次出现的顺序
func normalizeTopics(topics []string) ([]string, error) {
	if len(topics) == 0 {
		return nil, apperr.Validation("at least one topic is required")
	}
	seen := make(map[string]bool, len(topics))
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		if !models.IsValidTopic(t) {
			return nil, apperr.Validation("invalid topic: " + t + " (allowed: " + strings.Join(models.TopicNames, ", ") + ")")
		}
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out, nil
}

func findTopics(tx *gorm.DB, names []string) ([]models.Topic, error) {
	var topics []models.Topic
	if err := tx.Where("name IN ?", names).Order("id ASC").Find(&topics).Error; err != nil {
		return nil, err
	}
	if len(topics) != len(names) {
		return nil, errors.New("topics table is not seeded")
	}
	return topics, nil
}

func parseExpiration(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, apperr.Validation("expirationTime is required")
	}
	t, err := utils.ParseTime(s)
	if err != nil {
		return time.Time{}, apperr.Validation("expirationTime must be a valid date, e.g. 2026-01-02T15:04:05Z")
	}
	return t.UTC(), nil
}
