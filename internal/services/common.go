package services

import (
	"errors"
	"time"

	"postboard/internal/apperr"
	"postboard/internal/models"
	"postboard/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Clock 返回当前时间，测试中可替换
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

// storageErr 保留业务错误，其余按存储失败处理并记录日志
func storageErr(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	zap.L().Error(message, zap.Error(err))
	return apperr.Server(message, err)
}

// loadPost 按 ID 读取帖子及其话题
func loadPost(tx *gorm.DB, id uint) (*models.Post, error) {
	var post models.Post
	if err := tx.Preload("Topics", orderTopics).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("post not found")
		}
		return nil, err
	}
	return &post, nil
}

func orderTopics(tx *gorm.DB) *gorm.DB {
	return tx.Order("topics.id ASC")
}

// syncStatus 重新计算单个帖子的状态，有变化时写回
func syncStatus(tx *gorm.DB, post *models.Post, now time.Time) error {
	if !post.RefreshStatus(now) {
		return nil
	}
	return tx.Model(&models.Post{}).
		Where("id = ?", post.ID).
		UpdateColumn("status", post.Status).Error
}

// syncAllStatuses 批量修正过期状态，供按状态过滤的查询使用
func syncAllStatuses(tx *gorm.DB, now time.Time) error {
	if err := tx.Model(&models.Post{}).
		Where("status = ? AND expiration_time <= ?", models.StatusLive, now).
		UpdateColumn("status", models.StatusExpired).Error; err != nil {
		return err
	}
	return tx.Model(&models.Post{}).
		Where("status = ? AND expiration_time > ?", models.StatusExpired, now).
		UpdateColumn("status", models.StatusLive).Error
}

// loadComments 按时间顺序读取帖子的评论
func loadComments(tx *gorm.DB, postID uint) ([]models.Comment, error) {
	var rows []models.Interaction
	if err := tx.Where("post_id = ? AND type = ?", postID, models.InteractionComment).
		Order("occurred_at ASC").Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	comments := make([]models.Comment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, models.CommentFromInteraction(row))
	}
	return comments, nil
}

func purge(cache *utils.Cache) {
	if cache != nil {
		cache.Purge()
	}
}
