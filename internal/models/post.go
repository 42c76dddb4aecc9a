package models

import (
	"time"
)

type PostStatus string

const (
	StatusLive    PostStatus = "Live"
	StatusExpired PostStatus = "Expired"
)

type Post struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Title          string     `gorm:"not null" json:"title"`
	Topics         []Topic    `gorm:"many2many:post_topics;" json:"topics"`
	Body           string     `gorm:"type:text;not null" json:"body"`
	Owner          string     `gorm:"size:64;not null;index" json:"owner"`
	ExpirationTime time.Time  `gorm:"not null;index" json:"expirationTime"`
	Status         PostStatus `gorm:"size:16;not null;index;default:Live" json:"status"`
	LikeCount      int        `gorm:"not null;default:0" json:"likeCount"`
	DislikeCount   int        `gorm:"not null;default:0" json:"dislikeCount"`
	CommentCount   int        `gorm:"not null;default:0" json:"commentCount"`
	CreatedAt      time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`

	// 非数据库字段，单篇查询时填充
	Comments []Comment `gorm:"-" json:"comments,omitempty"`
	BodyHTML string    `gorm:"-" json:"bodyHtml,omitempty"`
}

// StatusAt 根据过期时间计算生命周期状态
func (p *Post) StatusAt(now time.Time) PostStatus {
	if !now.Before(p.ExpirationTime) {
		return StatusExpired
	}
	return StatusLive
}

// RefreshStatus recomputes Status and reports whether it changed.
func (p *Post) RefreshStatus(now time.Time) bool {
	s := p.StatusAt(now)
	if s == p.Status {
		return false
	}
	p.Status = s
	return true
}

// Score 热度：点赞 + 点踩 + 评论
func (p *Post) Score() int {
	return p.LikeCount + p.DislikeCount + p.CommentCount
}

// TopicNames returns the names of the post's topics.
func (p *Post) TopicNames() []string {
	names := make([]string, len(p.Topics))
	for i, t := range p.Topics {
		names[i] = t.Name
	}
	return names
}
