package models

import (
	"fmt"
	"time"
)

type InteractionType string

const (
	InteractionLike    InteractionType = "Like"
	InteractionDislike InteractionType = "Dislike"
	InteractionComment InteractionType = "Comment"
)

// Interaction 互动流水：点赞、点踩、评论，只追加不修改。
// PostID 为弱引用，删除帖子不会级联删除流水。
type Interaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	PostID      uint            `gorm:"not null;index" json:"postId"`
	Type        InteractionType `gorm:"size:16;not null" json:"type"`
	User        string          `gorm:"size:64;not null;index" json:"user"`
	CommentText string          `gorm:"type:text" json:"comment,omitempty"`
	// 点赞/点踩时为 "postId:user:type"，评论为 NULL。
	// 唯一索引保证同一用户对同一帖子的同类反应只能插入一次。
	ReactionKey *string   `gorm:"uniqueIndex;size:160" json:"-"`
	Timestamp   time.Time `gorm:"column:occurred_at;not null;index" json:"timestamp"`
}

// IsReaction reports whether t is Like or Dislike.
func (t InteractionType) IsReaction() bool {
	return t == InteractionLike || t == InteractionDislike
}

// ReactionKeyFor builds the unique key for a reaction.
func ReactionKeyFor(postID uint, user string, t InteractionType) string {
	return fmt.Sprintf("%d:%s:%s", postID, user, t)
}
