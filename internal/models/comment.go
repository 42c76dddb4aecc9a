package models

import (
	"time"
)

// Comment 评论视图，由 Comment 类型的互动流水投影而来
type Comment struct {
	User      string    `json:"user"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// CommentFromInteraction projects a ledger row into a comment.
func CommentFromInteraction(i Interaction) Comment {
	return Comment{
		User:      i.User,
		Text:      i.CommentText,
		Timestamp: i.Timestamp,
	}
}
