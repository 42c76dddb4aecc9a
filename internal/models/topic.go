package models

import (
	"encoding/json"
)

// 固定的话题集合，启动时写入 topics 表
const (
	TopicPolitics = "Politics"
	TopicHealth   = "Health"
	TopicSport    = "Sport"
	TopicTech     = "Tech"
)

// TopicNames 全部合法话题，顺序即种子顺序
var TopicNames = []string{TopicPolitics, TopicHealth, TopicSport, TopicTech}

type Topic struct {
	ID   uint   `gorm:"primaryKey" json:"-"`
	Name string `gorm:"not null;uniqueIndex;size:32" json:"name"`
}

// MarshalJSON renders a topic as its bare name.
func (t Topic) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Name)
}

// IsValidTopic 检查话题是否属于固定集合（区分大小写）
func IsValidTopic(name string) bool {
	for _, n := range TopicNames {
		if n == name {
			return true
		}
	}
	return false
}

func (t *Topic) UnmarshalJSON(b []byte) error {
	return json.Unmarshal(b, &t.Name)
}
