package model

// ForumStats 全站统计
type ForumStats struct {
	TopicCount    int `db:"topic_count" json:"topic_count"`
	ReplyCount    int `db:"reply_count" json:"reply_count"`
	UserCount     int `db:"user_count" json:"user_count"`
	ViewCount     int `db:"view_count" json:"view_count"`
	CategoryCount int `db:"category_count" json:"category_count"`
}

// CategoryStats 单版块统计
type CategoryStats struct {
	CategoryID int64 `db:"category_id" json:"category_id"`
	TopicCount int   `db:"topic_count" json:"topic_count"`
	ReplyCount int   `db:"reply_count" json:"reply_count"`
	ViewCount  int   `db:"view_count" json:"view_count"`
}

// TrendingTopic 趋势主题行
//
// Score = replies*2 + views*0.1 - daysSinceCreation*10, computed in SQL
// over topics created inside the trending window.
type TrendingTopic struct {
	Topic
	Score float64 `db:"score" json:"score"`
}
