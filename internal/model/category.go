package model

import "time"

// Category 版块模型
type Category struct {
	CategoryID int64     `db:"category_id"`
	Slug       string    `db:"slug"`
	Name       string    `db:"name"`
	Color      string    `db:"color"`
	TopicCount int       `db:"topic_count"` // denormalized, mutated only by topic create/delete
	Archived   int       `db:"archived"`    // 0 active, 1 archived (no new topics)
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// CategoryDTO 版块数据传输对象
type CategoryDTO struct {
	CategoryID int64  `json:"category_id"`
	Slug       string `json:"slug"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	TopicCount int    `json:"topic_count"`
	Archived   int    `json:"archived"`
}
