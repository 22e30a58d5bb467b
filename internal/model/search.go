package model

import "time"

// Search entry types
const (
	SearchTypeTopic = "topic"
	SearchTypeReply = "reply"
)

// SearchEntry 搜索索引行
//
// Index-only mirror of visible content: every non-deleted topic/reply
// has exactly one row here, every deleted one has none. Rows are written
// in the same transaction as the content mutation they mirror.
type SearchEntry struct {
	ID           int64     `db:"id"`
	EntryType    string    `db:"entry_type"` // topic | reply
	EntityID     int64     `db:"entity_id"`
	Title        string    `db:"title"` // empty for replies
	Content      string    `db:"content"`
	CategoryName string    `db:"category_name"`
	AuthorName   string    `db:"author_name"`
	CreatedAt    time.Time `db:"created_at"`
}

// SearchResult 搜索结果行
type SearchResult struct {
	EntryType    string  `db:"entry_type" json:"type"`
	EntityID     int64   `db:"entity_id" json:"entity_id"`
	Title        string  `db:"title" json:"title,omitempty"`
	Content      string  `db:"content" json:"content"`
	CategoryName string  `db:"category_name" json:"category_name"`
	AuthorName   string  `db:"author_name" json:"author_name"`
	Relevance    float64 `db:"relevance" json:"relevance"`
	CreatedAt    int64   `db:"created_unix" json:"created_at"`
}
