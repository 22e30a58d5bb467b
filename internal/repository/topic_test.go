package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"forum_go/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "mysql"), mock
}

func TestTopicGetByIDNoRows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTopicRepository(db)

	mock.ExpectQuery("SELECT .+ FROM topics WHERE topic_id = \\?").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"topic_id"}))

	topic, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, topic)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopicGetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTopicRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"topic_id", "category_id", "author_id", "author_name", "title", "content", "status",
		"is_pinned", "is_locked", "view_count", "reply_count", "last_activity_at", "created_at",
		"last_edited_at", "last_edited_by", "deleted_at", "deleted_by",
	}).AddRow(int64(1), int64(2), int64(3), "alice", "a title", "a body", "open",
		false, false, 7, 2, now, now, nil, nil, nil, nil)

	mock.ExpectQuery("SELECT .+ FROM topics WHERE topic_id = \\?").
		WithArgs(int64(1)).
		WillReturnRows(rows)

	topic, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, topic)
	assert.Equal(t, "a title", topic.Title)
	assert.False(t, topic.IsDeleted())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopicCreateTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTopicRepository(db)

	now := time.Now()
	topic := &model.Topic{
		TopicID: 1, CategoryID: 2, AuthorID: 3, AuthorName: "alice",
		Title: "a title", Content: "a body", Status: model.TopicStatusOpen,
		LastActivityAt: now, CreatedAt: now,
	}
	entry := &model.SearchEntry{
		EntryType: model.SearchTypeTopic, EntityID: 1,
		Title: "a title", Content: "a body",
		CategoryName: "General", AuthorName: "alice", CreatedAt: now,
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO topics").
		WithArgs(int64(1), int64(2), int64(3), "alice", "a title", "a body", "open", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO search_index").
		WithArgs("topic", int64(1), "a title", "a body", "General", "alice", now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE categories SET topic_count = topic_count + 1 WHERE category_id = ?")).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), topic, entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopicCreateRollsBackOnIndexFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTopicRepository(db)

	now := time.Now()
	topic := &model.Topic{TopicID: 1, CategoryID: 2, LastActivityAt: now, CreatedAt: now}
	entry := &model.SearchEntry{EntryType: model.SearchTypeTopic, EntityID: 1, CreatedAt: now}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO topics").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO search_index").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	assert.Error(t, repo.Create(context.Background(), topic, entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopicSoftDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTopicRepository(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT category_id FROM topics WHERE topic_id = ?")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"category_id"}).AddRow(int64(2)))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE topics SET deleted_at = ?, deleted_by = ? WHERE topic_id = ? AND deleted_at IS NULL")).
		WithArgs(now, int64(99), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM search_index WHERE entry_type = ? AND entity_id = ?")).
		WithArgs("topic", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE categories SET topic_count = GREATEST(topic_count - 1, 0) WHERE category_id = ?")).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ok, err := repo.SoftDelete(context.Background(), 1, 99, now)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopicSoftDeleteAlreadyDeleted(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTopicRepository(db)
	now := time.Now()

	// guard matches 0 rows: no index delete, no counter decrement
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT category_id FROM topics WHERE topic_id = ?")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"category_id"}).AddRow(int64(2)))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE topics SET deleted_at = ?, deleted_by = ? WHERE topic_id = ? AND deleted_at IS NULL")).
		WithArgs(now, int64(99), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ok, err := repo.SoftDelete(context.Background(), 1, 99, now)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopicSoftDeleteMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTopicRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT category_id FROM topics WHERE topic_id = ?")).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"category_id"}))
	mock.ExpectRollback()

	ok, err := repo.SoftDelete(context.Background(), 404, 99, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopicIncViews(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTopicRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE topics SET view_count = view_count + 1 WHERE topic_id = ? AND deleted_at IS NULL")).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.IncViews(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopicListByCategory(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTopicRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"topic_id", "category_id", "author_id", "author_name", "title", "content", "status",
		"is_pinned", "is_locked", "view_count", "reply_count", "last_activity_at", "created_at",
		"last_edited_at", "last_edited_by", "deleted_at", "deleted_by",
	}).
		AddRow(int64(2), int64(1), int64(3), "bob", "pinned one", "body", "open",
			true, false, 0, 0, now, now, nil, nil, nil, nil).
		AddRow(int64(1), int64(1), int64(3), "bob", "fresh one", "body", "open",
			false, false, 0, 0, now, now, nil, nil, nil, nil)

	mock.ExpectQuery("SELECT .+ FROM topics WHERE category_id = \\? AND deleted_at IS NULL ORDER BY is_pinned DESC, last_activity_at DESC").
		WithArgs(int64(1), 0, 20).
		WillReturnRows(rows)

	topics, err := repo.ListByCategory(context.Background(), 1, 0, 20)
	require.NoError(t, err)
	require.Len(t, topics, 2)
	assert.True(t, topics[0].IsPinned)
	assert.NoError(t, mock.ExpectationsWereMet())
}
