package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"forum_go/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplyCreateTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReplyRepository(db)

	now := time.Now()
	parentID := int64(10)
	reply := &model.Reply{
		ReplyID: 11, TopicID: 1, ParentID: &parentID, AuthorID: 3, AuthorName: "bob",
		Content: "nested answer", Depth: 1, Path: "10.11", CreatedAt: now,
	}
	entry := &model.SearchEntry{
		EntryType: model.SearchTypeReply, EntityID: 11,
		Content: "nested answer", CategoryName: "General", AuthorName: "bob", CreatedAt: now,
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO replies").
		WithArgs(int64(11), int64(1), parentID, int64(3), "bob", "nested answer", 1, "10.11", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO search_index").
		WithArgs("reply", int64(11), "", "nested answer", "General", "bob", now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE topics SET reply_count = reply_count + 1, last_activity_at = ? WHERE topic_id = ?")).
		WithArgs(now, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), reply, entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplySoftDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReplyRepository(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT topic_id FROM replies WHERE reply_id = ?")).
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"topic_id"}).AddRow(int64(1)))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE replies SET deleted_at = ?, deleted_by = ? WHERE reply_id = ? AND deleted_at IS NULL")).
		WithArgs(now, int64(99), int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM search_index WHERE entry_type = ? AND entity_id = ?")).
		WithArgs("reply", int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE topics SET reply_count = GREATEST(reply_count - 1, 0) WHERE topic_id = ?")).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ok, err := repo.SoftDelete(context.Background(), 11, 99, now)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplySoftDeleteAlreadyDeleted(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReplyRepository(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT topic_id FROM replies WHERE reply_id = ?")).
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"topic_id"}).AddRow(int64(1)))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE replies SET deleted_at = ?, deleted_by = ? WHERE reply_id = ? AND deleted_at IS NULL")).
		WithArgs(now, int64(99), int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ok, err := repo.SoftDelete(context.Background(), 11, 99, now)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplyGetSubtree(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReplyRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"reply_id", "topic_id", "parent_id", "author_id", "author_name", "content", "depth", "path",
		"is_solution", "created_at", "last_edited_at", "last_edited_by", "deleted_at", "deleted_by",
	}).
		AddRow(int64(10), int64(1), nil, int64(3), "bob", "root", 0, "10",
			false, now, nil, nil, nil, nil).
		AddRow(int64(11), int64(1), int64(10), int64(4), "alice", "child", 1, "10.11",
			false, now, nil, nil, nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + replyColumns + " FROM replies WHERE path = ? OR path LIKE CONCAT(?, '.%') ORDER BY path ASC")).
		WithArgs("10", "10").
		WillReturnRows(rows)

	replies, err := repo.GetSubtree(context.Background(), "10")
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Equal(t, "10", replies[0].Path)
	assert.Equal(t, "10.11", replies[1].Path)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplyMarkSolution(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReplyRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE replies SET is_solution = 0 WHERE topic_id = ? AND is_solution = 1")).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE replies SET is_solution = 1 WHERE reply_id = ? AND topic_id = ? AND deleted_at IS NULL")).
		WithArgs(int64(11), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE topics SET status = ? WHERE topic_id = ?")).
		WithArgs("solved", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ok, err := repo.MarkSolution(context.Background(), 1, 11)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplyMarkSolutionInvalidTargetRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReplyRepository(db)

	// target row not matched: the clear must not be committed
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE replies SET is_solution = 0 WHERE topic_id = ? AND is_solution = 1")).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE replies SET is_solution = 1 WHERE reply_id = ? AND topic_id = ? AND deleted_at IS NULL")).
		WithArgs(int64(404), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	ok, err := repo.MarkSolution(context.Background(), 1, 404)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
