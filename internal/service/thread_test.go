package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"forum_go/internal/model"
	"forum_go/internal/pkg/apperr"
	"forum_go/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type threadFixture struct {
	topics     *fakeTopicRepo
	replies    *fakeReplyRepo
	categories *fakeCategoryRepo
	svc        *ThreadService
}

func newThreadFixture(t *testing.T, deletionMode string) *threadFixture {
	t.Helper()

	topics := newFakeTopicRepo()
	replies := newFakeReplyRepo(topics)
	categories := newFakeCategoryRepo()
	categories.categories[1] = &model.Category{CategoryID: 1, Slug: "general", Name: "General"}

	policy := repository.NewDeletionPolicy(deletionMode, topics, replies)
	svc := NewThreadService(topics, replies, categories, policy, nil, testCacheConfig())

	return &threadFixture{topics: topics, replies: replies, categories: categories, svc: svc}
}

var (
	alice = &Actor{ID: 100, Name: "alice", Role: model.RoleUser}
	bob   = &Actor{ID: 101, Name: "bob", Role: model.RoleUser}
	mod   = &Actor{ID: 200, Name: "mod", Role: model.RoleModerator}
)

func TestCreateTopic(t *testing.T) {
	f := newThreadFixture(t, "soft")
	ctx := context.Background()

	dto, err := f.svc.CreateTopic(ctx, alice, 1, "How do I test this?", "A question with enough content.")
	require.NoError(t, err)
	assert.Equal(t, model.TopicStatusOpen, dto.Status)
	assert.Equal(t, "alice", dto.AuthorName)

	// search index row written alongside
	entry := f.topics.searchRows[dto.TopicID]
	require.NotNil(t, entry)
	assert.Equal(t, model.SearchTypeTopic, entry.EntryType)
	assert.Equal(t, "General", entry.CategoryName)
	assert.Equal(t, 1, f.topics.catCounts[1])
}

func TestCreateTopicValidation(t *testing.T) {
	f := newThreadFixture(t, "soft")
	ctx := context.Background()

	_, err := f.svc.CreateTopic(ctx, alice, 1, "ab", "long enough content here")
	assert.True(t, apperr.IsValidation(err), "short title")

	_, err = f.svc.CreateTopic(ctx, alice, 1, strings.Repeat("x", 201), "long enough content here")
	assert.True(t, apperr.IsValidation(err), "long title")

	_, err = f.svc.CreateTopic(ctx, alice, 1, "valid title", "short")
	assert.True(t, apperr.IsValidation(err), "short content")

	_, err = f.svc.CreateTopic(ctx, alice, 99, "valid title", "long enough content here")
	assert.True(t, apperr.IsNotFound(err), "unknown category")
}

func TestCreateTopicArchivedCategory(t *testing.T) {
	f := newThreadFixture(t, "soft")
	f.categories.categories[2] = &model.Category{CategoryID: 2, Slug: "old", Name: "Old", Archived: 1}

	_, err := f.svc.CreateTopic(context.Background(), alice, 2, "valid title", "long enough content here")
	assert.True(t, apperr.IsValidation(err))
}

func TestCreateReplyDepthAndPath(t *testing.T) {
	f := newThreadFixture(t, "soft")
	ctx := context.Background()

	topic, err := f.svc.CreateTopic(ctx, alice, 1, "nesting check", "long enough content here")
	require.NoError(t, err)

	root, err := f.svc.CreateReply(ctx, bob, topic.TopicID, nil, "a root level reply")
	require.NoError(t, err)
	assert.Equal(t, 0, root.Depth)
	assert.NotContains(t, root.Path, ".")

	child, err := f.svc.CreateReply(ctx, alice, topic.TopicID, &root.ReplyID, "a nested reply here")
	require.NoError(t, err)
	assert.Equal(t, 1, child.Depth)
	assert.Equal(t, root.Path+"."+pathTail(child.Path), child.Path)
	assert.True(t, strings.HasPrefix(child.Path, root.Path+"."))

	got, err := f.svc.GetTopic(ctx, topic.TopicID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ReplyCount)
}

func pathTail(path string) string {
	parts := strings.Split(path, ".")
	return parts[len(parts)-1]
}

func TestCreateReplyMaxDepth(t *testing.T) {
	f := newThreadFixture(t, "soft")
	ctx := context.Background()

	topic, err := f.svc.CreateTopic(ctx, alice, 1, "deep thread", "long enough content here")
	require.NoError(t, err)

	var parentID *int64
	for depth := 0; depth <= model.MaxReplyDepth; depth++ {
		dto, err := f.svc.CreateReply(ctx, bob, topic.TopicID, parentID, "going one level deeper")
		require.NoError(t, err, "depth %d", depth)
		assert.Equal(t, depth, dto.Depth)
		id := dto.ReplyID
		parentID = &id
	}

	// one past the limit is rejected outright
	_, err = f.svc.CreateReply(ctx, bob, topic.TopicID, parentID, "this one is too deep")
	assert.True(t, apperr.IsMaxDepth(err))
}

func TestCreateReplyLockedTopic(t *testing.T) {
	f := newThreadFixture(t, "soft")
	ctx := context.Background()

	topic, err := f.svc.CreateTopic(ctx, alice, 1, "locked topic", "long enough content here")
	require.NoError(t, err)
	f.topics.topics[topic.TopicID].IsLocked = true

	_, err = f.svc.CreateReply(ctx, bob, topic.TopicID, nil, "regular user blocked")
	assert.True(t, apperr.IsLocked(err))

	// moderators bypass the lock
	_, err = f.svc.CreateReply(ctx, mod, topic.TopicID, nil, "moderator note posted")
	assert.NoError(t, err)
}

func TestCreateReplyParentChecks(t *testing.T) {
	f := newThreadFixture(t, "soft")
	ctx := context.Background()

	topicA, err := f.svc.CreateTopic(ctx, alice, 1, "first topic", "long enough content here")
	require.NoError(t, err)
	topicB, err := f.svc.CreateTopic(ctx, alice, 1, "second topic", "long enough content here")
	require.NoError(t, err)

	replyA, err := f.svc.CreateReply(ctx, bob, topicA.TopicID, nil, "reply in first topic")
	require.NoError(t, err)

	// parent from another topic
	_, err = f.svc.CreateReply(ctx, bob, topicB.TopicID, &replyA.ReplyID, "cross topic parent")
	assert.True(t, apperr.IsValidation(err))

	// missing parent
	missing := int64(42)
	_, err = f.svc.CreateReply(ctx, bob, topicA.TopicID, &missing, "no such parent here")
	assert.True(t, apperr.IsNotFound(err))

	// deleted parent
	require.NoError(t, f.svc.DeleteReply(ctx, bob, replyA.ReplyID))
	_, err = f.svc.CreateReply(ctx, bob, topicA.TopicID, &replyA.ReplyID, "parent is deleted now")
	assert.True(t, apperr.IsNotFound(err))
}

func TestSoftDeleteReplyPreservesChildren(t *testing.T) {
	f := newThreadFixture(t, "soft")
	ctx := context.Background()

	topic, err := f.svc.CreateTopic(ctx, alice, 1, "delete middle node", "long enough content here")
	require.NoError(t, err)

	root, err := f.svc.CreateReply(ctx, bob, topic.TopicID, nil, "root of the subtree")
	require.NoError(t, err)
	child, err := f.svc.CreateReply(ctx, alice, topic.TopicID, &root.ReplyID, "child stays visible")
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteReply(ctx, bob, root.ReplyID))

	list, total, err := f.svc.GetReplies(ctx, topic.TopicID, 1, 20)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, total, "total counts live replies only")

	// deleted node keeps its slot with masked content
	assert.True(t, list[0].IsDeleted)
	assert.Equal(t, deletedPlaceholder, list[0].Content)
	assert.Equal(t, deletedPlaceholder, list[0].AuthorName)
	assert.Equal(t, root.Path, list[0].Path)

	// child untouched
	assert.False(t, list[1].IsDeleted)
	assert.Equal(t, "child stays visible", list[1].Content)
	assert.Equal(t, child.Path, list[1].Path)

	// counter only counts live replies, search row removed
	assert.Equal(t, 1, f.topics.topics[topic.TopicID].ReplyCount)
	assert.Nil(t, f.replies.searchRows[root.ReplyID])
	assert.NotNil(t, f.replies.searchRows[child.ReplyID])
}

func TestDeleteReplyIdempotent(t *testing.T) {
	f := newThreadFixture(t, "soft")
	ctx := context.Background()

	topic, err := f.svc.CreateTopic(ctx, alice, 1, "double delete", "long enough content here")
	require.NoError(t, err)
	reply, err := f.svc.CreateReply(ctx, bob, topic.TopicID, nil, "delete me twice please")
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteReply(ctx, bob, reply.ReplyID))
	require.NoError(t, f.svc.DeleteReply(ctx, bob, reply.ReplyID))

	// counter decremented exactly once
	assert.Equal(t, 0, f.topics.topics[topic.TopicID].ReplyCount)
}

func TestHardDeleteRemovesSubtree(t *testing.T) {
	f := newThreadFixture(t, "hard")
	ctx := context.Background()

	topic, err := f.svc.CreateTopic(ctx, alice, 1, "hard delete mode", "long enough content here")
	require.NoError(t, err)

	root, err := f.svc.CreateReply(ctx, bob, topic.TopicID, nil, "root of doomed tree")
	require.NoError(t, err)
	_, err = f.svc.CreateReply(ctx, alice, topic.TopicID, &root.ReplyID, "child goes down too")
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteReply(ctx, bob, root.ReplyID))

	assert.Empty(t, f.replies.replies)
	assert.Empty(t, f.replies.searchRows)
	assert.Equal(t, 0, f.topics.topics[topic.TopicID].ReplyCount)
}

func TestDeleteTopicPermissions(t *testing.T) {
	f := newThreadFixture(t, "soft")
	ctx := context.Background()

	topic, err := f.svc.CreateTopic(ctx, alice, 1, "whose topic is it", "long enough content here")
	require.NoError(t, err)

	err = f.svc.DeleteTopic(ctx, bob, topic.TopicID)
	assert.True(t, apperr.IsPermission(err))

	// author may delete their own
	require.NoError(t, f.svc.DeleteTopic(ctx, alice, topic.TopicID))
	assert.Equal(t, 0, f.topics.catCounts[1])

	// deleted topics read as not found
	_, err = f.svc.GetTopic(ctx, topic.TopicID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestUpdateTopicPermissions(t *testing.T) {
	f := newThreadFixture(t, "soft")
	ctx := context.Background()

	topic, err := f.svc.CreateTopic(ctx, alice, 1, "original title", "long enough content here")
	require.NoError(t, err)

	err = f.svc.UpdateTopic(ctx, bob, topic.TopicID, "hijacked title", "long enough content here")
	assert.True(t, apperr.IsPermission(err))

	require.NoError(t, f.svc.UpdateTopic(ctx, alice, topic.TopicID, "edited title", "updated content goes here"))
	stored := f.topics.topics[topic.TopicID]
	assert.Equal(t, "edited title", stored.Title)
	require.NotNil(t, stored.LastEditedBy)
	assert.Equal(t, alice.ID, *stored.LastEditedBy)

	// search row follows the edit
	assert.Equal(t, "edited title", f.topics.searchRows[topic.TopicID].Title)

	// moderator may edit someone else's topic
	require.NoError(t, f.svc.UpdateTopic(ctx, mod, topic.TopicID, "moderated title", "moderated content goes here"))
}

func TestGetSubtree(t *testing.T) {
	f := newThreadFixture(t, "soft")
	ctx := context.Background()

	topic, err := f.svc.CreateTopic(ctx, alice, 1, "subtree fetch", "long enough content here")
	require.NoError(t, err)

	a, err := f.svc.CreateReply(ctx, bob, topic.TopicID, nil, "branch a root reply")
	require.NoError(t, err)
	aChild, err := f.svc.CreateReply(ctx, alice, topic.TopicID, &a.ReplyID, "branch a child reply")
	require.NoError(t, err)
	_, err = f.svc.CreateReply(ctx, bob, topic.TopicID, nil, "branch b root reply")
	require.NoError(t, err)

	sub, err := f.svc.GetSubtree(ctx, a.ReplyID)
	require.NoError(t, err)
	require.Len(t, sub, 2)
	assert.Equal(t, a.ReplyID, sub[0].ReplyID)
	assert.Equal(t, aChild.ReplyID, sub[1].ReplyID)
}

func TestViewTopicCountsViews(t *testing.T) {
	f := newThreadFixture(t, "soft")
	ctx := context.Background()

	topic, err := f.svc.CreateTopic(ctx, alice, 1, "view counting", "long enough content here")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = f.svc.ViewTopic(ctx, topic.TopicID)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, f.topics.topics[topic.TopicID].ViewCount)
}

func TestTopicDTOBinaryRoundTrip(t *testing.T) {
	now := time.Now().Unix()
	in := &model.TopicDTO{
		TopicID:        1234567890123456789,
		CategoryID:     7,
		AuthorID:       42,
		AuthorName:     "alice",
		Title:          "binary codec check",
		Content:        "some topic body with unicode 测试",
		Status:         model.TopicStatusSolved,
		IsPinned:       true,
		IsLocked:       false,
		ViewCount:      99,
		ReplyCount:     5,
		LastActivityAt: now,
		CreatedAt:      now - 3600,
		LastEditedAt:   now - 60,
	}

	data, err := marshalTopicDTO(in)
	require.NoError(t, err)

	var out model.TopicDTO
	require.NoError(t, unmarshalTopicDTO(data, &out))
	assert.Equal(t, *in, out)

	// truncated payloads must error, not panic
	assert.Error(t, unmarshalTopicDTO(data[:10], &model.TopicDTO{}))
}
