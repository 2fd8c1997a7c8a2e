package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/campuslink-be/internal/models"
	"github.com/campuslink/campuslink-be/internal/storage"
)

func newTestStore(t *testing.T, opts storage.Options) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), opts)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func createUser(t *testing.T, s *Store, username string, senior bool) models.User {
	t.Helper()
	user, err := s.CreateUser(context.Background(), models.User{
		Username:     username,
		Email:        username + "@example.edu",
		PasswordHash: "$2a$10$fakefakefakefakefakefake",
		IsSenior:     senior,
	})
	require.NoError(t, err)
	return user
}

func createGroup(t *testing.T, s *Store, name, creatorID string) models.Group {
	t.Helper()
	group, err := s.CreateGroup(context.Background(), models.Group{
		Name:      name,
		CreatorID: creatorID,
	})
	require.NoError(t, err)
	return group
}

func TestStore_CreateUser(t *testing.T) {
	s := newTestStore(t, storage.Options{})
	ctx := context.Background()

	created := createUser(t, s, "alice", true)
	assert.Equal(t, "alice", created.ID)
	assert.True(t, created.IsSenior)
	assert.False(t, created.CreatedAt.IsZero())

	found, err := s.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created, found)
}

func TestStore_CreateUser_Duplicate(t *testing.T) {
	s := newTestStore(t, storage.Options{})
	ctx := context.Background()

	createUser(t, s, "alice", false)

	_, err := s.CreateUser(ctx, models.User{
		Username:     "alice",
		Email:        "other@example.edu",
		PasswordHash: "x",
	})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	// The failed insert must not have altered the stored record.
	found, err := s.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.edu", found.Email)
}

func TestStore_CreateUser_DuplicateEmail(t *testing.T) {
	s := newTestStore(t, storage.Options{})
	ctx := context.Background()

	createUser(t, s, "alice", false)

	_, err := s.CreateUser(ctx, models.User{
		Username:     "alice2",
		Email:        "alice@example.edu",
		PasswordHash: "x",
	})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestStore_FindByUsername_Missing(t *testing.T) {
	s := newTestStore(t, storage.Options{})

	_, err := s.FindByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_CreateGroup(t *testing.T) {
	s := newTestStore(t, storage.Options{})

	alice := createUser(t, s, "alice", true)
	group := createGroup(t, s, "CS101", alice.ID)

	assert.NotEmpty(t, group.ID)
	assert.Equal(t, "alice", group.CreatorID)
	assert.False(t, group.CreatedAt.IsZero())

	found, err := s.FindGroup(context.Background(), group.ID)
	require.NoError(t, err)
	assert.Equal(t, group, found)
}

func TestStore_CreateGroup_DuplicateNamesAllowedByDefault(t *testing.T) {
	s := newTestStore(t, storage.Options{})

	alice := createUser(t, s, "alice", true)
	createGroup(t, s, "CS101", alice.ID)

	_, err := s.CreateGroup(context.Background(), models.Group{
		Name:      "CS101",
		CreatorID: alice.ID,
	})
	assert.NoError(t, err)
}

func TestStore_CreateGroup_UniqueNamesOption(t *testing.T) {
	s := newTestStore(t, storage.Options{UniqueGroupNames: true})

	alice := createUser(t, s, "alice", true)
	createGroup(t, s, "CS101", alice.ID)

	_, err := s.CreateGroup(context.Background(), models.Group{
		Name:      "CS101",
		CreatorID: alice.ID,
	})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestStore_ListGroups_OffsetLimit(t *testing.T) {
	s := newTestStore(t, storage.Options{})
	ctx := context.Background()

	alice := createUser(t, s, "alice", true)
	names := []string{"one", "two", "three", "four"}
	for _, name := range names {
		createGroup(t, s, name, alice.ID)
	}

	all, err := s.ListGroups(ctx, 0, 100)
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i, g := range all {
		assert.Equal(t, names[i], g.Name)
	}

	page, err := s.ListGroups(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "two", page[0].Name)
	assert.Equal(t, "three", page[1].Name)
}

func TestStore_CreateMessage_GroupMustExist(t *testing.T) {
	s := newTestStore(t, storage.Options{})

	alice := createUser(t, s, "alice", true)

	_, err := s.CreateMessage(context.Background(), models.Message{
		Content:  "hello",
		GroupID:  "no-such-group",
		SenderID: alice.ID,
	})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_ListMessages_OrderedByTimestamp(t *testing.T) {
	s := newTestStore(t, storage.Options{})
	ctx := context.Background()

	alice := createUser(t, s, "alice", true)
	bob := createUser(t, s, "bob", false)
	group := createGroup(t, s, "CS101", alice.ID)

	contents := []string{"first", "second", "third"}
	for _, content := range contents {
		msg, err := s.CreateMessage(ctx, models.Message{
			Content:  content,
			GroupID:  group.ID,
			SenderID: bob.ID,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, msg.ID)
		assert.False(t, msg.Timestamp.IsZero())
	}

	msgs, err := s.ListMessages(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	for i, m := range msgs {
		assert.Equal(t, contents[i], m.Content)
		assert.Equal(t, "bob", m.SenderID)
	}
}

func TestStore_ListMessages_MissingGroup(t *testing.T) {
	s := newTestStore(t, storage.Options{})

	_, err := s.ListMessages(context.Background(), "no-such-group")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
