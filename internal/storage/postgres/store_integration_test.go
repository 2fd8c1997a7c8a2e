package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/campuslink-be/internal/models"
	"github.com/campuslink/campuslink-be/internal/storage"
)

// TestStoreIntegration exercises the adapter against a live Postgres.
func TestStoreIntegration(t *testing.T) {
	if os.Getenv("RUN_POSTGRES_INTEGRATION") != "true" {
		t.Skip("set RUN_POSTGRES_INTEGRATION=true to run this integration test")
	}
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	store, err := NewStore(ctx, dbURL, storage.Options{})
	require.NoError(t, err)
	defer store.Close()

	suffix := time.Now().UnixNano()
	alice := fmt.Sprintf("alice_%d", suffix)
	bob := fmt.Sprintf("bob_%d", suffix)

	created, err := store.CreateUser(ctx, models.User{
		Username:     alice,
		Email:        alice + "@example.edu",
		PasswordHash: "hash",
		IsSenior:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, alice, created.ID)

	_, err = store.CreateUser(ctx, models.User{
		Username:     alice,
		Email:        "other_" + alice + "@example.edu",
		PasswordHash: "hash",
	})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	_, err = store.CreateUser(ctx, models.User{
		Username:     bob,
		Email:        bob + "@example.edu",
		PasswordHash: "hash",
	})
	require.NoError(t, err)

	group, err := store.CreateGroup(ctx, models.Group{
		Name:      "CS101_" + alice,
		CreatorID: alice,
	})
	require.NoError(t, err)
	require.NotEmpty(t, group.ID)

	_, err = store.CreateMessage(ctx, models.Message{
		Content: "hi", GroupID: "no-such-group", SenderID: bob,
	})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	for _, content := range []string{"first", "second"} {
		_, err = store.CreateMessage(ctx, models.Message{
			Content: content, GroupID: group.ID, SenderID: bob,
		})
		require.NoError(t, err)
	}

	msgs, err := store.ListMessages(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "second", msgs[1].Content)
}
