package storage

import (
	"context"
	"errors"

	"github.com/campuslink/campuslink-be/internal/models"
)

// ErrNotFound indicates a record (or a referenced record) does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict. Adapters derive it from
// the engine's unique constraint, never from a separate existence check.
var ErrAlreadyExists = errors.New("record already exists")

// ErrUnavailable indicates the storage backend could not be reached at
// startup; every operation fails fast with it instead of attempting I/O.
var ErrUnavailable = errors.New("storage unavailable")

// UserStore captures persistence operations for users.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
}

// GroupStore captures persistence operations for groups.
type GroupStore interface {
	// CreateGroup persists the group, assigning its ID and creation time.
	CreateGroup(ctx context.Context, group models.Group) (models.Group, error)
	// ListGroups returns groups in insertion order. Offset skips leading
	// entries and limit bounds the result size.
	ListGroups(ctx context.Context, offset, limit int) ([]models.Group, error)
	FindGroup(ctx context.Context, id string) (models.Group, error)
}

// MessageStore captures persistence operations for messages.
type MessageStore interface {
	// CreateMessage persists the message with a server-assigned ID and
	// timestamp. The referenced group must exist; ErrNotFound otherwise.
	CreateMessage(ctx context.Context, msg models.Message) (models.Message, error)
	// ListMessages returns the group's messages ordered ascending by
	// timestamp, or ErrNotFound if the group does not exist.
	ListMessages(ctx context.Context, groupID string) ([]models.Message, error)
}

// Store is the full persistence contract one backend adapter implements.
type Store interface {
	UserStore
	GroupStore
	MessageStore

	Ping(ctx context.Context) error
	Close()
}

// Options tunes adapter behavior shared across engines.
type Options struct {
	// UniqueGroupNames enforces an engine-level unique index on group
	// names. Off by default.
	UniqueGroupNames bool
}
